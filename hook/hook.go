package hook

import "fmt"

// Interface is a try/catch/finally shaped guard around a unit of work.
// The sequencer wraps every step execution in one so a panicking step
// becomes a failed result instead of tearing down the run.
type Interface interface {
	// Try performs the guarded work.
	Try() error
	// Catch handles the error from Try and returns the error to
	// surface, which may be the same one.
	Catch(err error) error
	// Finally always runs, after Try and any Catch.
	Finally()
}

// Call runs the hook. Panics inside Try are recovered and returned as
// errors.
func Call(h Interface) (err error) {
	if h == nil {
		return fmt.Errorf("hook cannot be nil")
	}

	defer h.Finally()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during hook execution: %v", r)
		}
	}()

	tryErr := h.Try()
	if tryErr != nil {
		return h.Catch(tryErr)
	}
	return nil
}

// Funcs adapts plain functions to the Interface. Nil members default
// to no-ops (Catch passes the error through).
type Funcs struct {
	TryFn     func() error
	CatchFn   func(error) error
	FinallyFn func()
}

func (f Funcs) Try() error {
	if f.TryFn == nil {
		return nil
	}
	return f.TryFn()
}

func (f Funcs) Catch(err error) error {
	if f.CatchFn == nil {
		return err
	}
	return f.CatchFn(err)
}

func (f Funcs) Finally() {
	if f.FinallyFn == nil {
		return
	}
	f.FinallyFn()
}

var _ Interface = Funcs{}
