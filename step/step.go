package step

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seqops/stagehand/runtime"
)

// Step represents an individual unit of deployment work within a run.
type Step interface {
	// ID returns the step's unique identifier within the plan.
	ID() string

	// Description returns a human-readable description of what the step does.
	Description() string

	// ContinueOnError reports whether this step is best-effort: its
	// failure is recorded but does not halt the run.
	ContinueOnError() bool

	// Timeout returns the step's wall-clock budget. Zero means none.
	Timeout() time.Duration

	// Init performs validation and parameter rendering before execution.
	Init(rt runtime.Runtime, logger *logrus.Entry) error

	// Execute performs the step's action. It returns the action's
	// output and an error describing the failure, classifiable by the
	// report package. The context carries the step's deadline.
	Execute(ctx context.Context, rt runtime.Runtime, logger *logrus.Entry) (output string, err error)

	// Post performs any cleanup after Execute has completed. It
	// receives the error (if any) from the Execute phase.
	Post(rt runtime.Runtime, logger *logrus.Entry, executeErr error) error
}

// BaseStep provides common fields and default method implementations
// for steps. Concrete steps embed it and override Execute.
type BaseStep struct {
	StepID          string
	StepDescription string
	BestEffort      bool
	TimeoutValue    time.Duration
}

// ID returns the identifier of the step.
func (bs *BaseStep) ID() string {
	return bs.StepID
}

// Description returns the description of the step.
func (bs *BaseStep) Description() string {
	return bs.StepDescription
}

// ContinueOnError reports whether the step is best-effort.
func (bs *BaseStep) ContinueOnError() bool {
	return bs.BestEffort
}

// Timeout returns the step's wall-clock budget.
func (bs *BaseStep) Timeout() time.Duration {
	return bs.TimeoutValue
}

// Init is a no-op by default; concrete steps override it to validate
// their action and render parameters.
func (bs *BaseStep) Init(rt runtime.Runtime, logger *logrus.Entry) error {
	if rt == nil {
		return fmt.Errorf("runtime cannot be nil for step '%s'", bs.StepID)
	}
	return nil
}

// Execute must be overridden by concrete steps.
func (bs *BaseStep) Execute(ctx context.Context, rt runtime.Runtime, logger *logrus.Entry) (string, error) {
	return "", fmt.Errorf("Execute not implemented for step '%s'", bs.StepID)
}

// Post is a hook for post-execution actions. The default does nothing.
func (bs *BaseStep) Post(rt runtime.Runtime, logger *logrus.Entry, executeErr error) error {
	if executeErr != nil {
		logger.Debugf("step [%s] finished with error: %v", bs.StepID, executeErr)
	}
	return nil
}
