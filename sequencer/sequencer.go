package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seqops/stagehand/common"
	"github.com/seqops/stagehand/config"
	"github.com/seqops/stagehand/hook"
	"github.com/seqops/stagehand/report"
	"github.com/seqops/stagehand/runtime"
	"github.com/seqops/stagehand/step"

	// Action packages register themselves with the step registry.
	_ "github.com/seqops/stagehand/step/command"
	_ "github.com/seqops/stagehand/step/httpreq"
)

// Sequencer executes an ordered list of steps, one at a time, stopping
// at the first failure unless the failing step is best-effort.
type Sequencer struct {
	rt    runtime.Runtime
	steps []step.Step
}

// New creates a Sequencer over an already-built step list. The list
// must be non-empty and free of duplicate identifiers; violations are
// reported as ConfigurationError before any step runs.
func New(rt runtime.Runtime, steps []step.Step) (*Sequencer, error) {
	if rt == nil {
		return nil, config.NewConfigurationError("sequencer requires a runtime")
	}
	if len(steps) == 0 {
		return nil, config.NewConfigurationError("step list cannot be empty")
	}
	seen := make(map[string]bool, len(steps))
	for _, st := range steps {
		if seen[st.ID()] {
			return nil, config.NewConfigurationError("duplicate step id '%s'", st.ID())
		}
		seen[st.ID()] = true
	}
	return &Sequencer{rt: rt, steps: steps}, nil
}

// FromPlan builds the step list from a validated plan, in effective
// order, and wraps it in a Sequencer.
func FromPlan(cfg *config.PlanConfig, rt runtime.Runtime) (*Sequencer, error) {
	ordered := config.OrderedSteps(cfg)
	steps := make([]step.Step, 0, len(ordered))
	for _, spec := range ordered {
		st, err := step.Build(spec)
		if err != nil {
			return nil, config.NewConfigurationError("failed to build step '%s': %v", spec.ID, err)
		}
		steps = append(steps, st)
	}
	return New(rt, steps)
}

// Steps returns the sequencer's step list in execution order.
func (s *Sequencer) Steps() []step.Step {
	out := make([]step.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Run executes the steps strictly in order and returns the RunReport,
// which always contains exactly one StepResult per step, in input
// order. Failures never abort the process: a non-best-effort failure
// marks the remaining steps skipped, a best-effort failure is recorded
// and execution continues.
func (s *Sequencer) Run(ctx context.Context, log *logrus.Entry) *report.RunReport {
	runID := uuid.NewString()
	rep := report.NewRunReport(runID, s.rt.PlanName(), len(s.steps))
	log = log.WithField(common.RunID, runID[:8])

	log.Infof("starting run with %d steps", len(s.steps))

	halted := false
	var haltedBy string

	for i, st := range s.steps {
		stepLog := log.WithFields(logrus.Fields{
			common.StepName: st.ID(),
			"step_index":    fmt.Sprintf("%d/%d", i+1, len(s.steps)),
		})

		if st.ContinueOnError() {
			rep.MarkBestEffort(st.ID())
		}

		if halted {
			stepLog.Warnf("skipping step [%s]: run halted by failed step [%s]", st.ID(), haltedBy)
			rep.Append(report.StepResult{
				ID:      st.ID(),
				Status:  report.StatusSkipped,
				Message: fmt.Sprintf("skipped: step '%s' failed", haltedBy),
			})
			continue
		}

		res := s.runStep(ctx, st, stepLog)
		rep.Append(res)

		if res.Status == report.StatusFailed {
			if st.ContinueOnError() {
				stepLog.Warnf("step [%s] failed but is best-effort, continuing", st.ID())
				continue
			}
			halted = true
			haltedBy = st.ID()
			stepLog.Errorf("step [%s] failed, remaining steps will be skipped", st.ID())
		}
	}

	rep.Finish()
	log.Infof("run finished: %s", rep.OverallStatus())
	return rep
}

// runStep executes one step through the panic guard, honoring its
// timeout, and converts the outcome into a StepResult.
func (s *Sequencer) runStep(ctx context.Context, st step.Step, stepLog *logrus.Entry) report.StepResult {
	res := report.StepResult{
		ID:        st.ID(),
		StartedAt: time.Now(),
	}

	stepCtx := ctx
	var cancel context.CancelFunc
	if st.Timeout() > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, st.Timeout())
		defer cancel()
	}

	var execErr error
	guardErr := hook.Call(hook.Funcs{
		TryFn: func() error {
			if err := st.Init(s.rt, stepLog); err != nil {
				return &report.StartError{Cause: err}
			}
			_, err := st.Execute(stepCtx, s.rt, stepLog)
			return err
		},
		CatchFn: func(err error) error {
			execErr = err
			return err
		},
		FinallyFn: func() {
			if postErr := st.Post(s.rt, stepLog, execErr); postErr != nil {
				stepLog.Warnf("post-execute for step [%s] failed: %v", st.ID(), postErr)
			}
		},
	})

	res.FinishedAt = time.Now()

	if guardErr == nil {
		res.Status = report.StatusSucceeded
		stepLog.Infof("step [%s] succeeded", st.ID())
		return res
	}

	kind, code := report.Classify(guardErr)
	res.Status = report.StatusFailed
	res.Kind = kind
	res.ExitCode = code
	res.Message = guardErr.Error()
	stepLog.WithField("error", guardErr).Errorf("step [%s] failed (%s)", st.ID(), kind)
	return res
}
