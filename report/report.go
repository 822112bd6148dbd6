package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	xmtime "github.com/seqops/stagehand/time"
)

// StepStatus defines the terminal status of a single step.
type StepStatus int

const (
	StatusPending StepStatus = iota // not yet executed
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

// String returns a string representation of the StepStatus.
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return fmt.Sprintf("UNKNOWN_STATUS_%d", int(s))
	}
}

// MarshalYAML renders the status as its string form in report files.
func (s StepStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// FailureKind classifies why a step failed.
type FailureKind string

const (
	// FailureNone marks a step that did not fail.
	FailureNone FailureKind = ""
	// FailureExec marks a step whose action could not be started at all,
	// e.g. a missing executable or an unreachable endpoint.
	FailureExec FailureKind = "ExecutionError"
	// FailureNonZeroExit marks a step that ran and signalled failure via
	// its exit code or HTTP status.
	FailureNonZeroExit FailureKind = "NonZeroExit"
	// FailureTimeout marks a step that exceeded its wall-clock budget.
	FailureTimeout FailureKind = "Timeout"
)

// ExitCodeError carries a non-zero exit signal from a step action. For
// command actions Code is the process exit code; for HTTP actions it is
// the response status.
type ExitCodeError struct {
	Code   int
	Detail string
}

func (e *ExitCodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("action signalled failure (exit code %d)", e.Code)
	}
	return fmt.Sprintf("action signalled failure (exit code %d): %s", e.Code, e.Detail)
}

// StartError marks an action that could not be invoked at all.
type StartError struct {
	Cause error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("action could not be started: %v", e.Cause)
}

func (e *StartError) Unwrap() error {
	return e.Cause
}

// Classify maps a step error to its failure kind and exit signal.
// Context deadline errors take priority so a command killed by its
// timeout is reported as Timeout rather than as a generic exit failure.
func Classify(err error) (FailureKind, int) {
	if err == nil {
		return FailureNone, 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, -1
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return FailureNonZeroExit, exitErr.Code
	}
	return FailureExec, -1
}

// StepResult records the outcome of one step, in the order the step
// appeared in the plan.
type StepResult struct {
	ID         string      `yaml:"id" json:"id"`
	Status     StepStatus  `yaml:"status" json:"status"`
	Kind       FailureKind `yaml:"failure,omitempty" json:"failure,omitempty"`
	ExitCode   int         `yaml:"exitCode" json:"exitCode"`
	Message    string      `yaml:"message,omitempty" json:"message,omitempty"`
	StartedAt  time.Time   `yaml:"startedAt,omitempty" json:"startedAt,omitempty"`
	FinishedAt time.Time   `yaml:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

// Duration returns how long the step ran.
func (r *StepResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the step finished successfully.
func (r *StepResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// RunReport is the ordered outcome record for a full sequencer
// invocation: exactly one StepResult per input step, in input order.
type RunReport struct {
	RunID      string       `yaml:"runId" json:"runId"`
	Plan       string       `yaml:"plan" json:"plan"`
	Results    []StepResult `yaml:"steps" json:"steps"`
	StartedAt  time.Time    `yaml:"startedAt" json:"startedAt"`
	FinishedAt time.Time    `yaml:"finishedAt" json:"finishedAt"`

	// bestEffort tracks which step ids were flagged continue_on_error,
	// so their failures do not flip the overall status. Kept out of the
	// marshalled form; the per-step Kind and Status fields already tell
	// the full story in the report file.
	bestEffort map[string]bool `yaml:"-" json:"-"`
}

// NewRunReport creates an empty report for the given run.
func NewRunReport(runID, planName string, capacity int) *RunReport {
	return &RunReport{
		RunID:     runID,
		Plan:      planName,
		Results:   make([]StepResult, 0, capacity),
		StartedAt: time.Now(),
	}
}

// Append records the next step result. Results keep plan order because
// the sequencer appends them as it walks the step list.
func (rr *RunReport) Append(res StepResult) {
	rr.Results = append(rr.Results, res)
}

// Finish stamps the report's end time.
func (rr *RunReport) Finish() {
	rr.FinishedAt = time.Now()
}

// Failed reports whether any non-best-effort step failed. Best-effort
// failures are recorded per step but do not flip the overall status.
func (rr *RunReport) Failed() bool {
	for _, r := range rr.Results {
		if r.Status == StatusFailed && !rr.bestEffort[r.ID] {
			return true
		}
	}
	return false
}

// OverallStatus renders the run's aggregate status.
func (rr *RunReport) OverallStatus() string {
	if rr.Failed() {
		return "failed"
	}
	return "succeeded"
}

// MarkBestEffort flags a step id as best-effort for overall-status
// accounting.
func (rr *RunReport) MarkBestEffort(id string) {
	if rr.bestEffort == nil {
		rr.bestEffort = make(map[string]bool)
	}
	rr.bestEffort[id] = true
}

// Summary renders a one-line-per-step overview for the console footer.
func (rr *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s): %s\n", rr.RunID, rr.Plan, rr.OverallStatus())
	for _, r := range rr.Results {
		line := fmt.Sprintf("  %-24s %-10s %s", r.ID, r.Status, xmtime.Between(r.StartedAt, r.FinishedAt))
		if r.Kind != FailureNone {
			line += fmt.Sprintf(" [%s]", r.Kind)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
