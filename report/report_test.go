package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantKind FailureKind
		wantCode int
	}{
		{"nil error", nil, FailureNone, 0},
		{"deadline exceeded", context.DeadlineExceeded, FailureTimeout, -1},
		{"wrapped deadline", errors.Wrap(context.DeadlineExceeded, "command killed"), FailureTimeout, -1},
		{"exit code error", &ExitCodeError{Code: 3}, FailureNonZeroExit, 3},
		{"wrapped exit code", fmt.Errorf("step failed: %w", &ExitCodeError{Code: 127}), FailureNonZeroExit, 127},
		{"http status as exit", &ExitCodeError{Code: 503, Detail: "Service Unavailable"}, FailureNonZeroExit, 503},
		{"start error", &StartError{Cause: errors.New("executable not found")}, FailureExec, -1},
		{"plain error", errors.New("something broke"), FailureExec, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, code := Classify(tc.err)
			if kind != tc.wantKind {
				t.Errorf("Classify kind = %q; want %q", kind, tc.wantKind)
			}
			if code != tc.wantCode {
				t.Errorf("Classify code = %d; want %d", code, tc.wantCode)
			}
		})
	}
}

func TestClassifyTimeoutBeatsExitCode(t *testing.T) {
	// A process killed by its deadline may also carry an exit signal;
	// the deadline is the authoritative classification.
	err := fmt.Errorf("%w: %v", context.DeadlineExceeded, &ExitCodeError{Code: 137})
	kind, _ := Classify(err)
	if kind != FailureTimeout {
		t.Errorf("kind = %q; want %q", kind, FailureTimeout)
	}
}

func TestRunReportFailedAndOverallStatus(t *testing.T) {
	rr := NewRunReport("run-1", "demo", 3)
	rr.Append(StepResult{ID: "a", Status: StatusSucceeded})
	rr.Append(StepResult{ID: "b", Status: StatusFailed, Kind: FailureNonZeroExit, ExitCode: 1})
	rr.Append(StepResult{ID: "c", Status: StatusSkipped})
	rr.Finish()

	if !rr.Failed() {
		t.Error("report with a failed step should be failed")
	}
	if got := rr.OverallStatus(); got != "failed" {
		t.Errorf("OverallStatus = %q; want %q", got, "failed")
	}
}

func TestRunReportBestEffortDoesNotFail(t *testing.T) {
	rr := NewRunReport("run-2", "demo", 2)
	rr.MarkBestEffort("optional")
	rr.Append(StepResult{ID: "optional", Status: StatusFailed, Kind: FailureNonZeroExit, ExitCode: 1})
	rr.Append(StepResult{ID: "main", Status: StatusSucceeded})
	rr.Finish()

	if rr.Failed() {
		t.Error("best-effort failure must not fail the run")
	}
	if got := rr.OverallStatus(); got != "succeeded" {
		t.Errorf("OverallStatus = %q; want %q", got, "succeeded")
	}
}

func TestRunReportEmptySucceeds(t *testing.T) {
	rr := NewRunReport("run-3", "demo", 0)
	rr.Finish()
	if rr.Failed() {
		t.Error("report with no results should not be failed")
	}
}

func TestStepResultDuration(t *testing.T) {
	start := time.Now()
	res := StepResult{StartedAt: start, FinishedAt: start.Add(250 * time.Millisecond)}
	if got := res.Duration(); got != 250*time.Millisecond {
		t.Errorf("Duration = %s; want 250ms", got)
	}

	var zero StepResult
	if got := zero.Duration(); got != 0 {
		t.Errorf("Duration of unexecuted step = %s; want 0", got)
	}
}

func TestStatusString(t *testing.T) {
	pairs := map[StepStatus]string{
		StatusPending:   "PENDING",
		StatusSucceeded: "SUCCEEDED",
		StatusFailed:    "FAILED",
		StatusSkipped:   "SKIPPED",
	}
	for status, want := range pairs {
		if got := status.String(); got != want {
			t.Errorf("String(%d) = %q; want %q", int(status), got, want)
		}
	}
}

func TestExitCodeErrorMessage(t *testing.T) {
	e := &ExitCodeError{Code: 2, Detail: "migration 0042 failed"}
	if !strings.Contains(e.Error(), "exit code 2") || !strings.Contains(e.Error(), "migration 0042") {
		t.Errorf("unexpected message: %s", e.Error())
	}
}

func TestSummaryListsEveryStep(t *testing.T) {
	rr := NewRunReport("run-4", "web-release", 2)
	rr.Append(StepResult{ID: "install", Status: StatusSucceeded})
	rr.Append(StepResult{ID: "migrate", Status: StatusFailed, Kind: FailureTimeout})
	rr.Finish()

	s := rr.Summary()
	for _, want := range []string{"install", "migrate", "web-release", string(FailureTimeout)} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}
