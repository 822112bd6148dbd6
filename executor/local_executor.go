package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// localExecutor implements Executor for the machine the sequencer runs on.
type localExecutor struct{}

// NewLocalExecutor creates an Executor for local operations.
func NewLocalExecutor() Executor {
	return &localExecutor{}
}

func (l *localExecutor) Execute(ctx context.Context, command Command) (string, string, int, error) {
	args, err := shellwords.Parse(command.Line)
	if err != nil {
		return "", "", -1, errors.Wrapf(err, "failed to parse command line %q", command.Line)
	}
	if len(args) == 0 {
		return "", "", -1, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = command.WorkDir
	if len(command.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range command.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// A killed-by-deadline process surfaces as an ExitError; the context
	// error is the authoritative signal in that case.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), -1, ctxErr
	}

	if runErr == nil {
		return stdout.String(), stderr.String(), 0, nil
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode := 1
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			exitCode = status.ExitStatus()
		}
		return stdout.String(), stderr.String(), exitCode, nil
	}

	// Not an exit failure: the command could not be started at all,
	// e.g. executable not found or bad working directory.
	return stdout.String(), stderr.String(), -1, errors.Wrapf(runErr, "failed to run command %q", command.Line)
}
