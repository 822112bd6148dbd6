package executor

import (
	"context"
)

// Command is one external invocation: the command line plus its
// working directory and extra environment.
type Command struct {
	Line    string
	WorkDir string
	Env     map[string]string
}

// Executor runs commands on a target system, local or remote. Both
// implementations report the same success/failure signal: exit code
// plus a transport error when the command could not be started.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (stdout string, stderr string, exitCode int, err error)
}
