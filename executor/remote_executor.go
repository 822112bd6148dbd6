package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/seqops/stagehand/connector"
)

// remoteExecutor implements Executor over an established SSH connection.
type remoteExecutor struct {
	conn connector.Connection
}

// NewRemoteExecutor creates an Executor that runs commands on the
// target behind the given connection.
func NewRemoteExecutor(conn connector.Connection) (Executor, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil for remote executor")
	}
	return &remoteExecutor{conn: conn}, nil
}

func (r *remoteExecutor) Execute(ctx context.Context, command Command) (string, string, int, error) {
	line := remoteCommandLine(command)
	stdout, stderr, exitCode, err := r.conn.Exec(ctx, line)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return string(stdout), string(stderr), -1, ctxErr
		}
		return string(stdout), string(stderr), exitCode, errors.Wrapf(err, "failed to run command %q on remote target", command.Line)
	}
	return string(stdout), string(stderr), exitCode, nil
}

// remoteCommandLine folds the working directory and environment into a
// single shell line, since an SSH exec channel carries no Dir/Env of
// its own. Env keys are sorted for a deterministic command string.
func remoteCommandLine(command Command) string {
	var parts []string
	if len(command.Env) > 0 {
		keys := make([]string, 0, len(command.Env))
		for k := range command.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		assignments := make([]string, 0, len(keys))
		for _, k := range keys {
			assignments = append(assignments, fmt.Sprintf("%s=%s", k, shellQuote(command.Env[k])))
		}
		parts = append(parts, "export "+strings.Join(assignments, " ")+" &&")
	}
	if command.WorkDir != "" {
		parts = append(parts, fmt.Sprintf("cd %s &&", shellQuote(command.WorkDir)))
	}
	parts = append(parts, command.Line)
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
