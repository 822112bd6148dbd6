package command

import (
	"context"
	"io/fs"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/seqops/stagehand/common"
	"github.com/seqops/stagehand/config"
	"github.com/seqops/stagehand/executor"
	"github.com/seqops/stagehand/file"
	"github.com/seqops/stagehand/report"
	"github.com/seqops/stagehand/runtime"
	"github.com/seqops/stagehand/step"
	"github.com/seqops/stagehand/util"
)

func init() {
	// Registration failure here means a duplicate kind, which is a
	// programming error.
	if err := step.Register("command", New); err != nil {
		panic(err)
	}
}

// CommandStep executes an OS command, locally or on a remote host.
type CommandStep struct {
	step.BaseStep
	Command string
	WorkDir string
	Env     map[string]string
	Target  string // host name; empty means local
	Files   []config.FileSpec

	rendered      executor.Command
	renderedFiles []config.FileSpec
}

// New creates a CommandStep from its plan spec.
func New(spec config.StepSpec) (step.Step, error) {
	if strings.TrimSpace(spec.Run) == "" {
		return nil, errors.Errorf("step '%s': command cannot be empty", spec.ID)
	}
	return &CommandStep{
		BaseStep: step.BaseStep{
			StepID:          spec.ID,
			StepDescription: spec.Description,
			BestEffort:      spec.ContinueOnError,
			TimeoutValue:    spec.Timeout.Std(),
		},
		Command: spec.Run,
		WorkDir: spec.WorkDir,
		Env:     spec.Env,
		Target:  spec.RunsOn,
		Files:   spec.Files,
	}, nil
}

// Init renders plan parameters into the command line and environment
// and resolves the step's executor so a bad target fails before the
// run starts executing.
func (s *CommandStep) Init(rt runtime.Runtime, log *logrus.Entry) error {
	if err := s.BaseStep.Init(rt, log); err != nil {
		return err
	}
	if _, err := rt.ExecutorFor(s.Target); err != nil {
		return errors.Wrapf(err, "step '%s'", s.ID())
	}

	params := util.ParamData(rt.Parameters())

	line, err := util.RenderString(s.Command, params)
	if err != nil {
		return errors.Wrapf(err, "step '%s': failed to render command", s.ID())
	}

	env := make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		rendered, renderErr := util.RenderString(v, params)
		if renderErr != nil {
			return errors.Wrapf(renderErr, "step '%s': failed to render env %s", s.ID(), k)
		}
		env[k] = rendered
	}

	files := make([]config.FileSpec, 0, len(s.Files))
	for _, f := range s.Files {
		src, renderErr := util.RenderString(f.Src, params)
		if renderErr != nil {
			return errors.Wrapf(renderErr, "step '%s': failed to render file src", s.ID())
		}
		dest, renderErr := util.RenderString(f.Dest, params)
		if renderErr != nil {
			return errors.Wrapf(renderErr, "step '%s': failed to render file dest", s.ID())
		}
		files = append(files, config.FileSpec{Src: src, Dest: dest, Mode: f.Mode})
	}
	s.renderedFiles = files

	workDir := s.WorkDir
	if workDir == "" {
		workDir = rt.WorkDir()
	}

	s.rendered = executor.Command{Line: line, WorkDir: workDir, Env: env}
	log.Debugf("command step [%s] prepared: %s", s.ID(), line)
	return nil
}

// Execute runs the command through the target's executor and classifies
// the failure: a start failure becomes an ExecutionError, a non-zero
// exit an exit-code failure. Stdout is stored in the run value store so
// later steps can reference it.
func (s *CommandStep) Execute(ctx context.Context, rt runtime.Runtime, log *logrus.Entry) (string, error) {
	exec, err := rt.ExecutorFor(s.Target)
	if err != nil {
		return "", &report.StartError{Cause: err}
	}

	if err := s.deliverFiles(ctx, rt, log); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &report.StartError{Cause: err}
	}

	log.Infof("running command: %s", s.rendered.Line)
	stdout, stderr, exitCode, execErr := exec.Execute(ctx, s.rendered)

	if execErr != nil {
		if ctx.Err() != nil {
			// Deadline or cancellation wins over whatever the killed
			// process reported.
			return stdout, ctx.Err()
		}
		return stdout, &report.StartError{Cause: execErr}
	}

	if exitCode != 0 {
		detail := strings.TrimSpace(stderr)
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		return stdout, &report.ExitCodeError{Code: exitCode, Detail: detail}
	}

	rt.Values().Set("output."+s.ID(), strings.TrimSpace(stdout))
	if stderr != "" {
		log.Debugf("stderr from step [%s]:\n%s", s.ID(), stderr)
	}
	return stdout, nil
}

// deliverFiles pushes the step's files to its target before the
// command runs: over SFTP for remote targets, a plain copy locally.
func (s *CommandStep) deliverFiles(ctx context.Context, rt runtime.Runtime, log *logrus.Entry) error {
	if len(s.renderedFiles) == 0 {
		return nil
	}

	conn, err := rt.ConnectionFor(s.Target)
	if err != nil {
		return errors.Wrapf(err, "step '%s'", s.ID())
	}

	for _, f := range s.renderedFiles {
		mode := common.FileMode0644
		if f.Mode != "" {
			parsed, parseErr := strconv.ParseUint(f.Mode, 8, 32)
			if parseErr != nil {
				return errors.Wrapf(parseErr, "step '%s': invalid file mode '%s'", s.ID(), f.Mode)
			}
			mode = fs.FileMode(parsed)
		}

		log.Debugf("delivering %s to %s", f.Src, f.Dest)
		if conn == nil {
			if copyErr := file.CopyFile(f.Src, f.Dest, mode); copyErr != nil {
				return errors.Wrapf(copyErr, "step '%s': failed to deliver %s", s.ID(), f.Src)
			}
			continue
		}
		if upErr := conn.UploadFile(ctx, f.Src, f.Dest, mode); upErr != nil {
			return errors.Wrapf(upErr, "step '%s': failed to deliver %s", s.ID(), f.Src)
		}
	}
	return nil
}

var _ step.Step = (*CommandStep)(nil)
