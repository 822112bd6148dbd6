package command

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqops/stagehand/config"
	"github.com/seqops/stagehand/report"
	"github.com/seqops/stagehand/runtime"
)

func testRuntime(t *testing.T, params map[string]string) runtime.Runtime {
	t.Helper()
	rt, err := runtime.NewRuntime(runtime.Config{
		PlanName:   "test-plan",
		WorkDir:    t.TempDir(),
		Parameters: params,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestNewRejectsEmptyCommand(t *testing.T) {
	_, err := New(config.StepSpec{ID: "noop", Run: "  "})
	require.Error(t, err)
}

func TestCommandStepRendersParameters(t *testing.T) {
	rt := testRuntime(t, map[string]string{"version": "2.4.1"})
	st, err := New(config.StepSpec{ID: "announce", Run: "echo deploying {{ .version }}"})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	out, err := st.Execute(context.Background(), rt, log)
	require.NoError(t, err)
	assert.Equal(t, "deploying 2.4.1", strings.TrimSpace(out))

	stored, ok := rt.Values().Get("output.announce")
	require.True(t, ok, "stdout should be stored for later steps")
	assert.Equal(t, "deploying 2.4.1", stored)
}

func TestCommandStepMissingParameterFailsInit(t *testing.T) {
	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{ID: "bad", Run: "echo {{ .undefined }}"})
	require.NoError(t, err)

	err = st.Init(rt, testLog())
	require.Error(t, err)
}

func TestCommandStepNonZeroExit(t *testing.T) {
	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{ID: "failing", Run: `sh -c "echo migration failed >&2; exit 2"`})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	_, err = st.Execute(context.Background(), rt, log)
	require.Error(t, err)

	kind, code := report.Classify(err)
	assert.Equal(t, report.FailureNonZeroExit, kind)
	assert.Equal(t, 2, code)
	assert.Contains(t, err.Error(), "migration failed")
}

func TestCommandStepUnstartableCommand(t *testing.T) {
	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{ID: "ghost", Run: "a_very_unlikely_command_xyz123"})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	_, err = st.Execute(context.Background(), rt, log)
	require.Error(t, err)

	kind, _ := report.Classify(err)
	assert.Equal(t, report.FailureExec, kind)
}

func TestCommandStepUnknownTargetFailsInit(t *testing.T) {
	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{ID: "remote", Run: "true", RunsOn: "no-such-host"})
	require.NoError(t, err)

	err = st.Init(rt, testLog())
	require.Error(t, err)
}

func TestCommandStepDeliversLocalFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(src, []byte("listen 8080\n"), 0644))
	dest := filepath.Join(dir, "deployed", "app.conf")

	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{
		ID:    "configure",
		Run:   "cat " + dest,
		Files: []config.FileSpec{{Src: src, Dest: dest, Mode: "0600"}},
	})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	out, err := st.Execute(context.Background(), rt, log)
	require.NoError(t, err)
	assert.Equal(t, "listen 8080", strings.TrimSpace(out))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCommandStepMissingDeliveryFileFails(t *testing.T) {
	rt := testRuntime(t, nil)
	st, err := New(config.StepSpec{
		ID:    "configure",
		Run:   "true",
		Files: []config.FileSpec{{Src: filepath.Join(t.TempDir(), "absent"), Dest: filepath.Join(t.TempDir(), "x")}},
	})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	_, err = st.Execute(context.Background(), rt, log)
	require.Error(t, err)

	kind, _ := report.Classify(err)
	assert.Equal(t, report.FailureExec, kind)
}

func TestCommandStepRendersEnv(t *testing.T) {
	rt := testRuntime(t, map[string]string{"target": "staging"})
	st, err := New(config.StepSpec{
		ID:  "env",
		Run: `sh -c "echo $DEPLOY_ENV"`,
		Env: map[string]string{"DEPLOY_ENV": "{{ .target }}"},
	})
	require.NoError(t, err)

	log := testLog()
	require.NoError(t, st.Init(rt, log))

	out, err := st.Execute(context.Background(), rt, log)
	require.NoError(t, err)
	assert.Equal(t, "staging", strings.TrimSpace(out))
}
