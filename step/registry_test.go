package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqops/stagehand/config"
)

type nopStep struct {
	BaseStep
}

func nopFactory(spec config.StepSpec) (Step, error) {
	return &nopStep{BaseStep: BaseStep{StepID: spec.ID}}, nil
}

func TestRegisterAndBuild(t *testing.T) {
	require.NoError(t, Register("command", nopFactory))

	st, err := Build(config.StepSpec{ID: "install", Run: "make install"})
	require.NoError(t, err)
	assert.Equal(t, "install", st.ID())
}

func TestRegisterDuplicateKind(t *testing.T) {
	require.NoError(t, Register("dup-kind", nopFactory))
	err := Register("dup-kind", nopFactory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dup-kind")
}

func TestRegisteredKindsSorted(t *testing.T) {
	require.NoError(t, Register("zeta", nopFactory))
	require.NoError(t, Register("alpha", nopFactory))

	kinds := RegisteredKinds()
	assert.Contains(t, kinds, "alpha")
	assert.Contains(t, kinds, "zeta")
	assert.IsIncreasing(t, kinds)
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, "command", DetectKind(config.StepSpec{Run: "true"}))
	assert.Equal(t, "http", DetectKind(config.StepSpec{HTTP: &config.HTTPSpec{URL: "https://x"}}))
	assert.Equal(t, "", DetectKind(config.StepSpec{}))
}

func TestBuildUnknownAction(t *testing.T) {
	_, err := Build(config.StepSpec{ID: "empty"})
	require.Error(t, err)
}

func TestBuildUnregisteredKind(t *testing.T) {
	_, err := Build(config.StepSpec{ID: "web", HTTP: &config.HTTPSpec{URL: "https://x"}})
	// "http" is registered by its action package, not here.
	require.Error(t, err)
}
