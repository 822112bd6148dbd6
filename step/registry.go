package step

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/seqops/stagehand/config"
)

// Factory builds a Step from its plan spec.
type Factory func(spec config.StepSpec) (Step, error)

var (
	// defaultRegistry holds the registered action factories, keyed by
	// action kind ("command", "http").
	defaultRegistry = make(map[string]Factory)
	registryMutex   = &sync.RWMutex{}
)

// Register adds an action factory to the registry. Action packages
// call this from their init functions.
func Register(kind string, factory Factory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := defaultRegistry[kind]; exists {
		return fmt.Errorf("action kind '%s' already registered", kind)
	}
	defaultRegistry[kind] = factory
	return nil
}

// RegisteredKinds returns the sorted names of all registered action kinds.
func RegisteredKinds() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	kinds := make([]string, 0, len(defaultRegistry))
	for kind := range defaultRegistry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DetectKind maps a step spec to its action kind. Validation has
// already ensured exactly one action is present.
func DetectKind(spec config.StepSpec) string {
	if strings.TrimSpace(spec.Run) != "" {
		return "command"
	}
	if spec.HTTP != nil {
		return "http"
	}
	return ""
}

// Build constructs the Step for the given spec using the registry.
func Build(spec config.StepSpec) (Step, error) {
	kind := DetectKind(spec)
	if kind == "" {
		return nil, fmt.Errorf("step '%s' has no recognizable action", spec.ID)
	}

	registryMutex.RLock()
	factory, exists := defaultRegistry[kind]
	registryMutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("no factory registered for action kind '%s' (step '%s')", kind, spec.ID)
	}
	return factory(spec)
}
