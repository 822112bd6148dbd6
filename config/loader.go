package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of a PlanConfig from a file.
type Loader struct {
	filePath string
}

// NewLoader creates a new configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads the plan file, unmarshals it and validates it. All
// structural problems are reported as ConfigurationError before any
// step runs.
func (l *Loader) Load() (*PlanConfig, error) {
	if l.filePath == "" {
		return nil, NewConfigurationError("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", l.filePath, err)
	}
	if len(content) == 0 {
		return nil, NewConfigurationError("configuration file '%s' is empty", l.filePath)
	}

	var cfg PlanConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, NewConfigurationError("failed to unmarshal plan YAML from '%s': %v", l.filePath, err)
	}

	SetDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the plan's structure. It returns a ConfigurationError
// describing the first problem found.
func Validate(cfg *PlanConfig) error {
	if cfg.APIVersion == "" {
		return NewConfigurationError("apiVersion is a required field")
	}
	if cfg.Kind != "Plan" {
		return NewConfigurationError("kind must be 'Plan', got '%s'", cfg.Kind)
	}
	if cfg.Metadata.Name == "" {
		return NewConfigurationError("metadata.name is a required field")
	}

	hostNames := make(map[string]bool, len(cfg.Spec.Hosts))
	for _, h := range cfg.Spec.Hosts {
		if strings.TrimSpace(h.Name) == "" {
			return NewConfigurationError("every host needs a name")
		}
		if hostNames[h.Name] {
			return NewConfigurationError("duplicate host name '%s'", h.Name)
		}
		hostNames[h.Name] = true
	}

	if len(cfg.Spec.Steps) == 0 {
		return NewConfigurationError("spec.steps must contain at least one step")
	}

	seenIDs := make(map[string]bool, len(cfg.Spec.Steps))
	for i, s := range cfg.Spec.Steps {
		if strings.TrimSpace(s.ID) == "" {
			return NewConfigurationError("step at index %d has no id", i)
		}
		if seenIDs[s.ID] {
			return NewConfigurationError("duplicate step id '%s'", s.ID)
		}
		seenIDs[s.ID] = true

		hasRun := strings.TrimSpace(s.Run) != ""
		hasHTTP := s.HTTP != nil
		if hasRun == hasHTTP {
			return NewConfigurationError("step '%s' must set exactly one of 'run' and 'http'", s.ID)
		}

		if hasHTTP {
			if strings.TrimSpace(s.HTTP.URL) == "" {
				return NewConfigurationError("step '%s': http.url is required", s.ID)
			}
			if u, err := url.Parse(s.HTTP.URL); err != nil || u.Scheme == "" {
				return NewConfigurationError("step '%s': invalid http.url '%s'", s.ID, s.HTTP.URL)
			}
			switch strings.ToUpper(s.HTTP.Method) {
			case "GET", "HEAD", "POST", "PUT", "PATCH", "DELETE":
			default:
				return NewConfigurationError("step '%s': unsupported http.method '%s'", s.ID, s.HTTP.Method)
			}
			if s.RunsOn != "" {
				return NewConfigurationError("step '%s': runsOn does not apply to http actions", s.ID)
			}
		}

		if s.RunsOn != "" && !hostNames[s.RunsOn] {
			return NewConfigurationError("step '%s': runsOn references unknown host '%s'", s.ID, s.RunsOn)
		}

		for _, f := range s.Files {
			if !hasRun {
				return NewConfigurationError("step '%s': files only apply to command actions", s.ID)
			}
			if strings.TrimSpace(f.Src) == "" || strings.TrimSpace(f.Dest) == "" {
				return NewConfigurationError("step '%s': file entries need both src and dest", s.ID)
			}
			if f.Mode != "" {
				if _, err := strconv.ParseUint(f.Mode, 8, 32); err != nil {
					return NewConfigurationError("step '%s': invalid file mode '%s'", s.ID, f.Mode)
				}
			}
		}
	}
	return nil
}

// OrderedSteps returns the plan's steps sorted by their effective
// ordering index. Steps without an explicit order keep their list
// position; the sort is stable, so equal indices preserve plan order.
func OrderedSteps(cfg *PlanConfig) []StepSpec {
	keys := make([]int, len(cfg.Spec.Steps))
	idx := make([]int, len(cfg.Spec.Steps))
	for i, s := range cfg.Spec.Steps {
		idx[i] = i
		if s.Order != nil {
			keys[i] = *s.Order
		} else {
			keys[i] = i
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	steps := make([]StepSpec, len(cfg.Spec.Steps))
	for i, j := range idx {
		steps[i] = cfg.Spec.Steps[j]
	}
	return steps
}
