package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PlanConfig is the top-level configuration structure.
type PlanConfig struct {
	APIVersion string       `yaml:"apiVersion"`
	Kind       string       `yaml:"kind"`
	Metadata   MetadataSpec `yaml:"metadata"`
	Spec       PlanSpec     `yaml:"spec"`
}

// MetadataSpec defines metadata for the plan.
type MetadataSpec struct {
	Name string `yaml:"name"`
}

// PlanSpec defines the deployment plan: substitution parameters,
// optional remote hosts and the ordered step list.
type PlanSpec struct {
	Parameters map[string]string `yaml:"parameters,omitempty"`
	Hosts      []HostSpec        `yaml:"hosts,omitempty"`
	Steps      []StepSpec        `yaml:"steps"`
}

// HostSpec defines the configuration for a single remote target.
type HostSpec struct {
	Name           string   `yaml:"name"`
	Address        string   `yaml:"address"`
	Port           int      `yaml:"port,omitempty"` // defaults to 22
	User           string   `yaml:"user"`
	Password       string   `yaml:"password,omitempty"`
	PrivateKeyPath string   `yaml:"privateKeyPath,omitempty"`
	Timeout        Duration `yaml:"timeout,omitempty"`
}

// StepSpec defines one unit of deployment work. Exactly one of Run and
// HTTP must be set.
type StepSpec struct {
	ID              string            `yaml:"id"`
	Description     string            `yaml:"description,omitempty"`
	Run             string            `yaml:"run,omitempty"`
	HTTP            *HTTPSpec         `yaml:"http,omitempty"`
	RunsOn          string            `yaml:"runsOn,omitempty"` // host name; empty means local
	WorkDir         string            `yaml:"workDir,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	Files           []FileSpec        `yaml:"files,omitempty"` // delivered before the command runs
	ContinueOnError bool              `yaml:"continueOnError,omitempty"`
	Timeout         Duration          `yaml:"timeout,omitempty"` // zero means no step timeout
	Order           *int              `yaml:"order,omitempty"`   // defaults to list position
}

// FileSpec names one file to deliver to the step's target before its
// command runs.
type FileSpec struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
	Mode string `yaml:"mode,omitempty"` // octal, defaults to 0644
}

// HTTPSpec defines an HTTP request action against a registry or CI
// system. Any 2xx response counts as success.
type HTTPSpec struct {
	Method  string            `yaml:"method,omitempty"` // defaults to GET
	URL     string            `yaml:"url"`
	Body    string            `yaml:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Duration wraps time.Duration so plans can say "15m" or "90s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or \"15m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ConfigurationError marks a plan rejected before any step runs, e.g.
// an empty step list or duplicate step identifiers.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
