package runtime

import (
	"github.com/pkg/errors"

	"github.com/seqops/stagehand/cache"
	"github.com/seqops/stagehand/connector"
	"github.com/seqops/stagehand/executor"
)

// Runtime is the execution context handed down to every step: working
// directory, plan parameters, host lookup and the run-scoped value
// store steps may use to pass small outputs forward.
type Runtime interface {
	PlanName() string
	WorkDir() string
	Verbose() bool

	// Parameters returns the plan's substitution map.
	Parameters() map[string]string

	// Values is the run-scoped store. Only live for one run.
	Values() *cache.Cache[string, string]

	// ExecutorFor returns the executor for the named host. An empty
	// name selects the local executor. Remote executors are dialed
	// once per host and reused for the rest of the run.
	ExecutorFor(hostName string) (executor.Executor, error)

	// ConnectionFor returns the live connection for the named host,
	// for file delivery. A nil connection with nil error means the
	// target is local.
	ConnectionFor(hostName string) (connector.Connection, error)

	// Close releases any connections opened during the run.
	Close() error
}

// Config collects what NewRuntime needs to build a run context.
type Config struct {
	PlanName   string
	WorkDir    string
	Verbose    bool
	Parameters map[string]string
	Hosts      []*connector.Host

	// Dial overrides how remote connections are established. Tests
	// substitute a fake here; nil selects the real SSH dialer.
	Dial func(*connector.Host) (connector.Connection, error)
}

type baseRuntime struct {
	planName   string
	workDir    string
	verbose    bool
	parameters map[string]string
	values     *cache.Cache[string, string]

	hosts map[string]*connector.Host
	dial  func(*connector.Host) (connector.Connection, error)

	local       executor.Executor
	executors   *cache.Cache[string, executor.Executor]
	conns       *cache.Cache[string, connector.Connection]
	connections []connector.Connection
}

var _ Runtime = (*baseRuntime)(nil)

// NewRuntime validates cfg and builds the run context.
func NewRuntime(cfg Config) (Runtime, error) {
	if cfg.PlanName == "" {
		return nil, errors.New("runtime requires a plan name")
	}

	hosts := make(map[string]*connector.Host, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		if err := h.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid host %q", h.Name)
		}
		if _, exists := hosts[h.Name]; exists {
			return nil, errors.Errorf("duplicate host name %q", h.Name)
		}
		hosts[h.Name] = h
	}

	dial := cfg.Dial
	if dial == nil {
		dial = sshDial
	}

	params := cfg.Parameters
	if params == nil {
		params = map[string]string{}
	}

	return &baseRuntime{
		planName:   cfg.PlanName,
		workDir:    cfg.WorkDir,
		verbose:    cfg.Verbose,
		parameters: params,
		values:     cache.NewCache[string, string](),
		hosts:      hosts,
		dial:       dial,
		local:      executor.NewLocalExecutor(),
		executors:  cache.NewCache[string, executor.Executor](),
		conns:      cache.NewCache[string, connector.Connection](),
	}, nil
}

func sshDial(h *connector.Host) (connector.Connection, error) {
	cfg, err := h.SSHConfig()
	if err != nil {
		return nil, err
	}
	return connector.NewConnection(cfg)
}

func (rt *baseRuntime) PlanName() string              { return rt.planName }
func (rt *baseRuntime) WorkDir() string               { return rt.workDir }
func (rt *baseRuntime) Verbose() bool                 { return rt.verbose }
func (rt *baseRuntime) Parameters() map[string]string { return rt.parameters }

func (rt *baseRuntime) Values() *cache.Cache[string, string] {
	return rt.values
}

func (rt *baseRuntime) ExecutorFor(hostName string) (executor.Executor, error) {
	if hostName == "" {
		return rt.local, nil
	}

	host, ok := rt.hosts[hostName]
	if !ok {
		return nil, errors.Errorf("unknown host %q", hostName)
	}

	if exec, found := rt.executors.Get(host.ID()); found {
		return exec, nil
	}

	conn, err := rt.ConnectionFor(hostName)
	if err != nil {
		return nil, err
	}

	exec, err := executor.NewRemoteExecutor(conn)
	if err != nil {
		return nil, err
	}
	rt.executors.Set(host.ID(), exec)
	return exec, nil
}

func (rt *baseRuntime) ConnectionFor(hostName string) (connector.Connection, error) {
	if hostName == "" {
		return nil, nil
	}

	host, ok := rt.hosts[hostName]
	if !ok {
		return nil, errors.Errorf("unknown host %q", hostName)
	}

	if conn, found := rt.conns.Get(host.ID()); found {
		return conn, nil
	}

	conn, err := rt.dial(host)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to host %q", hostName)
	}
	rt.connections = append(rt.connections, conn)
	rt.conns.Set(host.ID(), conn)
	return conn, nil
}

func (rt *baseRuntime) Close() error {
	var firstErr error
	for _, conn := range rt.connections {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	rt.connections = nil
	rt.executors.Clean()
	rt.conns.Clean()
	rt.values.Clean()
	return firstErr
}
