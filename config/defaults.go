package config

import (
	"strings"
	"time"

	"github.com/seqops/stagehand/common"
	"github.com/seqops/stagehand/connector"
)

const (
	// DefaultHTTPMethod is used when an http action names no method.
	DefaultHTTPMethod = "GET"
	// DefaultHostTimeout bounds the SSH dial, not step execution.
	DefaultHostTimeout = 30 * time.Second
)

// SetDefaults fills in omitted optional fields. Called by the Loader
// before validation so validation sees the effective plan.
func SetDefaults(cfg *PlanConfig) {
	for i := range cfg.Spec.Hosts {
		h := &cfg.Spec.Hosts[i]
		if h.Port == 0 {
			h.Port = common.DefaultSSHPort
		}
		if h.Timeout == 0 {
			h.Timeout = Duration(DefaultHostTimeout)
		}
	}
	for i := range cfg.Spec.Steps {
		s := &cfg.Spec.Steps[i]
		if s.HTTP != nil {
			if s.HTTP.Method == "" {
				s.HTTP.Method = DefaultHTTPMethod
			} else {
				s.HTTP.Method = strings.ToUpper(s.HTTP.Method)
			}
		}
	}
}

// Hosts converts the plan's host specs into connector hosts.
func Hosts(cfg *PlanConfig) []*connector.Host {
	hosts := make([]*connector.Host, 0, len(cfg.Spec.Hosts))
	for _, h := range cfg.Spec.Hosts {
		hosts = append(hosts, &connector.Host{
			Name:           h.Name,
			Address:        h.Address,
			Port:           h.Port,
			User:           h.User,
			Password:       h.Password,
			PrivateKeyPath: h.PrivateKeyPath,
			Timeout:        h.Timeout.Std(),
		})
	}
	return hosts
}
