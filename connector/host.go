package connector

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/seqops/stagehand/common"
)

// Host describes one remote target a step may run on.
type Host struct {
	Name           string
	Address        string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	Timeout        time.Duration
}

// ID returns a stable identity for connection caching.
func (h *Host) ID() string {
	return fmt.Sprintf("%s@%s:%d", h.User, h.Address, h.Port)
}

// Validate checks that the host carries enough information to dial.
func (h *Host) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("host name cannot be empty")
	}
	if strings.TrimSpace(h.Address) == "" {
		return fmt.Errorf("host %s: address cannot be empty", h.Name)
	}
	if ip := net.ParseIP(h.Address); ip == nil {
		// Not an IP; accept as hostname but reject obvious garbage.
		if strings.ContainsAny(h.Address, " /") {
			return fmt.Errorf("host %s: invalid address %q", h.Name, h.Address)
		}
	}
	if h.Port <= 0 || h.Port > 65535 {
		return fmt.Errorf("host %s: invalid port %d", h.Name, h.Port)
	}
	if strings.TrimSpace(h.User) == "" {
		return fmt.Errorf("host %s: user cannot be empty", h.Name)
	}
	if h.Password == "" && h.PrivateKeyPath == "" {
		return fmt.Errorf("host %s: either password or privateKeyPath must be set", h.Name)
	}
	return nil
}

// SSHConfig builds the connection config for this host, reading the
// private key file if one is configured.
func (h *Host) SSHConfig() (Config, error) {
	cfg := Config{
		Username: h.User,
		Password: h.Password,
		Address:  h.Address,
		Port:     h.Port,
		Timeout:  h.Timeout,
	}
	if cfg.Port == 0 {
		cfg.Port = common.DefaultSSHPort
	}
	if h.PrivateKeyPath != "" {
		key, err := os.ReadFile(h.PrivateKeyPath)
		if err != nil {
			return Config{}, fmt.Errorf("host %s: failed to read private key %s: %w", h.Name, h.PrivateKeyPath, err)
		}
		cfg.PrivateKey = string(key)
	}
	return cfg, nil
}
