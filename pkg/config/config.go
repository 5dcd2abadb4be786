// Package config loads presspatch configuration: named servers, the
// execution policy for batch runs, and the bulk input files (documents
// to create, edits to apply). Formats are dispatched on file extension,
// matching the loader layout in loader.go.
package config

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🔧 ServerDefinition describes one remote WordPress installation
// reachable over SSH.
type ServerDefinition struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // gateway provider name, defaults to "wpcli"
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user" yaml:"user"`
	KeyFile  string `json:"key_file" yaml:"key_file"`
	// KnownHostsFile enables host key verification against an
	// OpenSSH known_hosts file. Empty skips verification.
	KnownHostsFile string `json:"known_hosts,omitempty" yaml:"known_hosts,omitempty"`
	WPPath         string `json:"wp_path" yaml:"wp_path"`
	PHPBin         string `json:"php_bin,omitempty" yaml:"php_bin,omitempty"`
	WPCLIBin       string `json:"wp_cli,omitempty" yaml:"wp_cli,omitempty"`
}

// ⚙️ ExecutionSettings holds the batch execution policy knobs. Timeouts
// are duration strings ("30s", "5m"); empty means no timeout.
type ExecutionSettings struct {
	ParallelThreshold   int    `json:"parallel_threshold,omitempty" yaml:"parallel_threshold,omitempty" hcl:"parallel_threshold,optional"`
	WorkerCount         int    `json:"worker_count,omitempty" yaml:"worker_count,omitempty" hcl:"worker_count,optional"`
	PerOperationTimeout string `json:"per_operation_timeout,omitempty" yaml:"per_operation_timeout,omitempty" hcl:"per_operation_timeout,optional"`
	GlobalTimeout       string `json:"global_timeout,omitempty" yaml:"global_timeout,omitempty" hcl:"global_timeout,optional"`
}

// 📚 Config is the complete presspatch configuration.
type Config struct {
	DefaultServer string                      `json:"default_server,omitempty" yaml:"default_server,omitempty"`
	Servers       map[string]ServerDefinition `json:"servers" yaml:"servers"`
	Execution     ExecutionSettings           `json:"execution,omitempty" yaml:"execution,omitempty"`

	location string
}

// Location returns the path the config was loaded from.
func (c *Config) Location() string {
	return c.location
}

// GetServer resolves a server by name, falling back to the configured
// default when name is empty.
func (c *Config) GetServer(name string) (ServerDefinition, error) {
	if name == "" {
		name = c.DefaultServer
	}
	if name == "" && len(c.Servers) == 1 {
		for _, srv := range c.Servers {
			return srv.withDefaults(), nil
		}
	}
	srv, ok := c.Servers[name]
	if !ok {
		return ServerDefinition{}, errors.Errorf("server %q not found in config", name)
	}
	return srv.withDefaults(), nil
}

// withDefaults fills the optional fields with the same defaults the
// original tool used.
func (s ServerDefinition) withDefaults() ServerDefinition {
	if s.Provider == "" {
		s.Provider = "wpcli"
	}
	if s.Port == 0 {
		s.Port = 22
	}
	if s.PHPBin == "" {
		s.PHPBin = "php"
	}
	if s.WPCLIBin == "" {
		s.WPCLIBin = "/usr/local/bin/wp"
	}
	return s
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return errors.New("at least one server is required")
	}
	if c.DefaultServer != "" {
		if _, ok := c.Servers[c.DefaultServer]; !ok {
			return errors.Errorf("default server %q is not defined", c.DefaultServer)
		}
	}
	for name, srv := range c.Servers {
		if srv.Host == "" {
			return errors.Errorf("server %q: host is required", name)
		}
		if srv.User == "" {
			return errors.Errorf("server %q: user is required", name)
		}
		if srv.WPPath == "" {
			return errors.Errorf("server %q: wp_path is required", name)
		}
		if srv.Port < 0 || srv.Port > 65535 {
			return errors.Errorf("server %q: invalid port %d", name, srv.Port)
		}
	}
	if err := c.Execution.Validate(); err != nil {
		return errors.Errorf("execution settings: %w", err)
	}
	return nil
}

// Validate checks the execution settings, including that the timeout
// strings parse as durations.
func (e ExecutionSettings) Validate() error {
	if e.ParallelThreshold < 0 {
		return errors.Errorf("parallel_threshold must not be negative, got %d", e.ParallelThreshold)
	}
	if e.WorkerCount < 0 {
		return errors.Errorf("worker_count must not be negative, got %d", e.WorkerCount)
	}
	if _, err := parseTimeout(e.PerOperationTimeout); err != nil {
		return errors.Errorf("per_operation_timeout: %w", err)
	}
	if _, err := parseTimeout(e.GlobalTimeout); err != nil {
		return errors.Errorf("global_timeout: %w", err)
	}
	return nil
}

// PerOperationDuration returns the parsed per-operation timeout, zero
// when unset. Call Validate first; parse failures here yield zero.
func (e ExecutionSettings) PerOperationDuration() time.Duration {
	d, _ := parseTimeout(e.PerOperationTimeout)
	return d
}

// GlobalDuration returns the parsed global timeout, zero when unset.
func (e ExecutionSettings) GlobalDuration() time.Duration {
	d, _ := parseTimeout(e.GlobalTimeout)
	return d
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("parsing duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, errors.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}
