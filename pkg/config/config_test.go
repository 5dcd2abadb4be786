package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
default_server: production
servers:
  production:
    host: wp.example.com
    user: deploy
    key_file: /home/deploy/.ssh/id_ed25519
    known_hosts: /home/deploy/.ssh/known_hosts
    wp_path: /var/www/html
  staging:
    host: staging.example.com
    port: 2222
    user: deploy
    key_file: /home/deploy/.ssh/id_ed25519
    wp_path: /var/www/staging
    php_bin: /opt/plesk/php/8.3/bin/php
execution:
  parallel_threshold: 12
  worker_count: 6
  per_operation_timeout: 30s
  global_timeout: 5m
`)

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.DefaultServer)
	assert.Equal(t, 12, cfg.Execution.ParallelThreshold)
	assert.Equal(t, 6, cfg.Execution.WorkerCount)
	assert.Equal(t, 30*time.Second, cfg.Execution.PerOperationDuration())
	assert.Equal(t, 5*time.Minute, cfg.Execution.GlobalDuration())

	srv, err := cfg.GetServer("")
	require.NoError(t, err)
	assert.Equal(t, "wp.example.com", srv.Host)
	assert.Equal(t, 22, srv.Port, "default port")
	assert.Equal(t, "php", srv.PHPBin, "default php binary")
	assert.Equal(t, "/usr/local/bin/wp", srv.WPCLIBin, "default wp-cli binary")
	assert.Equal(t, "wpcli", srv.Provider, "default provider")
	assert.Equal(t, "/home/deploy/.ssh/known_hosts", srv.KnownHostsFile)

	srv, err = cfg.GetServer("staging")
	require.NoError(t, err)
	assert.Equal(t, 2222, srv.Port)
	assert.Equal(t, "/opt/plesk/php/8.3/bin/php", srv.PHPBin)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "servers": {
    "main": {
      "host": "wp.example.com",
      "user": "deploy",
      "key_file": "/key",
      "wp_path": "/var/www/html"
    }
  }
}`)

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)

	srv, err := cfg.GetServer("")
	require.NoError(t, err)
	assert.Equal(t, "wp.example.com", srv.Host, "single server is the implicit default")
}

func TestLoadConfig_HCL(t *testing.T) {
	path := writeFile(t, "config.hcl", `
default_server = "main"

server "main" {
  host     = "wp.example.com"
  user     = "deploy"
  key_file = "/key"
  wp_path  = "/var/www/html"
}

execution {
  parallel_threshold = 8
}
`)

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Execution.ParallelThreshold)

	srv, err := cfg.GetServer("main")
	require.NoError(t, err)
	assert.Equal(t, "deploy", srv.User)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "unsupported_extension",
			file:    "config.toml",
			content: "x = 1",
			wantErr: "unsupported file extension",
		},
		{
			name:    "no_servers",
			file:    "config.yaml",
			content: "servers: {}",
			wantErr: "at least one server is required",
		},
		{
			name: "missing_host",
			file: "config.yaml",
			content: `
servers:
  main:
    user: deploy
    key_file: /key
    wp_path: /var/www
`,
			wantErr: "host is required",
		},
		{
			name: "unknown_default_server",
			file: "config.yaml",
			content: `
default_server: nope
servers:
  main:
    host: h
    user: u
    key_file: /key
    wp_path: /var/www
`,
			wantErr: `default server "nope" is not defined`,
		},
		{
			name: "bad_timeout",
			file: "config.yaml",
			content: `
servers:
  main:
    host: h
    user: u
    key_file: /key
    wp_path: /var/www
execution:
  global_timeout: banana
`,
			wantErr: "global_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadConfig(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetServer_NotFound(t *testing.T) {
	cfg := &Config{Servers: map[string]ServerDefinition{
		"a": {Host: "h", User: "u", WPPath: "/w"},
		"b": {Host: "h", User: "u", WPPath: "/w"},
	}}
	_, err := cfg.GetServer("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `server "missing" not found`)

	// Two servers and no default is ambiguous.
	_, err = cfg.GetServer("")
	require.Error(t, err)
}
