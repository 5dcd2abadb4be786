package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads a configuration file from the given path.
// The format is determined by the file extension:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .presspatch will try both YAML and HCL formats
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var cfg *Config

	// For .presspatch files, try both YAML and HCL
	if ext == ".presspatch" || filepath.Base(path) == ".presspatch" {
		cfg, err = loadYAML(data)
		if err != nil {
			cfg, err = loadHCL(data, path)
		}
		if err != nil {
			return nil, errors.Errorf("failed to parse .presspatch as YAML or HCL: %w", err)
		}
	} else {
		switch ext {
		case ".json":
			cfg, err = loadJSON(data)
		case ".yaml", ".yml":
			cfg, err = loadYAML(data)
		case ".hcl":
			cfg, err = loadHCL(data, path)
		default:
			return nil, errors.Errorf("unsupported file extension %q", ext)
		}
		if err != nil {
			return nil, err
		}
	}

	cfg.location = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// loadJSON loads a configuration from JSON data
func loadJSON(data []byte) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}

// loadYAML loads a configuration from YAML data
func loadYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// hclConfig mirrors Config with labeled server blocks, which is how HCL
// expresses a named map.
type hclConfig struct {
	DefaultServer string             `hcl:"default_server,optional"`
	Servers       []hclServer        `hcl:"server,block"`
	Execution     *ExecutionSettings `hcl:"execution,block"`
}

type hclServer struct {
	Name           string `hcl:"name,label"`
	Provider       string `hcl:"provider,optional"`
	Host           string `hcl:"host"`
	Port           int    `hcl:"port,optional"`
	User           string `hcl:"user"`
	KeyFile        string `hcl:"key_file"`
	KnownHostsFile string `hcl:"known_hosts,optional"`
	WPPath         string `hcl:"wp_path"`
	PHPBin         string `hcl:"php_bin,optional"`
	WPCLIBin       string `hcl:"wp_cli,optional"`
}

// loadHCL loads a configuration from HCL data
func loadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		DefaultServer: raw.DefaultServer,
		Servers:       make(map[string]ServerDefinition, len(raw.Servers)),
	}
	for _, srv := range raw.Servers {
		cfg.Servers[srv.Name] = ServerDefinition{
			Provider:       srv.Provider,
			Host:           srv.Host,
			Port:           srv.Port,
			User:           srv.User,
			KeyFile:        srv.KeyFile,
			KnownHostsFile: srv.KnownHostsFile,
			WPPath:         srv.WPPath,
			PHPBin:         srv.PHPBin,
			WPCLIBin:       srv.WPCLIBin,
		}
	}
	if raw.Execution != nil {
		cfg.Execution = *raw.Execution
	}
	return cfg, nil
}
