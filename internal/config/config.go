package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Scenarios are the dependency graph shapes the bench tool knows how to build.
var Scenarios = []string{"chain", "fanout", "diamond"}

// Config holds the parameters of a bench run and of the bench server.
// Fields missing from a file keep their Default value.
type Config struct {
	Scenario       string `json:"scenario" yaml:"scenario" toml:"scenario"`
	Size           int    `json:"size" yaml:"size" toml:"size"`
	Writes         int    `json:"writes" yaml:"writes" toml:"writes"`
	Sync           bool   `json:"sync" yaml:"sync" toml:"sync"`
	MaxUpdateCount int    `json:"max_update_count" yaml:"max_update_count" toml:"max_update_count"`
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

func Default() Config {
	return Config{
		Scenario:       "chain",
		Size:           100,
		Writes:         1000,
		MaxUpdateCount: 100,
		Addr:           ":9090",
		LogLevel:       "info",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, xerrors.New("empty config path")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, xerrors.Errorf("failed to read config: %v", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, xerrors.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, xerrors.Errorf("failed to parse %s: %v", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a runnable bench.
func (c Config) Validate() error {
	if !slices.Contains(Scenarios, c.Scenario) {
		return xerrors.Errorf("unknown scenario %q (want one of %s)", c.Scenario, strings.Join(Scenarios, ", "))
	}
	if c.Size <= 0 {
		return xerrors.Errorf("size must be positive, got %d", c.Size)
	}
	if c.Writes < 0 {
		return xerrors.Errorf("writes can't be negative, got %d", c.Writes)
	}
	if c.MaxUpdateCount < 0 {
		return xerrors.Errorf("max_update_count can't be negative, got %d", c.MaxUpdateCount)
	}

	return nil
}
