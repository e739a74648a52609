// Package config loads objectctx.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name looked up by Find.
const FileName = "objectctx.yaml"

type Backend string

const (
	// BackendBadger persists to a local badger database in DataDir.
	BackendBadger Backend = "badger"
	// BackendMemory keeps everything in memory; data is lost on exit.
	BackendMemory Backend = "memory"
	// BackendDynamoDB talks to DynamoDB, or to Endpoint when set.
	BackendDynamoDB Backend = "dynamodb"
)

type Config struct {
	Backend Backend `yaml:"backend"`

	// DataDir is where BadgerDB stores data for the badger backend.
	DataDir string `yaml:"dataDir"`

	// TablePrefix is prepended to every entity table name.
	TablePrefix string `yaml:"tablePrefix"`

	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// StrictMatching fails lookups that find several entities with one id.
	StrictMatching bool `yaml:"strictMatching"`
	// EventuallyConsistentReads makes lookups and listings cheaper but possibly stale.
	EventuallyConsistentReads bool `yaml:"eventuallyConsistentReads"`
	Verbose                   bool `yaml:"verbose"`
}

func Default() Config {
	return Config{
		Backend: BackendBadger,
		DataDir: "./data",
	}
}

// Load reads the config at path. An empty path searches for objectctx.yaml
// from the current directory upwards and returns Default if there is none.
// Fields missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Find()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendBadger:
		if c.DataDir == "" {
			errs = append(errs, errors.New("dataDir is required for the badger backend"))
		}
	case BackendMemory, BackendDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.Endpoint != "" && c.Backend != BackendDynamoDB {
		errs = append(errs, fmt.Errorf("endpoint is only used by the %s backend", BackendDynamoDB))
	}
	return errors.Join(errs...)
}

// Find searches for objectctx.yaml walking up from the current directory.
// Returns "" if not found.
func Find() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findFrom(dir)
}

func findFrom(dir string) string {
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
