// Package config loads the gearstore CLI configuration.
//
// The config file lives at os.UserConfigDir()/gearstore/config.yaml:
//
//	~/.config/gearstore/config.yaml                      (Linux)
//	~/Library/Application Support/gearstore/config.yaml  (macOS)
//	%AppData%/gearstore/config.yaml                      (Windows)
//
// A missing file is not an error; every field has a working default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "gearstore"

	// configFile is the configuration file name.
	configFile = "config.yaml"
)

// Config is the gearstore CLI configuration.
type Config struct {
	// Storage configures the record store.
	Storage Storage `yaml:"storage,omitempty"`

	// Sink configures where 'queue drain' ships events.
	Sink Sink `yaml:"sink,omitempty"`

	// path is where the config was loaded from (or will be saved to).
	path string
}

// Storage configures the record store.
type Storage struct {
	// Root overrides the storage root directory.
	Root string `yaml:"root,omitempty"`

	// FilePrefix overrides the record file name prefix.
	FilePrefix string `yaml:"file_prefix,omitempty"`

	// MaxQueueBytes and TrimTargetBytes override the telemetry queue
	// byte budget.
	MaxQueueBytes   int `yaml:"max_queue_bytes,omitempty"`
	TrimTargetBytes int `yaml:"trim_target_bytes,omitempty"`

	// SyncWrites fsyncs after every record write.
	SyncWrites bool `yaml:"sync_writes,omitempty"`
}

// Sink configures the S3-compatible destination for drained telemetry.
type Sink struct {
	// Bucket receives one JSON object per drained batch. Required for
	// 'queue drain'.
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is prepended to object keys.
	Prefix string `yaml:"prefix,omitempty"`

	// Region is the bucket's region.
	Region string `yaml:"region,omitempty"`

	// Endpoint points at an S3-compatible service (MinIO, R2).
	Endpoint string `yaml:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey are the static credentials used
	// for uploads.
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Load reads the configuration from the default location. A missing
// file yields a zero config.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir, configFile))
}

// LoadFrom reads the configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Save writes the configuration back to its file. The file is created
// owner-readable only, since the sink section may hold credentials.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(c.path, data, 0o600)
}
