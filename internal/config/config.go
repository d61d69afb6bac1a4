package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/sitegraph/internal/cost"
	"github.com/joshharrison/sitegraph/internal/log"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "sitegraph.yaml"

// Sentinel errors.
var (
	ErrNotFound = errors.New("config file not found")
	ErrInvalid  = errors.New("invalid config")
)

// Config holds sitegraph settings. CLI flags override file values.
type Config struct {
	// DefaultRegion prices a project whose input names no region.
	DefaultRegion string `yaml:"default_region"`
	// RegionsFile is a YAML region catalog. Relative paths resolve against
	// the config file's directory.
	RegionsFile string `yaml:"regions_file,omitempty"`
	// ParallelWorkers bounds the layered forward pass; 0 means unbounded.
	ParallelWorkers int `yaml:"parallel_workers"`
	// ParallelThreshold is the task count from which the layered forward
	// pass is used. 0 disables it.
	ParallelThreshold int       `yaml:"parallel_threshold"`
	Log               LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DefaultRegion:     cost.BaselineRegionID,
		ParallelWorkers:   4,
		ParallelThreshold: 500,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file returns
// an error wrapping ErrNotFound.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.RegionsFile != "" && !filepath.IsAbs(cfg.RegionsFile) {
		cfg.RegionsFile = filepath.Join(filepath.Dir(path), cfg.RegionsFile)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enum fields.
func (c Config) Validate() error {
	if c.DefaultRegion == "" {
		return fmt.Errorf("%w: default_region must not be empty", ErrInvalid)
	}
	if c.ParallelWorkers < 0 {
		return fmt.Errorf("%w: parallel_workers must be >= 0, got %d", ErrInvalid, c.ParallelWorkers)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("%w: parallel_threshold must be >= 0, got %d", ErrInvalid, c.ParallelThreshold)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Catalog loads the region catalog named by RegionsFile, or the built-in
// baseline-only catalog when none is set.
func (c Config) Catalog() (*cost.Catalog, error) {
	if c.RegionsFile == "" {
		return cost.NewCatalog()
	}
	return cost.LoadCatalog(c.RegionsFile)
}
