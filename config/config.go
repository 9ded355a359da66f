package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/achilleasa/accel/log"
	"github.com/achilleasa/accel/tracer"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Bench describes a query benchmark run.
type Bench struct {
	// The scene to load (.obj or .zip).
	Scene string `yaml:"scene"`

	// Number of query workers; 0 selects GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Ray grid dimensions. One primary ray is generated per pixel.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Number of batches to trace.
	Batches int `yaml:"batches"`

	// Query mode: nearest or any.
	Mode string `yaml:"mode"`

	// Traversal stack capacity; 0 selects the tree minimum.
	StackCapacity int `yaml:"stack_capacity"`

	// Maximum ray distance.
	MaxDistance float32 `yaml:"max_distance"`

	// Builder settings used when compiling .obj scenes.
	Build BuildOptions `yaml:"build"`

	LogLevel string `yaml:"log_level"`

	// Address for serving Prometheus metrics; empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

type BuildOptions struct {
	MinLeafItems int `yaml:"min_leaf_items"`
	MaxDepth     int `yaml:"max_depth"`
}

// Get the default benchmark configuration.
func Default() Bench {
	return Bench{
		Workers:     runtime.GOMAXPROCS(0),
		Width:       512,
		Height:      512,
		Batches:     4,
		Mode:        tracer.NearestHit.String(),
		MaxDistance: 1e6,
		Build: BuildOptions{
			MinLeafItems: 4,
		},
		LogLevel: log.Notice.String(),
	}
}

// Load a configuration file. Fields missing from the file keep their
// default values.
func Load(path string) (Bench, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: could not read %q: %w", path, err)
	}

	if err = Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: could not parse %q: %w", path, err)
	}
	return cfg, nil
}

// Decode YAML data on top of cfg and validate the result.
func Parse(data []byte, cfg *Bench) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Check the configuration for invalid values.
func (b *Bench) Validate() error {
	if b.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: ray grid dimensions must be positive; got %dx%d", ErrInvalidConfig, b.Width, b.Height)
	}
	if b.Batches <= 0 {
		return fmt.Errorf("%w: batches must be positive", ErrInvalidConfig)
	}
	if b.StackCapacity < 0 {
		return fmt.Errorf("%w: stack_capacity must not be negative", ErrInvalidConfig)
	}
	if !(b.MaxDistance > 0) {
		return fmt.Errorf("%w: max_distance must be positive", ErrInvalidConfig)
	}
	if b.Build.MinLeafItems < 0 || b.Build.MaxDepth < 0 {
		return fmt.Errorf("%w: build options must not be negative", ErrInvalidConfig)
	}

	mode, err := tracer.ParseMode(b.Mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if mode == tracer.Overlap {
		return fmt.Errorf("%w: mode %q is not supported for ray benchmarks", ErrInvalidConfig, b.Mode)
	}

	if _, err = log.ParseLevel(b.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Get the parsed query mode. Only valid after a successful Validate call.
func (b *Bench) QueryMode() tracer.Mode {
	mode, _ := tracer.ParseMode(b.Mode)
	return mode
}

// Get the parsed log level. Only valid after a successful Validate call.
func (b *Bench) Level() log.Level {
	level, _ := log.ParseLevel(b.LogLevel)
	return level
}
