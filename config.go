package ossim

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/generator"
	"github.com/viant/ossim/service/processor"
	"github.com/viant/ossim/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from YAML or JSON; sections left out keep their defaults when
// decoded on top of DefaultConfig.
type Config struct {
	Memory    allocator.Config `json:"memory" yaml:"memory"`
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Generator generator.Config `json:"generator" yaml:"generator"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Events    event.Config     `json:"events" yaml:"events"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Snapshots SnapshotsConfig  `json:"snapshots" yaml:"snapshots"`
}

type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	OutputFile  string `json:"outputFile" yaml:"outputFile"`
}

type SnapshotsConfig struct {
	// URL selects a file store (any afs URL); empty keeps snapshots in memory.
	URL string `json:"url" yaml:"url"`
}

// DefaultConfig returns a Config populated with the reference sizing.
func DefaultConfig() *Config {
	return &Config{
		Memory:    allocator.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Generator: generator.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Events:    event.DefaultConfig(),
		Tracing:   TracingConfig{ServiceName: "ossim"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, err := range []error{
		c.Memory.Validate(),
		c.Scheduler.Validate(),
		c.Generator.Validate(),
		c.Processor.Validate(),
		c.Events.Validate(),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing.serviceName is required when tracing is enabled"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config from URL (any afs supported scheme) on top
// of DefaultConfig and validates it.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
