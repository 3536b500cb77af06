package event

import (
	"errors"
	"fmt"

	"github.com/viant/ossim/service/messaging"
)

// Config selects the queue carrying lifecycle events to the listener.
type Config struct {
	// Buffer is the number of events held by the memory queue.
	Buffer int `json:"buffer" yaml:"buffer"`
	// Vendor is memory (default) or fs.
	Vendor messaging.Vendor `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	// URL is the fs queue location.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DefaultConfig returns the default event configuration
func DefaultConfig() Config {
	return Config{Buffer: 256, Vendor: messaging.VendorMemory}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	switch c.Vendor {
	case "", messaging.VendorMemory:
		if c.Buffer < 1 {
			errs = append(errs, fmt.Errorf("events.buffer must be > 0, got %d", c.Buffer))
		}
	case messaging.VendorFS:
		if c.URL == "" {
			errs = append(errs, fmt.Errorf("events.url is required for the fs vendor"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported queue vendor: %s", c.Vendor))
	}
	return errors.Join(errs...)
}
