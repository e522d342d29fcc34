package interpreter

import (
	"time"

	"inventory-assistant/internal/common/config"
)

type Config struct {
	// Location bounds the calendar day used by today's summary.
	Location            *time.Location
	DefaultUnit         string
	DefaultLowThreshold float64
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// LoadConfig builds interpreter settings from the application config.
func LoadConfig(cfg config.CommandsConfig) (*Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Config{
		Location:            loc,
		DefaultUnit:         cfg.DefaultUnit,
		DefaultLowThreshold: cfg.DefaultLowThreshold,
	}, nil
}

func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Config) clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}
