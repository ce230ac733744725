package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Seed      SeedConfig      `yaml:"seed"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Evolution EvolutionConfig `yaml:"evolution"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SeedConfig points at the seed universe definition
type SeedConfig struct {
	Path string `yaml:"path,omitempty"`
	// Watch reloads the seed file on change and announces new regions
	Watch bool `yaml:"watch"`
}

// DiscoveryConfig tunes the client-facing polling cadences advertised to
// engine consumers, and nothing server-side; the server reveals regions on
// activity, not on a schedule.
type DiscoveryConfig struct {
	ActiveInterval *Duration `yaml:"active_interval,omitempty"`
	IdleInterval   *Duration `yaml:"idle_interval,omitempty"`
	IdleThreshold  *Duration `yaml:"idle_threshold,omitempty"`
}

// EvolutionConfig tunes the evolution service
type EvolutionConfig struct {
	TickThrottle *Duration `yaml:"tick_throttle,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
