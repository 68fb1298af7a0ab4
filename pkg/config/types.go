package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the persistent gwstream configuration stored as
// config.toml in the .gwstream/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Gateway     GatewayConfig     `toml:"gateway"`
	Log         LogConfig         `toml:"log"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Replay      ReplayConfig      `toml:"replay"`
}

// GatewayConfig holds the settings used to reach the AI gateway.
type GatewayConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`

	// Timeout is a Go duration string (e.g. "5m") bounding each call.
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value is zero.
func (g GatewayConfig) TimeoutDuration() (time.Duration, error) {
	if g.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid gateway.timeout %q: %w", g.Timeout, err)
	}
	return d, nil
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool   `toml:"debug,omitempty"`
	JSON  bool   `toml:"json,omitempty"`
	File  string `toml:"file,omitempty"`
}

// EventStreamConfig holds stream event publishing settings.
type EventStreamConfig struct {
	// Provider is "nop" (disabled) or "kafka".
	Provider  string `toml:"provider,omitempty"`
	Brokers   string `toml:"brokers,omitempty"` // comma separated host:port list
	Topic     string `toml:"topic,omitempty"`
	Project   string `toml:"project,omitempty"`
	QueueSize uint   `toml:"queue_size,omitempty"`
}

// BrokerList splits Brokers on commas, dropping empty entries.
func (e EventStreamConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ReplayConfig holds settings for the replay gateway.
type ReplayConfig struct {
	Listen    string `toml:"listen,omitempty"`
	File      string `toml:"file,omitempty"`
	ToolsFile string `toml:"tools_file,omitempty"`
}
