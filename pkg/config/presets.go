package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// presets adjust the defaults for a known gateway setup.
var presets = map[string]func(c *Config){
	// local is a gateway on localhost:8080, i.e. the defaults.
	"local": func(*Config) {},

	// replay points at `gwstream replay` on its default listen address.
	"replay": func(c *Config) {
		c.Gateway.BaseURL = "http://localhost" + defaultReplayListen
		c.Gateway.Model = "replay"
		c.Gateway.Timeout = "30s"
	},

	"openai": func(c *Config) {
		c.Gateway.BaseURL = "https://api.openai.com"
	},
}

// PresetConfig returns the defaults adjusted for the named preset.
func PresetConfig(name string) (*Config, error) {
	apply, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	cfg := NewDefaultConfig()
	apply(cfg)
	return cfg, nil
}

// PresetNames lists the recognized presets, sorted.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}
