package config

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// key is one dotted config key, e.g. "gateway.base_url". The table below is
// in config.toml section order, which is also the order `config list` prints.
type key struct {
	name   string
	secret bool
	get    func(c *Config) string
	set    func(c *Config, v string) error
}

func stringKey(name string, field func(c *Config) *string) key {
	return key{
		name: name,
		get:  func(c *Config) string { return *field(c) },
		set:  func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(name string, field func(c *Config) *bool) key {
	return key{
		name: name,
		get:  func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// checked wraps k so set rejects values failing validate.
func checked(k key, validate func(v string) error) key {
	set := k.set
	k.set = func(c *Config, v string) error {
		if err := validate(v); err != nil {
			return fmt.Errorf("invalid value for %s: %w", k.name, err)
		}
		return set(c, v)
	}
	return k
}

var keys = []key{
	stringKey("gateway.base_url", func(c *Config) *string { return &c.Gateway.BaseURL }),
	{
		name:   "gateway.api_key",
		secret: true,
		get:    func(c *Config) string { return c.Gateway.APIKey },
		set:    func(c *Config, v string) error { c.Gateway.APIKey = v; return nil },
	},
	stringKey("gateway.model", func(c *Config) *string { return &c.Gateway.Model }),
	checked(stringKey("gateway.timeout", func(c *Config) *string { return &c.Gateway.Timeout }), func(v string) error {
		_, err := time.ParseDuration(v)
		return err
	}),

	boolKey("log.debug", func(c *Config) *bool { return &c.Log.Debug }),
	boolKey("log.json", func(c *Config) *bool { return &c.Log.JSON }),
	stringKey("log.file", func(c *Config) *string { return &c.Log.File }),

	checked(stringKey("eventstream.provider", func(c *Config) *string { return &c.EventStream.Provider }), func(v string) error {
		if v != ProviderNop && v != ProviderKafka {
			return fmt.Errorf("%q (available: %s, %s)", v, ProviderNop, ProviderKafka)
		}
		return nil
	}),
	stringKey("eventstream.brokers", func(c *Config) *string { return &c.EventStream.Brokers }),
	stringKey("eventstream.topic", func(c *Config) *string { return &c.EventStream.Topic }),
	stringKey("eventstream.project", func(c *Config) *string { return &c.EventStream.Project }),
	{
		name: "eventstream.queue_size",
		get: func(c *Config) string {
			if c.EventStream.QueueSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.EventStream.QueueSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.queue_size: %w", err)
			}
			c.EventStream.QueueSize = uint(n)
			return nil
		},
	},

	stringKey("replay.listen", func(c *Config) *string { return &c.Replay.Listen }),
	stringKey("replay.file", func(c *Config) *string { return &c.Replay.File }),
	stringKey("replay.tools_file", func(c *Config) *string { return &c.Replay.ToolsFile }),
}

func lookup(name string) (key, error) {
	i := slices.IndexFunc(keys, func(k key) bool { return k.name == name })
	if i < 0 {
		return key{}, fmt.Errorf("unknown config key: %q", name)
	}
	return keys[i], nil
}

// Keys lists every supported key in config.toml order.
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// IsValidKey reports whether name is a supported key.
func IsValidKey(name string) bool {
	_, err := lookup(name)
	return err == nil
}

// IsSecretKey reports whether name holds a credential that should be masked
// when printed.
func IsSecretKey(name string) bool {
	k, err := lookup(name)
	return err == nil && k.secret
}
