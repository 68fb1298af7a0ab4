package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/gwstream/pkg/dotdir"
)

// EnvPrefix is the prefix of every environment variable gwstream reads.
const EnvPrefix = "GWSTREAM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GWSTREAM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (GWSTREAM_GATEWAY_BASE_URL, GWSTREAM_GATEWAY_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: GWSTREAM_GATEWAY_MODEL, GWSTREAM_LOG_DEBUG, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Gateway: GatewayConfig{
			BaseURL: v.GetString("gateway.base_url"),
			APIKey:  v.GetString("gateway.api_key"),
			Model:   v.GetString("gateway.model"),
			Timeout: v.GetString("gateway.timeout"),
		},
		Log: LogConfig{
			Debug: v.GetBool("log.debug"),
			JSON:  v.GetBool("log.json"),
			File:  v.GetString("log.file"),
		},
		EventStream: EventStreamConfig{
			Provider:  v.GetString("eventstream.provider"),
			Brokers:   v.GetString("eventstream.brokers"),
			Topic:     v.GetString("eventstream.topic"),
			Project:   v.GetString("eventstream.project"),
			QueueSize: v.GetUint("eventstream.queue_size"),
		},
		Replay: ReplayConfig{
			Listen:    v.GetString("replay.listen"),
			File:      v.GetString("replay.file"),
			ToolsFile: v.GetString("replay.tools_file"),
		},
	}
}

// setViperDefaults seeds viper with NewDefaultConfig through the key table,
// so defaults.go stays the single source of default values.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, k := range keys {
		v.SetDefault(k.name, k.get(d))
	}
}
