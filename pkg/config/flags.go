package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --base-url
// on "gwstream chat", "gwstream models" and "gwstream health").
type Flag struct {
	// Name is the long flag name (e.g. "base-url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "gateway.base_url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBaseURL       = "base-url"
	FlagAPIKey        = "api-key"
	FlagModel         = "model"
	FlagTimeout       = "timeout"
	FlagEventProvider = "eventstream-provider"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
	FlagProject       = "project"
	FlagQueueSize     = "queue-size"
	FlagReplayListen  = "listen"
	FlagReplayFile    = "file"
	FlagReplayTools   = "tools-file"
	FlagDebug         = "debug"
	FlagLogJSON       = "log-json"
	FlagLogFile       = "log-file"
)

// LogFlags are the persistent logging flags every command binds.
var LogFlags = []string{FlagDebug, FlagLogJSON, FlagLogFile}

// Flags is the registry shared by all gwstream commands.
var Flags = FlagSet{
	FlagBaseURL: {
		Name:        "base-url",
		Shorthand:   "u",
		ViperKey:    "gateway.base_url",
		Description: "AI gateway base URL",
	},
	FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    "gateway.api_key",
		Description: "API key sent as a bearer token",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "gateway.model",
		Description: "Model name",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "gateway.timeout",
		Description: "Per-call timeout, including the streamed body (e.g. 30s, 5m)",
	},
	FlagEventProvider: {
		Name:        "eventstream-provider",
		ViperKey:    "eventstream.provider",
		Description: "Stream event publisher (nop, kafka)",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka broker addresses",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for stream events",
	},
	FlagProject: {
		Name:        "project",
		ViperKey:    "eventstream.project",
		Description: "Project name to tag published events",
	},
	FlagQueueSize: {
		Name:        "queue-size",
		ViperKey:    "eventstream.queue_size",
		Description: "Capacity of the asynchronous publish queue",
	},
	FlagReplayListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "replay.listen",
		Description: "Address for the replay gateway to listen on",
	},
	FlagReplayFile: {
		Name:        "file",
		Shorthand:   "f",
		ViperKey:    "replay.file",
		Description: "Recorded SSE stream to serve",
	},
	FlagReplayTools: {
		Name:        "tools-file",
		ViperKey:    "replay.tools_file",
		Description: "JSON file with the tool listing to serve",
	},
	FlagDebug: {
		Name:        "debug",
		Shorthand:   "d",
		ViperKey:    "log.debug",
		Description: "Enable debug logging",
	},
	FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Write logs as JSON",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "log.file",
		Description: "Also write JSON logs to this file",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet. Persistent
// flags are registered on cmd.PersistentFlags() so subcommands inherit them.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool, persistent bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		flags.BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		flags.BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
