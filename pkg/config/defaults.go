package config

const (
	// ProviderNop disables event publishing.
	ProviderNop = "nop"

	// ProviderKafka publishes stream events to Kafka.
	ProviderKafka = "kafka"

	defaultBaseURL = "http://localhost:8080"
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = "5m"

	defaultEventProvider  = ProviderNop
	defaultEventTopic     = "gwstream.events"
	defaultEventQueueSize = 256

	defaultReplayListen = ":8089"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			BaseURL: defaultBaseURL,
			Model:   defaultModel,
			Timeout: defaultTimeout,
		},
		EventStream: EventStreamConfig{
			Provider:  defaultEventProvider,
			Topic:     defaultEventTopic,
			QueueSize: defaultEventQueueSize,
		},
		Replay: ReplayConfig{
			Listen: defaultReplayListen,
		},
	}
}
