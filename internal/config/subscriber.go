package config

import (
	"fmt"
	"time"
)

// SubscriberConfig holds configuration for the dashboard subscriber.
type SubscriberConfig struct {
	URL            string
	BindAddr       string
	ReconnectDelay time.Duration
	LogCapacity    int
	SymbolsFile    string
	DiagDir        string
	AudioEnabled   bool
	AudioVolume    float64
	LogLevel       string
	LogFile        string
}

// LoadSubscriber reads subscriber configuration from environment variables.
func LoadSubscriber() (*SubscriberConfig, error) {
	loadDotEnv()
	cfg := &SubscriberConfig{
		URL:            getEnvOrDefault("SUBSCRIBER_URL", "ws://127.0.0.1:8090/signals/stream"),
		BindAddr:       getEnvOrDefault("SUBSCRIBER_BIND_ADDR", "127.0.0.1:8095"),
		ReconnectDelay: time.Duration(getEnvIntOrDefault("SUBSCRIBER_RECONNECT_MS", 3000)) * time.Millisecond,
		LogCapacity:    getEnvIntOrDefault("SUBSCRIBER_LOG_CAPACITY", 100),
		SymbolsFile:    getEnvOrDefault("SUBSCRIBER_SYMBOLS_FILE", "./config/symbols.yaml"),
		DiagDir:        getEnvOrDefault("SUBSCRIBER_DIAG_DIR", "./diag"),
		AudioEnabled:   getEnvBoolOrDefault("SUBSCRIBER_AUDIO_ENABLED", true),
		AudioVolume:    getEnvFloatOrDefault("SUBSCRIBER_AUDIO_VOLUME", 0.5),
		LogLevel:       getLogLevel("SUBSCRIBER_LOG_LEVEL"),
		LogFile:        getEnvOrDefault("SUBSCRIBER_LOG_FILE", "logs/subscriber.log"),
	}
	if cfg.ReconnectDelay < 100*time.Millisecond {
		cfg.ReconnectDelay = 100 * time.Millisecond
	}
	if cfg.LogCapacity < 1 {
		return nil, fmt.Errorf("config: SUBSCRIBER_LOG_CAPACITY must be positive, got %d", cfg.LogCapacity)
	}
	if cfg.AudioVolume < 0 || cfg.AudioVolume > 1 {
		return nil, fmt.Errorf("config: SUBSCRIBER_AUDIO_VOLUME must be within [0,1], got %v", cfg.AudioVolume)
	}
	return cfg, nil
}
