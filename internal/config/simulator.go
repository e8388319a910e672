package config

import "time"

// SimulatorConfig holds configuration for the demo signal producer.
type SimulatorConfig struct {
	RelayURL    string
	Interval    time.Duration
	SymbolsFile string
	LogLevel    string
	LogFile     string
}

// LoadSimulator reads simulator configuration from environment variables.
func LoadSimulator() (*SimulatorConfig, error) {
	loadDotEnv()
	cfg := &SimulatorConfig{
		RelayURL:    getEnvOrDefault("SIMULATOR_RELAY_URL", "http://127.0.0.1:8090/signals"),
		Interval:    time.Duration(getEnvIntOrDefault("SIMULATOR_INTERVAL_MS", 0)) * time.Millisecond,
		SymbolsFile: getEnvOrDefault("SUBSCRIBER_SYMBOLS_FILE", "./config/symbols.yaml"),
		LogLevel:    getLogLevel("SIMULATOR_LOG_LEVEL"),
		LogFile:     getEnvOrDefault("SIMULATOR_LOG_FILE", "logs/simulator.log"),
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	return cfg, nil
}
