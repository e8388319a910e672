package config

import (
	"github.com/dgnsrekt/glassbox/internal/netutil"
	"github.com/dgnsrekt/glassbox/internal/signal"
)

// RelayConfig holds configuration for the signal relay.
type RelayConfig struct {
	BindAddr       string
	PortCandidates []string
	AutoFallback   bool
	Topic          string
	LogLevel       string
	LogFile        string
}

// LoadRelay reads relay configuration from environment variables.
func LoadRelay() (*RelayConfig, error) {
	loadDotEnv()
	cfg := &RelayConfig{
		BindAddr:     getEnvOrDefault("RELAY_BIND_ADDR", "127.0.0.1:8090"),
		AutoFallback: getEnvBoolOrDefault("RELAY_PORT_AUTO_FALLBACK", true),
		Topic:        getEnvOrDefault("RELAY_TOPIC", signal.DefaultTopic),
		LogLevel:     getLogLevel("RELAY_LOG_LEVEL"),
		LogFile:      getEnvOrDefault("RELAY_LOG_FILE", "logs/relay.log"),
	}
	cfg.PortCandidates = netutil.Candidates(netutil.HostOf(cfg.BindAddr),
		getEnvOrDefault("RELAY_PORT_CANDIDATES", "8091,8092,8093"))
	return cfg, nil
}
