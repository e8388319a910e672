package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRelayDefaults(t *testing.T) {
	t.Setenv("RELAY_BIND_ADDR", "")
	t.Setenv("RELAY_PORT_CANDIDATES", "")
	t.Setenv("RELAY_TOPIC", "")

	cfg, err := LoadRelay()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8090", cfg.BindAddr)
	assert.Equal(t, []string{"127.0.0.1:8091", "127.0.0.1:8092", "127.0.0.1:8093"}, cfg.PortCandidates)
	assert.True(t, cfg.AutoFallback)
	assert.Equal(t, "trade-signals", cfg.Topic)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRelayOverrides(t *testing.T) {
	t.Setenv("RELAY_BIND_ADDR", "0.0.0.0:9000")
	t.Setenv("RELAY_PORT_CANDIDATES", "9001")
	t.Setenv("RELAY_PORT_AUTO_FALLBACK", "false")
	t.Setenv("RELAY_LOG_LEVEL", "DEBUG")

	cfg, err := LoadRelay()
	require.NoError(t, err)
	assert.Equal(t, []string{"0.0.0.0:9001"}, cfg.PortCandidates)
	assert.False(t, cfg.AutoFallback)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadSubscriber(t *testing.T) {
	t.Setenv("SUBSCRIBER_RECONNECT_MS", "")
	t.Setenv("SUBSCRIBER_LOG_CAPACITY", "")
	t.Setenv("SUBSCRIBER_AUDIO_VOLUME", "")

	cfg, err := LoadSubscriber()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 100, cfg.LogCapacity)
	assert.InDelta(t, 0.5, cfg.AudioVolume, 1e-9)

	t.Setenv("SUBSCRIBER_RECONNECT_MS", "10")
	cfg, err = LoadSubscriber()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.ReconnectDelay)
}

func TestLoadSubscriberRejectsBadValues(t *testing.T) {
	t.Setenv("SUBSCRIBER_LOG_CAPACITY", "0")
	_, err := LoadSubscriber()
	require.Error(t, err)

	t.Setenv("SUBSCRIBER_LOG_CAPACITY", "50")
	t.Setenv("SUBSCRIBER_AUDIO_VOLUME", "1.5")
	_, err = LoadSubscriber()
	require.Error(t, err)
}

func TestLoadSimulator(t *testing.T) {
	t.Setenv("SIMULATOR_INTERVAL_MS", "250")
	cfg, err := LoadSimulator()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "http://127.0.0.1:8090/signals", cfg.RelayURL)
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSymbols(t *testing.T) {
	path := writeFile(t, "symbols:\n  - symbol: btc\n    reference: 67421.50\n  - symbol: ETH\n")

	got, err := LoadSymbols(path, strings.ToUpper)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTC", got[0].Symbol)
	assert.Equal(t, "67421.5", got[0].Reference.String())
	assert.Equal(t, "ETH", got[1].Symbol)
	assert.True(t, got[1].Reference.IsZero())
}

func TestLoadSymbolsMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadSymbols(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSymbols(), got)
}

func TestLoadSymbolsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "symbols: []\n",
		"no symbol": "symbols:\n  - reference: 1\n",
		"duplicate": "symbols:\n  - symbol: SOL\n  - symbol: sol\n",
		"bad ref":   "symbols:\n  - symbol: SOL\n    reference: lots\n",
		"negative":  "symbols:\n  - symbol: SOL\n    reference: -1\n",
		"not yaml":  "symbols: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSymbols(writeFile(t, body), strings.ToUpper)
			require.Error(t, err)
		})
	}
}
