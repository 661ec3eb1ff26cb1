package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, SourceMock, cfg.DataSource)
	assert.Empty(t, cfg.DataBaseURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 10*time.Second, cfg.DataFetchTimeout)
	assert.Equal(t, 16, cfg.DataCacheSize)
	assert.Equal(t, uint64(42), cfg.MockSeed)
	assert.Equal(t, 24, cfg.MockStations)
	assert.Equal(t, domain.SeasonalSynthetic, cfg.SeasonalMode)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Equal(t, "recharge-events", cfg.KafkaRechargeTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_SOURCE", "http")
	t.Setenv("DATA_BASE_URL", "https://example.org")
	t.Setenv("DATA_FETCH_TIMEOUT", "3s")
	t.Setenv("DATA_CACHE_SIZE", "4")
	t.Setenv("MOCK_SEED", "7")
	t.Setenv("MOCK_STATIONS", "10")
	t.Setenv("SEASONAL_MODE", "Calendar")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_RECHARGE_TOPIC", "custom-recharge")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, SourceHTTP, cfg.DataSource)
	assert.Equal(t, "https://example.org", cfg.DataBaseURL)
	assert.Equal(t, 3*time.Second, cfg.DataFetchTimeout)
	assert.Equal(t, 4, cfg.DataCacheSize)
	assert.Equal(t, uint64(7), cfg.MockSeed)
	assert.Equal(t, 10, cfg.MockStations)
	assert.Equal(t, domain.SeasonalCalendar, cfg.SeasonalMode)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "custom-recharge", cfg.KafkaRechargeTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gwdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source: dir
data_dir: /srv/gwdash
mock_seed: 99
mock_stations: 6
seasonal_mode: calendar
kafka_recharge_topic: yaml-topic
batch_size: 25
`), 0o600))
	t.Setenv("GWDASH_CONFIG", path)
	t.Setenv("MOCK_STATIONS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceDir, cfg.DataSource)
	assert.Equal(t, "/srv/gwdash", cfg.DataDir)
	assert.Equal(t, uint64(99), cfg.MockSeed)
	assert.Equal(t, 8, cfg.MockStations, "environment overrides the file")
	assert.Equal(t, domain.SeasonalCalendar, cfg.SeasonalMode)
	assert.Equal(t, "yaml-topic", cfg.KafkaRechargeTopic)
	assert.Equal(t, 25, cfg.BatchSize)
}

func TestLoad_YAMLErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("GWDASH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GWDASH_CONFIG")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mock_stations: [unterminated"), 0o600))
		t.Setenv("GWDASH_CONFIG", path)
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GWDASH_CONFIG")
	})

	t.Run("batch size out of range", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "big.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch_size: 5000\n"), 0o600))
		t.Setenv("GWDASH_CONFIG", path)
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch_size")
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"DATA_FETCH_TIMEOUT", "0s", "DATA_FETCH_TIMEOUT"},
		{"DATA_CACHE_SIZE", "zero", "DATA_CACHE_SIZE"},
		{"MOCK_SEED", "-3", "MOCK_SEED"},
		{"MOCK_STATIONS", "0", "MOCK_STATIONS"},
		{"SEASONAL_MODE", "lunar", "SEASONAL_MODE"},
		{"DATA_SOURCE", "ftp", "DATA_SOURCE"},
		{"DATA_SOURCE", "http", "DATA_BASE_URL"},
		{"BATCH_SIZE", "0", "BATCH_SIZE"},
		{"BATCH_SIZE", "9999", "BATCH_SIZE"},
		{"MAPBOX_TIMEOUT", "bad", "MAPBOX_TIMEOUT"},
		{"MAPBOX_ENABLED", "true", "MAPBOX_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_SeasonalModeError(t *testing.T) {
	t.Setenv("SEASONAL_MODE", "lunar")
	_, err := Load()
	require.ErrorIs(t, err, domain.ErrUnknownSeasonalMode)
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
