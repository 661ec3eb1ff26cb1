package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

const maxBatchSize = 1000

// DataSource selects where the station dataset comes from.
type DataSource string

const (
	SourceMock DataSource = "mock"
	SourceHTTP DataSource = "http"
	SourceDir  DataSource = "dir"
)

// Config holds all service settings. Values come from defaults, then the
// optional YAML file named by GWDASH_CONFIG, then environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DataSource       DataSource
	DataBaseURL      string
	DataDir          string
	DataFetchTimeout time.Duration
	DataCacheSize    int

	MockSeed     uint64
	MockStations int

	SeasonalMode domain.SeasonalMode

	// Recharge-event publishing is enabled when brokers are configured.
	KafkaBrokers       []string
	KafkaRechargeTopic string
	BatchSize          int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// PublishEnabled reports whether recharge events should be sent to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// fileConfig is the YAML overlay. Empty fields leave the defaults in place.
type fileConfig struct {
	DataSource         string `yaml:"data_source"`
	DataBaseURL        string `yaml:"data_base_url"`
	DataDir            string `yaml:"data_dir"`
	MockSeed           uint64 `yaml:"mock_seed"`
	MockStations       int    `yaml:"mock_stations"`
	SeasonalMode       string `yaml:"seasonal_mode"`
	KafkaRechargeTopic string `yaml:"kafka_recharge_topic"`
	BatchSize          int    `yaml:"batch_size"`
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	file, err := loadFile(os.Getenv("GWDASH_CONFIG"))
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := positiveDuration("DATA_FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := positiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := positiveInt("DATA_CACHE_SIZE", 16)
	if err != nil {
		return nil, err
	}
	mockStations, err := positiveInt("MOCK_STATIONS", orInt(file.MockStations, 24))
	if err != nil {
		return nil, err
	}
	batchSize, err := loadBatchSize(file.BatchSize)
	if err != nil {
		return nil, err
	}
	mockSeed, err := parseSeed(orUint(file.MockSeed, 42))
	if err != nil {
		return nil, err
	}
	seasonalMode, err := domain.ParseSeasonalMode(sharedcfg.EnvOrDefault("SEASONAL_MODE", orString(file.SeasonalMode, string(domain.SeasonalSynthetic))))
	if err != nil {
		return nil, fmt.Errorf("invalid SEASONAL_MODE: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataSource:       DataSource(sharedcfg.EnvOrDefault("DATA_SOURCE", orString(file.DataSource, string(SourceMock)))),
		DataBaseURL:      sharedcfg.EnvOrDefault("DATA_BASE_URL", file.DataBaseURL),
		DataDir:          sharedcfg.EnvOrDefault("DATA_DIR", orString(file.DataDir, "data")),
		DataFetchTimeout: fetchTimeout,
		DataCacheSize:    cacheSize,

		MockSeed:     mockSeed,
		MockStations: mockStations,
		SeasonalMode: seasonalMode,

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaRechargeTopic: sharedcfg.EnvOrDefault("KAFKA_RECHARGE_TOPIC", orString(file.KafkaRechargeTopic, "recharge-events")),
		BatchSize:          batchSize,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	switch cfg.DataSource {
	case SourceMock, SourceDir:
	case SourceHTTP:
		if cfg.DataBaseURL == "" {
			return nil, errors.New("DATA_BASE_URL is required when DATA_SOURCE is http")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: must be mock, http or dir", cfg.DataSource)
	}
	if cfg.PublishEnabled() && cfg.KafkaRechargeTopic == "" {
		return nil, errors.New("KAFKA_RECHARGE_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read GWDASH_CONFIG: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse GWDASH_CONFIG: %w", err)
	}
	return fc, nil
}

func parseSeed(fallback uint64) (uint64, error) {
	s := os.Getenv("MOCK_SEED")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid MOCK_SEED: must be an unsigned integer")
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orUint(v, fallback uint64) uint64 {
	if v == 0 {
		return fallback
	}
	return v
}
