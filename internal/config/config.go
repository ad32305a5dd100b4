package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all worker settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	BatchSize        int

	// Geocoding provider configuration.
	Provider         string
	APIKey           string
	ClientID         string
	Secret           string
	Language         string
	Domain           string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int
	GeocodeRPS       float64 // 0 disables client-side pacing
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	rps, err := parseRPS()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "geocode-requests"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "geocoded-locations"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "geocode-enrich"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		BatchSize:        batchSize,

		Provider:         envOrDefault("GEOCODER_PROVIDER", "yandex"),
		APIKey:           os.Getenv("GEOCODER_API_KEY"),
		ClientID:         os.Getenv("GEOCODER_CLIENT_ID"),
		Secret:           os.Getenv("GEOCODER_SECRET_KEY"),
		Language:         os.Getenv("GEOCODER_LANGUAGE"),
		Domain:           os.Getenv("GEOCODER_DOMAIN"),
		GeocodeTimeout:   geocodeTimeout,
		GeocodeCacheSize: cacheSize,
		GeocodeRPS:       rps,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.Provider == "" {
		return nil, errors.New("GEOCODER_PROVIDER is required")
	}
	if cfg.APIKey != "" && (cfg.ClientID != "" || cfg.Secret != "") {
		return nil, errors.New("GEOCODER_API_KEY and GEOCODER_CLIENT_ID/GEOCODER_SECRET_KEY are mutually exclusive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseRPS() (float64, error) {
	s := os.Getenv("GEOCODE_RPS")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, errors.New("invalid GEOCODE_RPS")
	}
	return f, nil
}
