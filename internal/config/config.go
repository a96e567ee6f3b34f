// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream monitoring API.
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	RefreshInterval time.Duration
	SearchDebounce  time.Duration

	// Last-good dataset persistence. Empty path disables it.
	SnapshotPath string

	// Downstream dataset feed.
	KafkaBrokers     []string
	KafkaFeedTopic   string
	KafkaFeedEnabled bool

	// Expert role gate for object mutations. Empty secret leaves the
	// mutation endpoints locked.
	JWTSecret string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDurationEnv("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDurationEnv("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	searchDebounce, err := parseDurationEnv("SEARCH_DEBOUNCE", "300ms")
	if err != nil {
		return nil, err
	}

	feedEnabled := false
	if v := os.Getenv("KAFKA_FEED_ENABLED"); v != "" {
		feedEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamTimeout: upstreamTimeout,
		RefreshInterval: refreshInterval,
		SearchDebounce:  searchDebounce,

		SnapshotPath: os.Getenv("SNAPSHOT_PATH"),

		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFeedTopic:   envOrDefault("KAFKA_FEED_TOPIC", "water-objects-feed"),
		KafkaFeedEnabled: feedEnabled,

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.UpstreamBaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	if cfg.KafkaFeedEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_FEED_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaFeedEnabled && cfg.KafkaFeedTopic == "" {
		return nil, errors.New("KAFKA_FEED_ENABLED is true but KAFKA_FEED_TOPIC is not set")
	}

	return cfg, nil
}

// LoggerLevel implements observability.LoggerConfig.
func (c *Config) LoggerLevel() string { return c.LogLevel }

// LoggerFormat implements observability.LoggerConfig.
func (c *Config) LoggerFormat() string { return c.LogFormat }

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
