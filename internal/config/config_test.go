package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://monitoring.example.kz")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Empty(t, cfg.SnapshotPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "water-objects-feed", cfg.KafkaFeedTopic)
	assert.False(t, cfg.KafkaFeedEnabled)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://monitoring.example.kz")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("SEARCH_DEBOUNCE", "150ms")
	t.Setenv("SNAPSHOT_PATH", "/var/lib/hydroatlas/objects.db")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_FEED_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LoggerLevel())
	assert.Equal(t, "text", cfg.LoggerFormat())
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 150*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "/var/lib/hydroatlas/objects.db", cfg.SnapshotPath)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaFeedEnabled)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing upstream base URL", func(t *testing.T) {
		_, err := Load()
		assert.EqualError(t, err, "UPSTREAM_BASE_URL is required")
	})

	t.Run("invalid refresh interval", func(t *testing.T) {
		t.Setenv("UPSTREAM_BASE_URL", "http://monitoring.example.kz")
		t.Setenv("REFRESH_INTERVAL", "often")

		_, err := Load()
		assert.EqualError(t, err, "invalid REFRESH_INTERVAL")
	})

	t.Run("negative debounce", func(t *testing.T) {
		t.Setenv("UPSTREAM_BASE_URL", "http://monitoring.example.kz")
		t.Setenv("SEARCH_DEBOUNCE", "-50ms")

		_, err := Load()
		assert.EqualError(t, err, "invalid SEARCH_DEBOUNCE")
	})

	t.Run("feed enabled without brokers", func(t *testing.T) {
		t.Setenv("UPSTREAM_BASE_URL", "http://monitoring.example.kz")
		t.Setenv("KAFKA_FEED_ENABLED", "true")
		t.Setenv("KAFKA_BROKERS", " ")

		_, err := Load()
		assert.EqualError(t, err, "KAFKA_FEED_ENABLED is true but KAFKA_BROKERS is not set")
	})
}
