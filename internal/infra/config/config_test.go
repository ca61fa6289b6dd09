package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "USD", cfg.Currency)
	assert.False(t, cfg.KafkaEnabled())
}

func TestFromEnvParsesValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_USE_SSL", "yes")
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_PUBLIC_ENDPOINT", "")
	t.Setenv("RETRY_BACKOFF", "2s")
	t.Setenv("CURRENCY", "eur")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, "minio:9000", cfg.S3PublicEndpoint)
	assert.Equal(t, []time.Duration{2 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri": {"STORAGE_DRIVER": "mongo", "MONGO_URI": ""},
		"unknown driver":    {"STORAGE_DRIVER": "sqlite"},
		"bad duration":      {"IDEMP_TTL": "soon"},
		"bad bool":          {"S3_USE_SSL": "maybe"},
		"bad int":           {"REDIS_DB": "one"},
		"half admin":        {"ADMIN_EMAIL": "root@example.com", "ADMIN_PASSWORD": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
