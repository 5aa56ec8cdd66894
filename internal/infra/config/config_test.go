package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("COUPON_STORE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, StorageMemory, cfg.CouponStore)
	assert.Equal(t, 730, cfg.MaxStayNights)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_MongoWithPostgresCoupons(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("COUPON_STORE", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://app@localhost/coupons?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092")
	t.Setenv("MAX_STAY_NIGHTS", "90")
	t.Setenv("RETRY_BACKOFF", "2s,1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, CouponStorePostgres, cfg.CouponStore)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 90, cfg.MaxStayNights)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Minute}, cfg.RetryBackoff)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"mongo without uri", map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}},
		{"postgres without dsn", map[string]string{"COUPON_STORE": "postgres", "POSTGRES_DSN": ""}},
		{"memory coupons on mongo", map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": "mongodb://x", "COUPON_STORE": "memory"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"bad duration", map[string]string{"IDEMP_TTL": "forever"}},
		{"bad max stay", map[string]string{"MAX_STAY_NIGHTS": "0"}},
		{"bad backoff", map[string]string{"RETRY_BACKOFF": "1s,soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
