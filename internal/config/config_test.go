package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "")
	t.Setenv("KAFKA_BROKERS", "")
	cfg := Load()
	assert.Equal(t, 40.0, cfg.ShippingFee)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "50")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("HANDOFF_WORKERS", "oops")
	cfg := Load()
	assert.Equal(t, 50.0, cfg.ShippingFee)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, 4, cfg.HandoffWorkers)
}
