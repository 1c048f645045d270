package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestBuildDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := build(v)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, int64(10), cfg.Database.MaxConcurrency)
	assert.Equal(t, 60*time.Second, cfg.TMS.RequestTimeout)
	assert.Equal(t, 12, cfg.TMS.WeeksBack)
	assert.Equal(t, "/api/orders", cfg.TMS.OrdersPath)
	assert.Equal(t, 300, cfg.Cache.SnapshotTTLSeconds)
}

func TestBuildReadsEnvironment(t *testing.T) {
	t.Setenv("TMS_BASE_URL", "https://tms.example.com")
	t.Setenv("TMS_REQUEST_TIMEOUT", "15s")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("CACHE_SNAPSHOT_TTL_SECONDS", "30")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := build(v)
	assert.Equal(t, "https://tms.example.com", cfg.TMS.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.TMS.RequestTimeout)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 30, cfg.Cache.SnapshotTTLSeconds)
}

func TestTMSLocation(t *testing.T) {
	assert.Equal(t, time.Local, TMSConfig{}.Location())
	assert.Equal(t, time.Local, TMSConfig{TimeZone: "Nowhere/City"}.Location())
	assert.Equal(t, "UTC", TMSConfig{TimeZone: "UTC"}.Location().String())
}
