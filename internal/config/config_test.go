package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORAGE_KEY", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DefaultStorageKey, cfg.StorageKey)
	assert.Equal(t, 30, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeoutDuration())
	assert.Equal(t, 12*time.Hour, cfg.ResultTTLDuration())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CSV_URL", "http://sheet.local/export.csv")
	t.Setenv("LAST_INPUT_TTL", "60")
	t.Setenv("WHATSAPP_API_URL", "http://wa.local")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "http://sheet.local/export.csv", cfg.CSVURL)
	assert.Equal(t, time.Minute, cfg.LastInputTTLDuration())
	assert.True(t, cfg.WhatsAppGatewayEnabled())
}

func TestLocationFallsBackToWIB(t *testing.T) {
	cfg := &Config{TimeZone: "Nowhere/Invalid"}
	loc := cfg.Location()

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestDatabaseOptions(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_SLOW_QUERY_MS", "")

	opts := Load().DatabaseOptions()

	assert.Equal(t, 20, opts.MaxOpenConns)
	assert.Equal(t, 5, opts.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 200*time.Millisecond, opts.SlowQuery)
}
