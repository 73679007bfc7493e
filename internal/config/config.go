package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"order_tracker/internal/database"

	"github.com/joho/godotenv"
)

const (
	DefaultStorageKey = "order_tracker_last_input"
	DefaultTimeZone   = "Asia/Jakarta"
)

type Config struct {
	ServerPort       string
	CSVURL           string
	PricesURL        string
	PromoURL         string
	RedisURL         string
	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnMaxLife    int
	DBSlowQueryMS    int
	StorageKey       string
	TimeZone         string
	HTTPTimeout      int
	LastInputTTL     int
	ResultTTL        int
	LogLevel         string
	LogFormat        string
	WhatsAppAPIURL   string
	WhatsAppUsername string
	WhatsAppPassword string
	WhatsAppPath     string
}

func Load() *Config {
	// Load .env file if exists
	godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		CSVURL:           getEnv("CSV_URL", "https://docs.google.com/spreadsheets/d/e/2PACX-1vRZiGRgDxVjlJupwCAb29TPzNlksU5kISHLkmfpqbdwO_NQ__PEOk8FxuHe_UwzxWe5pcnfTJ1MFX3b/pub?gid=0&single=true&output=csv"),
		PricesURL:        getEnv("PRICES_URL", "http://localhost:8081/config/prices.json"),
		PromoURL:         getEnv("PROMO_URL", "http://localhost:8081/config/promo.json"),
		RedisURL:         getEnv("REDIS_URL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:    getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 1800),
		DBSlowQueryMS:    getEnvAsInt("DB_SLOW_QUERY_MS", 200),
		StorageKey:       getEnv("STORAGE_KEY", DefaultStorageKey),
		TimeZone:         getEnv("TIME_ZONE", DefaultTimeZone),
		HTTPTimeout:      getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30),
		LastInputTTL:     getEnvAsInt("LAST_INPUT_TTL", 30*24*3600),
		ResultTTL:        getEnvAsInt("RESULT_TTL_SECONDS", 12*3600),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		WhatsAppAPIURL:   getEnv("WHATSAPP_API_URL", ""),
		WhatsAppUsername: getEnv("WHATSAPP_USERNAME", ""),
		WhatsAppPassword: getEnv("WHATSAPP_PASSWORD", ""),
		WhatsAppPath:     getEnv("WHATSAPP_PATH", ""),
	}
}

// Location resolves TimeZone, falling back to WIB (UTC+7) when the zone
// database is unavailable or the name is unknown.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(strings.TrimSpace(c.TimeZone)); err == nil && c.TimeZone != "" {
		return loc
	}
	return time.FixedZone("WIB", 7*60*60)
}

func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

func (c *Config) LastInputTTLDuration() time.Duration {
	return time.Duration(c.LastInputTTL) * time.Second
}

// ResultTTLDuration is how long a found lookup stays available for backup
// requests and invoice export.
func (c *Config) ResultTTLDuration() time.Duration {
	return time.Duration(c.ResultTTL) * time.Second
}

// DatabaseOptions converts the DB_* settings into pool options.
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(c.DBConnMaxLife) * time.Second,
		SlowQuery:       time.Duration(c.DBSlowQueryMS) * time.Millisecond,
	}
}

func (c *Config) WhatsAppGatewayEnabled() bool {
	return c.WhatsAppAPIURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
