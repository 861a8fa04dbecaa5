package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration of the brewery search service.
//
// Values come from, in increasing priority: built-in defaults, the optional YAML file
// named by HOPMAP_CONFIG, and environment variables (a .env file is loaded first).
type Config struct {
	Env         string         // Env is the current environment: local, development, production.
	Port        int            // Port is the HTTP API port.
	Provider    ProviderConfig // Provider selects and configures the geocoding backend.
	Region      string         // Region is appended to locations and addresses before geocoding.
	Search      SearchConfig
	CatalogFile string // CatalogFile, when set, replaces Postgres as the candidate source.
	Backfill    BackfillConfig
	Database    PostgresConfig
	Redis       RedisConfig
}

// ProviderConfig configures the geocoding provider.
type ProviderConfig struct {
	Type      string // google or nominatim
	APIKey    string
	RateLimit int // requests per second
	// BaseURL points Nominatim at a self-hosted instance.
	BaseURL string
	// AddressFallbacks lets Nominatim retry with trailing address parts dropped.
	AddressFallbacks bool
}

// SearchConfig tunes nearby searches.
type SearchConfig struct {
	DefaultRadius       float64
	BroadMatchThreshold int
	GeocodeTimeout      time.Duration
}

// BackfillConfig controls the background coordinate backfill.
type BackfillConfig struct {
	Enabled  bool
	Workers  int
	Interval time.Duration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig configures the geocode cache. The cache is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// MustLoad loads the configuration and panics if any value is malformed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := newViper()

	if path, ok := os.LookupEnv("HOPMAP_CONFIG"); ok && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("provider.rate_limit"))
	if err != nil {
		panic("failed to parse provider rate limit from configuration, must be an integer")
	}

	addressFallbacks, err := strconv.ParseBool(v.GetString("provider.address_fallbacks"))
	if err != nil {
		panic("failed to parse address fallbacks flag from configuration, must be a boolean")
	}

	radius, err := strconv.ParseFloat(v.GetString("search.default_radius"), 64)
	if err != nil || radius < 0 {
		panic("failed to parse default radius from configuration, must be a non-negative number")
	}

	threshold, err := strconv.Atoi(v.GetString("search.broad_match_threshold"))
	if err != nil || threshold < 0 {
		panic("failed to parse broad match threshold from configuration, must be a non-negative integer")
	}

	geocodeTimeout, err := time.ParseDuration(v.GetString("search.geocode_timeout"))
	if err != nil {
		panic("failed to parse geocode timeout from configuration")
	}

	backfillEnabled, err := strconv.ParseBool(v.GetString("backfill.enabled"))
	if err != nil {
		panic("failed to parse backfill flag from configuration, must be a boolean")
	}

	workers, err := strconv.Atoi(v.GetString("backfill.workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	interval, err := time.ParseDuration(v.GetString("backfill.interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	redisDB, err := strconv.Atoi(v.GetString("redis.db"))
	if err != nil {
		panic("failed to parse redis database number from configuration")
	}

	redisTTL, err := time.ParseDuration(v.GetString("redis.ttl"))
	if err != nil {
		panic("failed to parse redis ttl from configuration")
	}

	return &Config{
		Env:  v.GetString("env"),
		Port: port,
		Provider: ProviderConfig{
			Type:             v.GetString("provider.type"),
			APIKey:           v.GetString("provider.key"),
			RateLimit:        rateLimit,
			BaseURL:          v.GetString("provider.base_url"),
			AddressFallbacks: addressFallbacks,
		},
		Region: v.GetString("region"),
		Search: SearchConfig{
			DefaultRadius:       radius,
			BroadMatchThreshold: threshold,
			GeocodeTimeout:      geocodeTimeout,
		},
		CatalogFile: v.GetString("catalog_file"),
		Backfill: BackfillConfig{
			Enabled:  backfillEnabled,
			Workers:  workers,
			Interval: interval,
		},
		Database: PostgresConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       redisDB,
			TTL:      redisTTL,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("port", 8080)
	v.SetDefault("provider.type", "google")
	v.SetDefault("provider.key", "")
	v.SetDefault("provider.rate_limit", 10)
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.address_fallbacks", false)
	v.SetDefault("region", "Ohio")
	v.SetDefault("search.default_radius", 25)
	v.SetDefault("search.broad_match_threshold", 5)
	v.SetDefault("search.geocode_timeout", "5s")
	v.SetDefault("catalog_file", "")
	v.SetDefault("backfill.enabled", false)
	v.SetDefault("backfill.workers", 4)
	v.SetDefault("backfill.interval", "10m")
	v.SetDefault("database.port", "5432")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	v.SetEnvPrefix("HOPMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names that do not follow the HOPMAP_<KEY> pattern.
	bindings := map[string]string{
		"port":                         "HOPMAP_HTTP_PORT",
		"search.default_radius":        "HOPMAP_DEFAULT_RADIUS",
		"search.broad_match_threshold": "HOPMAP_BROAD_MATCH_THRESHOLD",
		"search.geocode_timeout":       "HOPMAP_GEOCODE_TIMEOUT",
		"database.host":                "DB_HOST",
		"database.port":                "DB_PORT",
		"database.user":                "DB_USERNAME",
		"database.password":            "DB_PASSWORD",
		"database.name":                "DB_NAME",
		"redis.addr":                   "REDIS_ADDR",
		"redis.password":               "REDIS_PASSWORD",
		"redis.db":                     "REDIS_DB",
		"redis.ttl":                    "REDIS_TTL",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	return v
}
