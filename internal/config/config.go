package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML file whose keys match the lower-cased env names.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config captures all runtime configuration. Precedence: environment > file > defaults.
type Config struct {
	Port                    string `koanf:"port"`
	DBURL                   string `koanf:"db_url"`
	OMDbURL                 string `koanf:"omdb_url"`
	OMDbAPIKey              string `koanf:"omdb_api_key"`
	OMDbTimeoutSecs         int    `koanf:"omdb_timeout_secs"`
	OMDbBreakerFailures     int    `koanf:"omdb_breaker_failures"`
	OMDbBreakerCooldownSecs int    `koanf:"omdb_breaker_cooldown_secs"`
	StatsTimeoutSecs        int    `koanf:"stats_timeout_secs"`
	ReadTimeoutSecs         int    `koanf:"server_read_timeout"`
	WriteTimeoutSecs        int    `koanf:"server_write_timeout"`
	IdleTimeoutSecs         int    `koanf:"server_idle_timeout"`
	DBMaxConns              int    `koanf:"db_max_conns"`
	DBMinConns              int    `koanf:"db_min_conns"`
	DBMaxIdleSecs           int    `koanf:"db_max_conn_idle_secs"`
	DBMaxLifeSecs           int    `koanf:"db_max_conn_lifetime_secs"`
	DBConnTimeoutSecs       int    `koanf:"db_conn_timeout_secs"`
	DBStatementCache        int    `koanf:"db_statement_cache_capacity"`
	LogLevel                string `koanf:"log_level"`
	LogFormat               string `koanf:"log_format"`
	SearchRateLimit         int    `koanf:"search_rate_limit"`
	CORSAllowedOrigins      string `koanf:"cors_allowed_origins"`
}

func defaults() Config {
	return Config{
		Port:                    "8080",
		OMDbURL:                 "https://www.omdbapi.com",
		OMDbTimeoutSecs:         5,
		OMDbBreakerFailures:     5,
		OMDbBreakerCooldownSecs: 30,
		StatsTimeoutSecs:        5,
		ReadTimeoutSecs:         15,
		WriteTimeoutSecs:        15,
		IdleTimeoutSecs:         60,
		DBMaxConns:              20,
		DBMinConns:              2,
		DBMaxIdleSecs:           300,
		DBMaxLifeSecs:           3600,
		DBConnTimeoutSecs:       10,
		DBStatementCache:        256,
		LogLevel:                "info",
		LogFormat:               "json",
		SearchRateLimit:         30,
		CORSAllowedOrigins:      "*",
	}
}

// Load reads the full server configuration, applying defaults and validation.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validateStore(); err != nil {
		return Config{}, err
	}
	if err := cfg.validateServer(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStore reads configuration for tools that only talk to the database.
func LoadStore() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validateStore(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Empty variables are treated as unset so they never clobber defaults.
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) validateStore() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.StatsTimeoutSecs <= 0 {
		return fmt.Errorf("STATS_TIMEOUT_SECS must be positive")
	}
	return nil
}

func (c Config) validateServer() error {
	if c.OMDbAPIKey == "" {
		return fmt.Errorf("OMDB_API_KEY is required")
	}
	if c.OMDbURL == "" {
		return fmt.Errorf("OMDB_URL is required")
	}
	if c.OMDbTimeoutSecs <= 0 {
		return fmt.Errorf("OMDB_TIMEOUT_SECS must be positive")
	}
	if c.OMDbBreakerFailures <= 0 {
		return fmt.Errorf("OMDB_BREAKER_FAILURES must be positive")
	}
	if c.SearchRateLimit < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT must be non-negative")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
