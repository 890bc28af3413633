// Package config loads service configuration from .env, an optional
// config.yaml and PITSTOP_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Sources SourcesConfig `mapstructure:"sources"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig configures the HTTP query service.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MetricsEnabled bool     `mapstructure:"metrics_enabled"`
}

// StoreConfig selects and configures the restroom store backend.
type StoreConfig struct {
	// Driver is one of postgres, sqlite, redis, elastic.
	Driver        string `mapstructure:"driver"`
	DatabaseURL   string `mapstructure:"database_url"`
	MaxConns      int32  `mapstructure:"max_conns"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
	ElasticURL    string `mapstructure:"elastic_url"`
	ElasticIndex  string `mapstructure:"elastic_index"`
	BatchSize     int    `mapstructure:"batch_size"`
	WriteAttempts int    `mapstructure:"write_attempts"`
	// AutoMigrate applies pending migrations (or creates the elastic index)
	// when the store is opened.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// SourcesConfig configures the external place sources.
type SourcesConfig struct {
	HTTPTimeout       time.Duration  `mapstructure:"http_timeout"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second"`
	RetryAttempts     int            `mapstructure:"retry_attempts"`
	Overpass          OverpassConfig `mapstructure:"overpass"`
	Places            PlacesConfig   `mapstructure:"places"`
}

type OverpassConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	IncludeWays bool   `mapstructure:"include_ways"`
}

type PlacesConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	QueryTemplate string        `mapstructure:"query_template"`
	PageDelay     time.Duration `mapstructure:"page_delay"`
	MaxPages      int           `mapstructure:"max_pages"`
}

// IngestConfig configures scraper runs.
type IngestConfig struct {
	Source      string `mapstructure:"source"`
	TargetsFile string `mapstructure:"targets_file"`
	SeedFile    string `mapstructure:"seed_file"`
	Dedupe      bool   `mapstructure:"dedupe"`
	FailFast    bool   `mapstructure:"fail_fast"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. A missing .env or config.yaml is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PITSTOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.sqlite_path", "data/pitstop.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "pitstop:")
	v.SetDefault("store.elastic_url", "http://localhost:9200")
	v.SetDefault("store.elastic_index", "restrooms")
	v.SetDefault("store.batch_size", 500)
	v.SetDefault("store.write_attempts", 3)
	v.SetDefault("store.auto_migrate", true)

	v.SetDefault("sources.http_timeout", 30*time.Second)
	v.SetDefault("sources.requests_per_second", 1.0)
	v.SetDefault("sources.retry_attempts", 3)
	v.SetDefault("sources.overpass.base_url", "https://overpass-api.de")
	v.SetDefault("sources.overpass.timeout_secs", 25)
	v.SetDefault("sources.overpass.include_ways", true)
	v.SetDefault("sources.places.base_url", "https://maps.googleapis.com")
	v.SetDefault("sources.places.api_key", "")
	v.SetDefault("sources.places.query_template", "public restroom in %s")
	v.SetDefault("sources.places.page_delay", 2*time.Second)
	v.SetDefault("sources.places.max_pages", 3)

	v.SetDefault("ingest.source", "places")
	v.SetDefault("ingest.targets_file", "")
	v.SetDefault("ingest.seed_file", "data/seeds/restrooms.json")
	v.SetDefault("ingest.dedupe", false)
	v.SetDefault("ingest.fail_fast", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks settings that would otherwise fail later with a less
// obvious error.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	case "sqlite", "redis", "elastic":
	default:
		return eris.Errorf("config: unknown store.driver %q (valid: postgres, sqlite, redis, elastic)", c.Store.Driver)
	}

	if c.Store.BatchSize <= 0 {
		return eris.Errorf("config: store.batch_size must be positive, got %d", c.Store.BatchSize)
	}
	if c.Sources.Places.MaxPages <= 0 {
		return eris.Errorf("config: sources.places.max_pages must be positive, got %d", c.Sources.Places.MaxPages)
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
