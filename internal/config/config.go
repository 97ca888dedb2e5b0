package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Data backends selectable through DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Config holds application configuration loaded from an optional YAML file
// and environment variables.
type Config struct {
	Env               string        `yaml:"env"`
	HTTPPort          int           `yaml:"http_port"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	DataBackend string `yaml:"data_backend"`

	DatabaseDriver    string        `yaml:"database_driver"`
	DatabaseURL       string        `yaml:"database_url"`
	SQLitePath        string        `yaml:"sqlite_path"`
	BadgerDir         string        `yaml:"badger_dir"`
	DBMaxOpenConns    int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime"`
	DBConnMaxIdleTime time.Duration `yaml:"db_conn_max_idle_time"`

	RedisURL string        `yaml:"redis_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	SeedOnStart bool   `yaml:"seed_on_start"`
	SeedFile    string `yaml:"seed_file"`

	TracingEnabled  bool    `yaml:"tracing_enabled"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

const (
	defaultEnv               = "development"
	defaultHTTPPort          = 8080
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDataBackend = BackendSQLite

	defaultDatabaseDriver    = "pgx"
	defaultSQLitePath        = "customerdata.db"
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute

	defaultCacheTTL           = 5 * time.Minute
	defaultRateLimitPerMinute = 600
	defaultTraceSampleRate    = 1.0
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Env:               defaultEnv,
		HTTPPort:          defaultHTTPPort,
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,

		DataBackend: defaultDataBackend,

		DatabaseDriver:    defaultDatabaseDriver,
		SQLitePath:        defaultSQLitePath,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBConnMaxIdleTime: defaultDBConnMaxIdleTime,

		CacheTTL:           defaultCacheTTL,
		RateLimitPerMinute: defaultRateLimitPerMinute,
		SeedOnStart:        true,
		TraceSampleRate:    defaultTraceSampleRate,
	}
}

// Load reads configuration with precedence ENV > CONFIG_FILE > defaults.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.HTTPPort = getInt("HTTP_PORT", cfg.HTTPPort)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.ReadHeaderTimeout = getDuration("READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)

	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.BadgerDir = getEnv("BADGER_DIR", cfg.BadgerDir)
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.DBConnMaxIdleTime = getDuration("DB_CONN_MAX_IDLE_TIME", cfg.DBConnMaxIdleTime)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.CacheTTL = getDuration("CACHE_TTL", cfg.CacheTTL)

	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)

	cfg.SeedOnStart = getBool("SEED_ON_START", cfg.SeedOnStart)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)

	cfg.TracingEnabled = getBool("TRACING_ENABLED", cfg.TracingEnabled)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.TraceSampleRate = getFloat("TRACE_SAMPLE_RATE", cfg.TraceSampleRate)
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}

	switch c.DataBackend {
	case BackendMemory, BackendBadger:
		// no-op
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATA_BACKEND=sqlite")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND value: %s", c.DataBackend)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.TracingEnabled && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP_ENDPOINT is required when TRACING_ENABLED=true")
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be within [0,1]: %v", c.TraceSampleRate)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
