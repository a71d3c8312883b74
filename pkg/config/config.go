package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Marketplace  MarketplaceConfig
	Selection    SelectionConfig
	Batch        BatchConfig
	Export       ExportConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Batch.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Selection.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOURCING_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SOURCING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOURCING_LOG_WARN_STACK" default:"false"`
	MetricsAddr  string `envconfig:"SOURCING_METRICS_ADDR" default:":9290"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOURCING_DB_DSN"`
	Driver string `envconfig:"SOURCING_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"SOURCING_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SOURCING_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SOURCING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOURCING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOURCING_REDIS_URL"`
	Address      string        `envconfig:"SOURCING_REDIS_ADDR"`
	Password     string        `envconfig:"SOURCING_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOURCING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOURCING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOURCING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOURCING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOURCING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOURCING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis cache was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type MarketplaceConfig struct {
	BaseURL  string        `envconfig:"SOURCING_MARKETPLACE_BASE_URL" required:"true"`
	Account  string        `envconfig:"SOURCING_MARKETPLACE_ACCOUNT" required:"true"`
	Username string        `envconfig:"SOURCING_MARKETPLACE_USERNAME" required:"true"`
	Password string        `envconfig:"SOURCING_MARKETPLACE_PASSWORD" required:"true"`
	Timeout  time.Duration `envconfig:"SOURCING_MARKETPLACE_TIMEOUT" default:"30s"`
}

type SelectionConfig struct {
	MaxSuppliersPerRegion int `envconfig:"SOURCING_MAX_SUPPLIERS_PER_REGION" default:"3"`
	FreshWindowYears      int `envconfig:"SOURCING_DC_FRESH_WINDOW_YEARS" default:"2"`
}

func (s SelectionConfig) validate() error {
	if s.MaxSuppliersPerRegion < 1 {
		return fmt.Errorf("max suppliers per region must be at least 1, got %d", s.MaxSuppliersPerRegion)
	}
	if s.FreshWindowYears < 0 {
		return fmt.Errorf("fresh window years must not be negative, got %d", s.FreshWindowYears)
	}
	return nil
}

type BatchConfig struct {
	Workers       int           `envconfig:"SOURCING_BATCH_WORKERS" default:"3"`
	BaseDelay     time.Duration `envconfig:"SOURCING_BATCH_BASE_DELAY" default:"2500ms"`
	JitterRatio   float64       `envconfig:"SOURCING_BATCH_JITTER_RATIO" default:"0.4"`
	StaggerDelay  time.Duration `envconfig:"SOURCING_BATCH_STAGGER_DELAY" default:"1s"`
	LockDir       string        `envconfig:"SOURCING_BATCH_LOCK_DIR" default:"."`
	SkipSentPairs bool          `envconfig:"SOURCING_BATCH_SKIP_SENT_PAIRS" default:"true"`
}

func (b BatchConfig) validate() error {
	if b.Workers < 1 || b.Workers > 10 {
		return fmt.Errorf("batch workers must be between 1 and 10, got %d", b.Workers)
	}
	if b.JitterRatio < 0 || b.JitterRatio >= 1 {
		return fmt.Errorf("jitter ratio must be in [0, 1), got %v", b.JitterRatio)
	}
	return nil
}

type ExportConfig struct {
	OutputDir string `envconfig:"SOURCING_EXPORT_OUTPUT_DIR" default:"."`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SOURCING_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SOURCING_AUTO_MIGRATE" default:"false"`
}
