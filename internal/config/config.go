package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Postgres  PostgresConfig  `envPrefix:"POSTGRES_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	AMQP      AMQPConfig      `envPrefix:"AMQP_"`
	Logger    LoggerConfig    `envPrefix:"LOG_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Bootstrap BootstrapConfig `envPrefix:"BOOTSTRAP_"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"NAME" envDefault:"queuesmart"`
	Env                   string `env:"ENV" envDefault:"development"`
	Host                  string `env:"HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"PORT" envDefault:"8080"`
	Version               string `env:"VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// StoreConfig selects and tunes the relational backend.
type StoreConfig struct {
	Driver        string `env:"DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"queuesmart.db"`
	PoolSize      int    `env:"POOL_SIZE" envDefault:"4"`
	LockTimeoutMS int    `env:"LOCK_TIMEOUT_MS" envDefault:"2000"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"DSN"`
	MaxConns       int32  `env:"MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values. An empty Addr disables the
// report cache.
type RedisConfig struct {
	Addr           string `env:"ADDR"`
	Password       string `env:"PASSWORD"`
	DB             int    `env:"DB" envDefault:"0"`
	ReportCacheTTL int    `env:"REPORT_CACHE_TTL_SECONDS" envDefault:"300"`
}

// AMQPConfig configures the domain event publisher. An empty DSN disables it.
type AMQPConfig struct {
	DSN            string `env:"DSN"`
	Queue          string `env:"QUEUE" envDefault:"queuesmart_events"`
	PublishTimeout int    `env:"PUBLISH_TIMEOUT_SECONDS" envDefault:"10"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Name        string `env:"NAME" envDefault:"queuesmart"`
	Output      string `env:"OUTPUT" envDefault:"stdout"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `env:"JWT_SECRET" envDefault:"dev-secret"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
	BcryptCost            int    `env:"BCRYPT_COST" envDefault:"12"`
}

// BootstrapConfig names the Manager account created when no staff exist.
type BootstrapConfig struct {
	ManagerUsername string `env:"MANAGER_USERNAME" envDefault:"admin"`
	ManagerPassword string `env:"MANAGER_PASSWORD"`
}

// Load reads configuration from a .env file, when present, and the
// environment, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("STORE_SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.LockTimeoutMS <= 0 {
		return fmt.Errorf("STORE_LOCK_TIMEOUT_MS must be positive, got %d", c.Store.LockTimeoutMS)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LockTimeout bounds how long a writer waits for the store's write lock.
func (s StoreConfig) LockTimeout() time.Duration {
	return time.Duration(s.LockTimeoutMS) * time.Millisecond
}

// CacheTTL returns how long cached reports stay valid.
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.ReportCacheTTL) * time.Second
}

// AccessTokenTTL returns the lifetime of issued staff tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}
