package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Gateway      GatewayConfig
	Transactions TransactionsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EDUPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"EDUPAY_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"EDUPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EDUPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"EDUPAY_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"EDUPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EDUPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EDUPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EDUPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EDUPAY_REDIS_URL"`
	Address      string        `envconfig:"EDUPAY_REDIS_ADDR"`
	Password     string        `envconfig:"EDUPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"EDUPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EDUPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EDUPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EDUPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EDUPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EDUPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EDUPAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EDUPAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EDUPAY_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"EDUPAY_SESSION_TTL_MINUTES" default:"1440"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EDUPAY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EDUPAY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EDUPAY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EDUPAY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EDUPAY_ARGON_KEY_LEN" default:"32"`
}

// GatewayConfig configures the outbound Edviron collection gateway client.
type GatewayConfig struct {
	BaseURL    string        `envconfig:"EDUPAY_GATEWAY_BASE_URL" default:"https://dev-vanilla.edviron.com"`
	APIKey     string        `envconfig:"EDUPAY_GATEWAY_API_KEY" required:"true"`
	SigningKey string        `envconfig:"EDUPAY_GATEWAY_PG_KEY" required:"true"`
	SchoolID   string        `envconfig:"EDUPAY_GATEWAY_SCHOOL_ID" required:"true"`
	Timeout    time.Duration `envconfig:"EDUPAY_GATEWAY_TIMEOUT" default:"15s"`
}

type TransactionsConfig struct {
	DefaultLimit       int `envconfig:"EDUPAY_TRANSACTIONS_DEFAULT_LIMIT" default:"10"`
	SchoolDefaultLimit int `envconfig:"EDUPAY_TRANSACTIONS_SCHOOL_DEFAULT_LIMIT" default:"50"`
	MaxLimit           int `envconfig:"EDUPAY_TRANSACTIONS_MAX_LIMIT" default:"100"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EDUPAY_AUTO_MIGRATE" default:"false"`
}
