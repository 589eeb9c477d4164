package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "tienda"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config aggregates every tunable of the service.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Pricing  PricingConfig
	Features FeatureFlagsConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"TIENDA_APP_ENV" default:"dev"`
	Port     string `envconfig:"TIENDA_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"TIENDA_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"TIENDA_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"TIENDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDA_REDIS_URL"`
	Address      string        `envconfig:"TIENDA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDA_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"TIENDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TIENDA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TIENDA_JWT_ISSUER" default:"tienda-backend"`
	ExpirationMinutes int    `envconfig:"TIENDA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    uint32 `envconfig:"TIENDA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        uint32 `envconfig:"TIENDA_ARGON_TIME" default:"3"`
	ArgonParallelism uint8  `envconfig:"TIENDA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     uint32 `envconfig:"TIENDA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      uint32 `envconfig:"TIENDA_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig fixes the illustrative pricing formula. Values are parsed as
// strings so the decimal package keeps exact cents.
type PricingConfig struct {
	TaxRate               string `envconfig:"TIENDA_PRICING_TAX_RATE" default:"0.10"`
	FreeShippingThreshold string `envconfig:"TIENDA_PRICING_FREE_SHIPPING_THRESHOLD" default:"50.00"`
	FlatShippingFee       string `envconfig:"TIENDA_PRICING_FLAT_SHIPPING_FEE" default:"5.99"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDA_FEATURE_AUTO_MIGRATE" default:"false"`
}
