package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "CHIEFTAIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	GatewayModeHTTP   = "http"
	GatewayModeMemory = "memory"

	EnvAppEnv           = "CHIEFTAIN_APP_ENV"
	EnvPort             = "CHIEFTAIN_APP_PORT"
	EnvLogLevel         = "CHIEFTAIN_LOG_LEVEL"
	EnvStrictInvariants = "CHIEFTAIN_STRICT_INVARIANTS"
	EnvGatewayMode      = "CHIEFTAIN_GATEWAY_MODE"
	EnvGatewayBaseURL   = "CHIEFTAIN_GATEWAY_BASE_URL"
	EnvGatewaySeedFile  = "CHIEFTAIN_GATEWAY_SEED_FILE"
	EnvRedisURL         = "CHIEFTAIN_REDIS_URL"
	EnvSessionTTL       = "CHIEFTAIN_SESSION_FALLBACK_TTL"
	EnvPricingThreshold = "CHIEFTAIN_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvPricingTaxRate   = "CHIEFTAIN_PRICING_TAX_RATE"
	EnvPricingCurrency  = "CHIEFTAIN_PRICING_CURRENCY"
)

type Config struct {
	App           AppConfig
	Gateway       GatewayConfig
	Redis         RedisConfig
	Session       SessionConfig
	Pricing       PricingConfig
	Catalog       CatalogConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env              string        `envconfig:"CHIEFTAIN_APP_ENV" required:"true"`
	Port             string        `envconfig:"CHIEFTAIN_APP_PORT" default:"8081"`
	LogLevel         string        `envconfig:"CHIEFTAIN_LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"CHIEFTAIN_LOG_FORMAT" default:"json"`
	LogWarnStack     bool          `envconfig:"CHIEFTAIN_LOG_WARN_STACK" default:"false"`
	StrictInvariants *bool         `envconfig:"CHIEFTAIN_STRICT_INVARIANTS"`
	CORSOrigins      []string      `envconfig:"CHIEFTAIN_CORS_ORIGINS" default:"http://localhost:3000"`
	IdempotencyTTL   time.Duration `envconfig:"CHIEFTAIN_IDEMPOTENCY_TTL" default:"24h"`
	ShutdownTimeout  time.Duration `envconfig:"CHIEFTAIN_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Strict reports whether invariant violations panic. Unset means strict in dev.
func (a AppConfig) Strict() bool {
	if a.StrictInvariants != nil {
		return *a.StrictInvariants
	}
	return a.IsDev()
}

type GatewayConfig struct {
	Mode               string        `envconfig:"CHIEFTAIN_GATEWAY_MODE" default:"http"`
	BaseURL            string        `envconfig:"CHIEFTAIN_GATEWAY_BASE_URL" default:"http://localhost:8080/api"`
	Timeout            time.Duration `envconfig:"CHIEFTAIN_GATEWAY_TIMEOUT" default:"10s"`
	BreakerMaxFailures uint32        `envconfig:"CHIEFTAIN_GATEWAY_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"CHIEFTAIN_GATEWAY_BREAKER_OPEN_TIMEOUT" default:"30s"`
	SeedFile           string        `envconfig:"CHIEFTAIN_GATEWAY_SEED_FILE"`
	MemorySecret       string        `envconfig:"CHIEFTAIN_GATEWAY_MEMORY_SECRET" default:"chieftain-memory-dev-secret"`
}

func (g GatewayConfig) IsMemory() bool {
	return strings.EqualFold(g.Mode, GatewayModeMemory)
}

func (g GatewayConfig) validate() error {
	switch strings.ToLower(g.Mode) {
	case GatewayModeHTTP:
		if strings.TrimSpace(g.BaseURL) == "" {
			return fmt.Errorf("%s is required when gateway mode is %s", EnvGatewayBaseURL, GatewayModeHTTP)
		}
		return nil
	case GatewayModeMemory:
		return nil
	default:
		return fmt.Errorf("invalid %s %q", EnvGatewayMode, g.Mode)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"CHIEFTAIN_REDIS_URL" default:"redis://localhost:6379/0"`
	Address      string        `envconfig:"CHIEFTAIN_REDIS_ADDR"`
	Password     string        `envconfig:"CHIEFTAIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHIEFTAIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHIEFTAIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHIEFTAIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHIEFTAIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHIEFTAIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHIEFTAIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"CHIEFTAIN_SESSION_COOKIE_NAME" default:"chieftain_session"`
	FallbackTTL  time.Duration `envconfig:"CHIEFTAIN_SESSION_FALLBACK_TTL" default:"24h"`
	SecureCookie bool          `envconfig:"CHIEFTAIN_SESSION_SECURE_COOKIE" default:"false"`
}

type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"CHIEFTAIN_PRICING_FREE_SHIPPING_THRESHOLD" default:"10000"`
	ShippingFee           decimal.Decimal `envconfig:"CHIEFTAIN_PRICING_SHIPPING_FEE" default:"500"`
	TaxRate               decimal.Decimal `envconfig:"CHIEFTAIN_PRICING_TAX_RATE" default:"0.14"`
	Currency              string          `envconfig:"CHIEFTAIN_PRICING_CURRENCY" default:"KSh"`
}

func (p PricingConfig) validate() error {
	if p.FreeShippingThreshold.IsNegative() || p.ShippingFee.IsNegative() {
		return fmt.Errorf("pricing threshold and shipping fee must be non-negative")
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1", EnvPricingTaxRate)
	}
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("%s is required", EnvPricingCurrency)
	}
	return nil
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"CHIEFTAIN_CATALOG_CACHE_TTL" default:"5m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CHIEFTAIN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}
