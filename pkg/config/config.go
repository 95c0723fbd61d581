package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Store   StoreConfig
	Redis   RedisConfig
	POS     POSConfig
	Orders  OrdersConfig

	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMAPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"PHARMAPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PHARMAPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMAPOS_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"PHARMAPOS_CORS_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the remote pharmacy API that owns all business state.
type BackendConfig struct {
	BaseURL   string        `envconfig:"PHARMAPOS_BACKEND_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"PHARMAPOS_BACKEND_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"PHARMAPOS_BACKEND_USER_AGENT" default:"pharmacy-pos/1.0"`
}

func (b *BackendConfig) validate() error {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	parsed, err := url.Parse(b.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvBackendBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendBaseURL)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvBackendTimeout)
	}
	return nil
}

// StoreConfig selects the local key-value storage used for the session token and onboarding flag.
type StoreConfig struct {
	Driver     string `envconfig:"PHARMAPOS_STORE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"PHARMAPOS_SQLITE_PATH" default:"pharmacy-pos.db"`
}

func (s *StoreConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case StoreDriverRedis, StoreDriverSQLite, StoreDriverMemory:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvStoreDriver, s.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"PHARMAPOS_REDIS_URL"`
	Address      string        `envconfig:"PHARMAPOS_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMAPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMAPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMAPOS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"PHARMAPOS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"PHARMAPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMAPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMAPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type POSConfig struct {
	PaymentMethods    []string `envconfig:"PHARMAPOS_POS_PAYMENT_METHODS" default:"Cash,Card,Transfer,Other"`
	CurrencySymbol    string   `envconfig:"PHARMAPOS_POS_CURRENCY_SYMBOL" default:"₦"`
	LowStockThreshold int      `envconfig:"PHARMAPOS_POS_LOW_STOCK_THRESHOLD" default:"10"`

	// CheckoutIdempotencyTTL is how long a recorded checkout response is
	// replayed for a repeated Idempotency-Key. Zero disables replay.
	CheckoutIdempotencyTTL time.Duration `envconfig:"PHARMAPOS_POS_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type OrdersConfig struct {
	PageSize int `envconfig:"PHARMAPOS_ORDERS_PAGE_SIZE" default:"20"`
}

// AuthRateLimitConfig throttles sign-in attempts before they reach the backend.
// A zero window disables the limit.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PHARMAPOS_AUTH_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"PHARMAPOS_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"PHARMAPOS_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"PHARMAPOS_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"PHARMAPOS_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"PHARMAPOS_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}
