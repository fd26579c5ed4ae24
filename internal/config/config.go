package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres  = "postgres"
	DriverPostgREST = "postgrest"
	DriverMemory    = "memory"

	AuthDevelopment = "development"
	AuthExternal    = "external"
	AuthHMAC        = "hmac"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// StoreDriver selects the upstream: postgres (DATABASE_URL), postgrest
	// (STORE_URL + STORE_API_KEY) or memory (STORE_URL is a JSON dataset).
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	StoreURL    string `mapstructure:"STORE_URL"`
	StoreAPIKey string `mapstructure:"STORE_API_KEY"`

	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	MQTTBroker   string `mapstructure:"MQTT_BROKER"`
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`
	MQTTTopic    string `mapstructure:"MQTT_TOPIC"`
	MQTTUsername string `mapstructure:"MQTT_USERNAME"`
	MQTTPassword string `mapstructure:"MQTT_PASSWORD"`

	AuthMode       string `mapstructure:"AUTH_MODE"`
	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`

	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RulesFile      string        `mapstructure:"RULES_FILE"`

	TLSEnabled  bool   `mapstructure:"TLS_ENABLED"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var envKeys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORE_DRIVER", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "STORE_URL", "STORE_API_KEY",
	"REDIS_URL", "CACHE_TTL",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC", "MQTT_USERNAME", "MQTT_PASSWORD",
	"AUTH_MODE", "AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "RULES_FILE",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

// Load reads the environment and an optional .env file in the working
// directory. It does not validate; call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CACHE_TTL", "15s")
	v.SetDefault("MQTT_TOPIC", "neocare/changes/#")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns AUTH_MODE when set. Otherwise development runs
// without auth, a signing key selects HMAC and anything else validates
// against the external identity provider.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return AuthDevelopment
	}
	if c.AuthSigningKey != "" {
		return AuthHMAC
	}
	return AuthExternal
}

// Validate checks that the configuration is complete and safe to run.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store driver")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case DriverPostgREST:
		if c.StoreURL == "" {
			return fmt.Errorf("STORE_URL is required for the postgrest store driver")
		}
	case DriverMemory:
		if c.StoreURL == "" {
			return fmt.Errorf("STORE_URL must point at a dataset file for the memory store driver")
		}
		if c.IsProduction() {
			return fmt.Errorf("the memory store driver is not allowed in production")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q or %q, got %q", DriverPostgres, DriverPostgREST, DriverMemory, c.StoreDriver)
	}

	switch mode := c.ResolvedAuthMode(); mode {
	case AuthDevelopment:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=development is not allowed in production")
		}
	case AuthExternal:
		if c.AuthIssuer == "" && c.AuthJWKSURL == "" {
			return fmt.Errorf("AUTH_ISSUER or AUTH_JWKS_URL must be set when AUTH_MODE is %q (ENV=%q)", mode, c.Env)
		}
	case AuthHMAC:
		if len(c.AuthSigningKey) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q", AuthDevelopment, AuthExternal, AuthHMAC, mode)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}
	return nil
}
