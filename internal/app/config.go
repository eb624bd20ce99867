package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Upstream services. APDIS owns no storage; every entity lives behind
	// one of these APIs.
	APDISAPIURL     string        `envconfig:"APDIS_API_URL" default:"https://apdis-p5v5.vercel.app/api"`
	ProductosAPIURL string        `envconfig:"PRODUCTOS_API_URL" default:"https://ad-xglt.onrender.com/api/v1"`
	CobrosAPIURL    string        `envconfig:"COBROS_API_URL" default:"https://module-cuentasporcobrar-api.onrender.com/api"`
	SeguridadAPIURL string        `envconfig:"SEGURIDAD_API_URL" default:"https://aplicacion-de-seguridad-v2.onrender.com/api"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"60s"`

	// AllowDirectAccess enables the login bypass used on closed networks.
	// Off by default.
	AllowDirectAccess bool `envconfig:"ALLOW_DIRECT_ACCESS" default:"false"`

	// DeletablePolicy controls how the facturas list derives the deletable
	// flag: "always" marks every row deletable, "derived" checks detail usage.
	DeletablePolicy string `envconfig:"DELETABLE_POLICY" default:"always"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.DeletablePolicy != "always" && cfg.DeletablePolicy != "derived" {
		return nil, errors.New("deletable policy must be always or derived")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
