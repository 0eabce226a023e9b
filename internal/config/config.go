// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultSchemaURL  = "https://raw.githubusercontent.com/seriaati/zzz-guides/refs/heads/main/schema.json"
	DefaultRefdataURL = "https://api.hakush.in/zzz/data"
	DefaultIconURL    = "https://api.hakush.in/zzz/UI/{icon}.webp"
)

// Config holds everything cmd/server needs. Flags may override Port and
// CatalogDB after Load.
type Config struct {
	Port           string        `env:"PORT"                       envDefault:"8080"`
	SchemaURL      string        `env:"GUIDEFORGE_SCHEMA_URL"      envDefault:"https://raw.githubusercontent.com/seriaati/zzz-guides/refs/heads/main/schema.json"`
	RefdataURL     string        `env:"GUIDEFORGE_REFDATA_URL"     envDefault:"https://api.hakush.in/zzz/data"`
	IconURL        string        `env:"GUIDEFORGE_ICON_URL"        envDefault:"https://api.hakush.in/zzz/UI/{icon}.webp"`
	CatalogDB      string        `env:"GUIDEFORGE_CATALOG_DB"      envDefault:":memory:"`
	StaticDir      string        `env:"GUIDEFORGE_STATIC_DIR"      envDefault:"../frontend/dist"`
	AllowedOrigins []string      `env:"GUIDEFORGE_ALLOWED_ORIGINS" envDefault:"http://localhost:*" envSeparator:","`
	SessionTTL     time.Duration `env:"GUIDEFORGE_SESSION_TTL"     envDefault:"12h"`
	FetchTimeout   time.Duration `env:"GUIDEFORGE_FETCH_TIMEOUT"   envDefault:"15s"`
	LogMode        string        `env:"LOG_MODE"                   envDefault:"development"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("parse env: GUIDEFORGE_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}
