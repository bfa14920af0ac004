package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// TrackingDisabled as TRACK_URL switches visit pings off
const TrackingDisabled = "off"

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Tracking TrackingConfig
	Menu     MenuConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080" validate:"required"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

type AuthConfig struct {
	APIKeys []string `env:"API_KEYS" envDefault:"apitest" envSeparator:"," validate:"min=1,dive,required"` // Valid API keys for menu refresh
}

type CatalogConfig struct {
	Source   string        `env:"CATALOG_SOURCE" envDefault:"http" validate:"oneof=http memory"`
	ClientID string        `env:"CLIENT_ID" validate:"required_if=Source http"`
	APIHost  string        `env:"API_HOST" validate:"required_if=Source http"`
	Scheme   string        `env:"API_SCHEME" envDefault:"https" validate:"oneof=http https"`
	Timeout  time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

type TrackingConfig struct {
	URL       string        `env:"TRACK_URL"`
	Timeout   time.Duration `env:"TRACK_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	Threshold time.Duration `env:"PING_THRESHOLD" envDefault:"1m" validate:"gt=0"`
}

type MenuConfig struct {
	TTL      time.Duration `env:"MENU_TTL" envDefault:"5m" validate:"gte=0"`
	Timezone string        `env:"MENU_TIMEZONE" envDefault:"Europe/Kyiv"`
	Title    string        `env:"MENU_TITLE" envDefault:"Menu"`

	Location *time.Location `env:"-"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format     string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from vars instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid and resolves the menu time zone
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	loc, err := time.LoadLocation(c.Menu.Timezone)
	if err != nil {
		return fmt.Errorf("invalid MENU_TIMEZONE %q: %w", c.Menu.Timezone, err)
	}
	c.Menu.Location = loc

	if c.Tracking.URL != "" && c.Tracking.URL != TrackingDisabled &&
		!strings.HasPrefix(c.Tracking.URL, "http://") && !strings.HasPrefix(c.Tracking.URL, "https://") {
		return fmt.Errorf("TRACK_URL must be an http(s) URL or %q", TrackingDisabled)
	}

	return nil
}

// CatalogURL returns the base URL of the catalog API
func (c *Config) CatalogURL() string {
	return fmt.Sprintf("%s://%s", c.Catalog.Scheme, c.Catalog.APIHost)
}

// TrackingURL returns the visit tracking endpoint, or "" when tracking is off.
// Without TRACK_URL the endpoint lives next to the catalog API.
func (c *Config) TrackingURL() string {
	switch {
	case c.Tracking.URL == TrackingDisabled:
		return ""
	case c.Tracking.URL != "":
		return c.Tracking.URL
	case c.Catalog.APIHost != "":
		return c.CatalogURL() + "/api/user"
	default:
		return ""
	}
}
