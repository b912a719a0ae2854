package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const DefaultTimezone = "Asia/Kolkata"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type SessionConfig struct {
	Secret      string
	IdleTimeout time.Duration
	CookieName  string
}

type RequestsConfig struct {
	MaxRequests int
	BannerTTL   time.Duration
}

type BrandingConfig struct {
	File string
}

type Config struct {
	Environment string
	Timezone    string
	// Location is resolved from Timezone; "today" counters and the midnight refresh use it.
	Location *time.Location
	HTTP        HTTPConfig
	DB          DBConfig
	Session     SessionConfig
	Requests    RequestsConfig
	Branding    BrandingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Timezone:    strings.TrimSpace(v.GetString("APP_TIMEZONE")),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Session: SessionConfig{
			Secret:      v.GetString("SESSION_SECRET"),
			IdleTimeout: v.GetDuration("SESSION_IDLE_TIMEOUT"),
			CookieName:  v.GetString("SESSION_COOKIE_NAME"),
		},
		Requests: RequestsConfig{
			MaxRequests: v.GetInt("REQUESTS_MAX"),
			BannerTTL:   v.GetDuration("BANNER_TTL"),
		},
		Branding: BrandingConfig{
			File: v.GetString("BRANDING_FILE"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverSQLite
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.DSN = "waste-pickup.db"
	}
	if cfg.Session.IdleTimeout <= 0 {
		cfg.Session.IdleTimeout = 2 * time.Hour
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "wp_session"
	}
	if cfg.Requests.MaxRequests <= 0 {
		cfg.Requests.MaxRequests = 999
	}
	if cfg.Requests.BannerTTL <= 0 {
		cfg.Requests.BannerTTL = 5 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	cfg.Location = loc
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
