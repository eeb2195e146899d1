package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups every setting the api and jobs binaries read at startup.
type Config struct {
	App    AppConfig
	DB     DBConfig
	HTTP   HTTPConfig
	JWT    JWTConfig
	Mail   MailConfig
	Alerts AlertConfig
	Ledger LedgerConfig
}

type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	SiteURL  string
	Timezone string

	// Seed admin created on first start when no user has this email.
	AdminEmail    string
	AdminPassword string
}

// IsDevelopment reports whether the app runs with developer defaults.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves Timezone, falling back to UTC when the zone is unknown.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DBConfig holds PostgreSQL settings. DatabaseURL wins over the discrete fields.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
}

// DSN returns the connection string handed to the gorm postgres driver.
func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type HTTPConfig struct {
	Host string
	Port int
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// MailConfig configures the SMTP collaborator. An empty Host selects the log mailer.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// AlertConfig tunes the alert scan.
type AlertConfig struct {
	DedupWindow       time.Duration
	ExpiryWarningDays int
	ExpiryUrgentDays  int
	ScanBatchSize     int
}

// LedgerConfig selects what happens when an outbound movement exceeds stock.
type LedgerConfig struct {
	OverdrawPolicy string // clamp or reject
}

// Load reads .env (if present) into the environment, then resolves every key
// through viper so env vars always win over defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	dedup, err := time.ParseDuration(v.GetString("ALERT_DEDUP_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("parse ALERT_DEDUP_WINDOW: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
			SiteURL:  v.GetString("SITE_URL"),
			Timezone: v.GetString("TIMEZONE"),

			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			ExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
			Issuer:          v.GetString("JWT_ISSUER"),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		Alerts: AlertConfig{
			DedupWindow:       dedup,
			ExpiryWarningDays: v.GetInt("ALERT_EXPIRY_WARNING_DAYS"),
			ExpiryUrgentDays:  v.GetInt("ALERT_EXPIRY_URGENT_DAYS"),
			ScanBatchSize:     v.GetInt("ALERT_SCAN_BATCH_SIZE"),
		},
		Ledger: LedgerConfig{
			OverdrawPolicy: strings.ToLower(v.GetString("LEDGER_OVERDRAW_POLICY")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "Inventory Plus")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SITE_URL", "http://127.0.0.1:3000")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "inventory_plus")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 3000)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("JWT_ISSUER", "inventory-plus")

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "Inventory Plus <no-reply@inventory-plus.local>")

	v.SetDefault("ALERT_DEDUP_WINDOW", "24h")
	v.SetDefault("ALERT_EXPIRY_WARNING_DAYS", 7)
	v.SetDefault("ALERT_EXPIRY_URGENT_DAYS", 3)
	v.SetDefault("ALERT_SCAN_BATCH_SIZE", 200)

	v.SetDefault("LEDGER_OVERDRAW_POLICY", "clamp")
}

func (c *Config) validate() error {
	if c.Alerts.DedupWindow <= 0 {
		return fmt.Errorf("ALERT_DEDUP_WINDOW must be positive, got %s", c.Alerts.DedupWindow)
	}
	if c.Alerts.ExpiryUrgentDays > c.Alerts.ExpiryWarningDays {
		return fmt.Errorf("ALERT_EXPIRY_URGENT_DAYS (%d) exceeds ALERT_EXPIRY_WARNING_DAYS (%d)",
			c.Alerts.ExpiryUrgentDays, c.Alerts.ExpiryWarningDays)
	}
	switch c.Ledger.OverdrawPolicy {
	case "clamp", "reject":
	default:
		return fmt.Errorf("LEDGER_OVERDRAW_POLICY must be clamp or reject, got %q", c.Ledger.OverdrawPolicy)
	}
	if c.JWT.Secret == "" && !c.App.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}
