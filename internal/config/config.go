// Package config provides centralized configuration management for the
// lookup service. Values come from environment variables (optionally seeded
// from a .env file) with defaults, and are validated once at startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Items    ItemsConfig
	Auth     AuthConfig
	Mail     MailConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// CORSOrigins is a comma-separated allow list for browser clients.
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:5003"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL supports both DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"10m"`

	// AutoMigrate runs embedded migrations on server startup.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ItemsConfig controls where the NCM workbook is read from.
type ItemsConfig struct {
	// Path is an explicit workbook location. Used only when the file exists.
	Path string `env:"NCM_SPREADSHEET_PATH"`

	// ResourceDir holds the packaged workbook used when Path is unset or missing.
	ResourceDir string `env:"NCM_RESOURCE_DIR" default:"resources"`

	ResourceName string `env:"NCM_RESOURCE_NAME" default:"Planilha_NCM.xls"`

	// Watch reloads the table as soon as the file changes on disk.
	Watch         bool          `env:"NCM_WATCH" default:"false"`
	WatchDebounce time.Duration `env:"NCM_WATCH_DEBOUNCE" default:"500ms"`

	// Preload builds the table at startup instead of on the first query.
	Preload bool `env:"NCM_PRELOAD" default:"true"`
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" default:"60m"`
	TTLMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	Issuer     string        `env:"JWT_ISSUER" default:"ncmlookup"`
	BcryptCost int           `env:"BCRYPT_COST" default:"12"`
}

// MailConfig holds SMTP settings for password reset mail.
// Mail is disabled when Host is empty.
type MailConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT" default:"587"`
	User      string `env:"SMTP_USER"`
	Password  string `env:"SMTP_PASSWORD"`
	FromName  string `env:"SMTP_FROM_NAME" default:"Reforma Tributária"`
	FromEmail string `env:"SMTP_FROM_EMAIL"`

	ResetURL string        `env:"FRONTEND_RESET_URL" default:"http://localhost:5173/reset-password"`
	ResetTTL time.Duration `env:"RESET_LINK_TTL" default:"15m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// AuthLimit applies to login, register and password reset endpoints.
	AuthLimit int `env:"RATE_LIMIT_AUTH" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Enabled reports whether SMTP delivery is configured.
func (c *MailConfig) Enabled() bool {
	return c.Host != ""
}

// AccessTokenTTL prefers the legacy ACCESS_TOKEN_EXPIRE_MINUTES when set.
func (c *AuthConfig) AccessTokenTTL() time.Duration {
	if c.TTLMinutes > 0 {
		return time.Duration(c.TTLMinutes) * time.Minute
	}
	return c.TokenTTL
}
