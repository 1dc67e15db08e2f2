// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// AdminEmail is the email of the single configured principal.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`
	// AdminPassword is the plaintext password of the configured principal.
	// Ignored when AdminPasswordHash is set.
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	// AdminPasswordHash is an optional bcrypt hash of the principal's password.
	// Preferred over AdminPassword when both are set.
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	// AdminName is the display name of the configured principal (e.g. "Admin").
	AdminName string `mapstructure:"ADMIN_NAME"`
	// AdminUserID is the stable subject id of the configured principal.
	AdminUserID string `mapstructure:"ADMIN_USER_ID"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "socialcat-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "socialcat-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// SessionTTL is the session token lifetime (e.g. "720h" = 30 days). Fixed, not sliding.
	SessionTTL string `mapstructure:"SESSION_TTL"`

	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// CORSOrigins is a comma-separated list of allowed origins for browser clients.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint for traces and metrics; empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_EMAIL", "admin@socialcat.com")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_NAME", "Admin")
	v.SetDefault("ADMIN_USER_ID", "1")
	v.SetDefault("JWT_ISSUER", "socialcat-auth")
	v.SetDefault("JWT_AUDIENCE", "socialcat-api")
	v.SetDefault("SESSION_TTL", "720h") // 30d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AdminEmail == "" {
		return nil, errors.New("config: ADMIN_EMAIL must be set")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" && cfg.Env == "production" {
		return nil, errors.New("config: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// SessionDuration parses SessionTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// CORSOriginsList returns the allowed origins from the comma-separated config.
// An empty list means no cross-origin access.
func (c *Config) CORSOriginsList() []string {
	if c == nil || c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
