package admin

import (
	"fmt"
	"time"
)

// Config configures the admin HTTP surface.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// RateLimitPerSecond bounds requests/sec accepted by mutating endpoints
	// (currently just /step). 0 selects the default of 5/s (burst 10); a
	// negative value disables the limiter.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second" mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`

	// JWTEnabled gates every route but /healthz and /version behind a
	// Bearer token validated by this server's own HS256 service. Off by
	// default so a host embedding admin/ in a trusted, already-isolated
	// network doesn't have to provision a secret it has no use for.
	JWTEnabled  bool          `yaml:"jwt_enabled" mapstructure:"jwt_enabled"`
	JWTSecret   string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer" mapstructure:"jwt_issuer"`
	JWTTokenTTL time.Duration `yaml:"jwt_token_ttl" mapstructure:"jwt_token_ttl"`
}

// ApplyDefaults fills in unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 9190
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RateLimitPerSecond == 0 {
		c.RateLimitPerSecond = 5.0
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 10
	}
	if c.JWTEnabled && c.JWTTokenTTL == 0 {
		c.JWTTokenTTL = time.Hour
	}
}

// Validate checks the fields JWT auth needs when enabled.
func (c *Config) Validate() error {
	if c.JWTEnabled && c.JWTSecret == "" {
		return fmt.Errorf("admin: jwt_secret is required when jwt_enabled is true")
	}
	return nil
}
