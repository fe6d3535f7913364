package jwt

import (
	"errors"
	"time"
)

// Config configures the JWT token service. Loadable from YAML/env via
// mapstructure tags, matching every other config struct in this module.
type Config struct {
	// Secret is the HMAC signing key (HS256).
	Secret string `mapstructure:"secret"`
	// Issuer is the "iss" claim value (optional).
	Issuer string `mapstructure:"issuer"`
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}
}

// Validate checks that the secret needed to sign and verify tokens is set.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	return nil
}
