package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	EnvAuthTokenSecret   = "ALIGNER_AUTH_TOKEN_SECRET"
	EnvAuthTokenExpiry   = "ALIGNER_AUTH_TOKEN_EXPIRY"
	EnvAuthAdminEmail    = "ALIGNER_AUTH_ADMIN_EMAIL"
	EnvAuthAdminPassword = "ALIGNER_AUTH_ADMIN_PASSWORD"
	EnvAuthBcryptCost    = "ALIGNER_AUTH_BCRYPT_COST"
)

// MinTokenSecretLength is the shortest accepted token signing secret, in bytes.
const MinTokenSecretLength = 32

// DefaultAdminPassword is used for the bootstrap admin when none is configured.
const DefaultAdminPassword = "password"

// AuthConfig holds token signing and bootstrap admin settings.
type AuthConfig struct {
	TokenSecret   string `toml:"token_secret"`
	TokenExpiry   string `toml:"token_expiry"`
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"`
	BcryptCost    int    `toml:"bcrypt_cost"`
}

// TokenExpiryDuration returns TokenExpiry as a time.Duration.
func (c *AuthConfig) TokenExpiryDuration() time.Duration {
	return duration(c.TokenExpiry)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuthConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.TokenSecret != "" {
		c.TokenSecret = overlay.TokenSecret
	}
	if overlay.TokenExpiry != "" {
		c.TokenExpiry = overlay.TokenExpiry
	}
	if overlay.AdminEmail != "" {
		c.AdminEmail = overlay.AdminEmail
	}
	if overlay.AdminPassword != "" {
		c.AdminPassword = overlay.AdminPassword
	}
	if overlay.BcryptCost != 0 {
		c.BcryptCost = overlay.BcryptCost
	}
}

func (c *AuthConfig) loadDefaults() {
	if c.TokenExpiry == "" {
		c.TokenExpiry = "24h"
	}
	if c.AdminEmail == "" {
		c.AdminEmail = "admin@qc2m2.com"
	}
	if c.AdminPassword == "" {
		c.AdminPassword = DefaultAdminPassword
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthTokenSecret); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv(EnvAuthTokenExpiry); v != "" {
		c.TokenExpiry = v
	}
	if v := os.Getenv(EnvAuthAdminEmail); v != "" {
		c.AdminEmail = v
	}
	if v := os.Getenv(EnvAuthAdminPassword); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv(EnvAuthBcryptCost); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BcryptCost = n
		}
	}
}

func (c *AuthConfig) validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("token_secret required")
	}
	if len(c.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("token_secret must be at least %d bytes", MinTokenSecretLength)
	}
	if d, err := time.ParseDuration(c.TokenExpiry); err != nil || d <= 0 {
		return fmt.Errorf("invalid token_expiry: %q", c.TokenExpiry)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
