package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JWTConfig controls how the local server checks recruiter session tokens.
// The backend issues and verifies tokens; the server only rejects obviously bad ones early.
type JWTConfig struct {
	// Secret, when set, lets the server verify HS256 signatures itself.
	Secret string
	// Leeway tolerates clock skew when checking expiry.
	Leeway time.Duration
}

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads JWT_SECRET (optional) and JWT_LEEWAY_SECONDS (default: 30).
func NewJWTConfig() (*JWTConfig, error) {
	leewayStr := os.Getenv("JWT_LEEWAY_SECONDS")
	if leewayStr == "" {
		leewayStr = "30" // default
	}

	leewaySeconds, err := strconv.Atoi(leewayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_LEEWAY_SECONDS: %v", err)
	}

	config := &JWTConfig{
		Secret: os.Getenv("JWT_SECRET"),
		Leeway: time.Duration(leewaySeconds) * time.Second,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Verifies reports whether signatures are checked locally.
func (c *JWTConfig) Verifies() bool {
	return c.Secret != ""
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Leeway < 0 {
		return fmt.Errorf("JWT_LEEWAY_SECONDS must not be negative, got: %d", int(c.Leeway/time.Second))
	}
	if c.Secret != "" && len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters when set")
	}
	return nil
}
