package config

import (
	"fmt"
	"time"
)

// AuthStub configures the local stand-in for the auth backend.
type AuthStub struct {
	Port          string
	LogLevel      string
	JWTSecret     string
	TokenTTL      time.Duration
	DatabaseURL   string
	AdminEmail    string
	AdminPassword string
}

// LoadAuthStub reads the auth stub configuration. It shares LOG_LEVEL and
// DATABASE_URL with the gateway; everything else is prefixed AUTHSTUB_.
func LoadAuthStub() (AuthStub, error) {
	v := newViper()
	v.SetDefault("AUTHSTUB_PORT", "4000")
	v.SetDefault("AUTHSTUB_TOKEN_TTL", 24*time.Hour)

	cfg := AuthStub{
		Port:          v.GetString("AUTHSTUB_PORT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		JWTSecret:     v.GetString("AUTHSTUB_JWT_SECRET"),
		TokenTTL:      v.GetDuration("AUTHSTUB_TOKEN_TTL"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		AdminEmail:    v.GetString("AUTHSTUB_ADMIN_EMAIL"),
		AdminPassword: v.GetString("AUTHSTUB_ADMIN_PASSWORD"),
	}
	if cfg.JWTSecret == "" {
		return AuthStub{}, fmt.Errorf("AUTHSTUB_JWT_SECRET must be set")
	}
	if cfg.TokenTTL <= 0 {
		return AuthStub{}, fmt.Errorf("AUTHSTUB_TOKEN_TTL must be positive")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return AuthStub{}, fmt.Errorf("AUTHSTUB_ADMIN_EMAIL and AUTHSTUB_ADMIN_PASSWORD must be set together")
	}
	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c AuthStub) Address() string {
	return Config{Port: c.Port}.Address()
}
