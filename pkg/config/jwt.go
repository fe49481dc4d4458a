package config

import "time"

// SessionConfig holds session token and cookie configuration
type SessionConfig struct {
	Secret       string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer       string        `env:"JWT_ISSUER" env-default:"simple-account"`
	Expiry       time.Duration `env:"SESSION_EXPIRY" env-default:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"false"`
}

const insecureDefaultSecret = "very-secure-jwt-secret"

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (s SessionConfig) UsesDefaultSecret() bool {
	return s.Secret == insecureDefaultSecret
}
