package config

import (
	"os"
	"strings"
	"time"
)

// GetEnvOrDefault returns the value of key, or fallback when it is unset or empty.
func GetEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetEnvDuration parses key as a Go duration ("90s", "24h"). Unset or
// unparsable values yield fallback.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnvOrDefault(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

// Environment is the deployment stage named by APP_ENV.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

func GetEnvironment() Environment {
	switch strings.ToLower(GetEnvOrDefault("APP_ENV", string(Development))) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	case "test", "testing":
		return Test
	}
	return Development
}

// IsProduction reports whether APP_ENV names production. Validate refuses
// the built-in JWT secret there.
func IsProduction() bool {
	return GetEnvironment() == Production
}
