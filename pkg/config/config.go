package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
)

// Config is the full service configuration.
type Config struct {
	AppConfig app.AppConfig

	// BaseURL is the public origin used in emailed links.
	BaseURL string `env:"BASE_URL" env-default:"http://localhost:3000"`
	// StaticDir, when set, is served behind the access guard.
	StaticDir string `env:"STATIC_DIR"`
	// APIPrefix is where the account API is mounted.
	APIPrefix string `env:"API_PREFIX" env-default:"/api/users"`

	PasswordHashAlgorithm string `env:"PASSWORD_HASH_ALGORITHM" env-default:"bcrypt"`
	RegistrationEnabled   bool   `env:"REGISTRATION_ENABLED" env-default:"true"`

	Persistence PersistenceConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Email       EmailConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
}

// Load reads envFiles (default ".env") if present, then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
			slog.Debug("No env file", "file", f)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c Config) Validate() error {
	errs := CollectErrors(
		RequireValidURL("BASE_URL", c.BaseURL),
		RequireNonEmpty("API_PREFIX", c.APIPrefix),
		RequireOneOf("PERSISTENCE_TYPE", c.Persistence.Type, []string{"postgres", "postgresql", "mongo", "mongodb", "file", "inmem", "memory"}),
		RequireOneOf("PASSWORD_HASH_ALGORITHM", c.PasswordHashAlgorithm, []string{"bcrypt", "argon2"}),
		RequireNonEmpty("JWT_SECRET", c.Session.Secret),
		RequirePositiveDuration("SESSION_EXPIRY", c.Session.Expiry),
		RequireNonEmpty("EMAIL_FROM", c.Email.From),
		RequirePositive("RESEND_LIMIT", c.RateLimit.ResendLimit),
		RequirePositiveDuration("RESEND_WINDOW", c.RateLimit.ResendWindow),
		WhenTrue(c.Persistence.Type == "file", func() *ValidationError {
			return RequireNonEmpty("PERSISTENCE_DATA_DIR", c.Persistence.DataDir)
		}),
		WhenTrue(IsProduction(), func() *ValidationError {
			if c.Session.UsesDefaultSecret() {
				return &ValidationError{Field: "JWT_SECRET", Message: "must be set in production"}
			}
			return nil
		}),
	)
	if len(errs) > 0 {
		return errs
	}
	return nil
}
