// Package config loads simple-account settings from the environment.
//
// Load reads an optional .env file with godotenv, then fills Config from
// environment variables through cleanenv struct tags:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// The GetEnv* helpers cover values read outside Config, with defaults.
package config
