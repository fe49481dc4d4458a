package config

import (
	"fmt"
	"net/url"
)

// PersistenceConfig selects the account store.
type PersistenceConfig struct {
	// Type is one of postgres, mongo, file or inmem.
	Type    string `env:"PERSISTENCE_TYPE" env-default:"postgres"`
	DataDir string `env:"PERSISTENCE_DATA_DIR" env-default:"./data"`
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"ACCOUNT_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"ACCOUNT_PG_PORT" env-default:"5432"`
	Database string `env:"ACCOUNT_PG_DATABASE" env-default:"account_db"`
	User     string `env:"ACCOUNT_PG_USER" env-default:"account"`
	Password string `env:"ACCOUNT_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"ACCOUNT_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Database,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	q.Set("search_path", d.Schema+",public")
	u.RawQuery = q.Encode()
	return u.String()
}

// MongoConfig holds the document store connection.
type MongoConfig struct {
	URI        string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database   string `env:"MONGO_DATABASE" env-default:"account_db"`
	Collection string `env:"MONGO_COLLECTION" env-default:"accounts"`
}

// RedisConfig enables Redis-backed resend counters when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}
