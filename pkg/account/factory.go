package account

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// RepositoryConfig contains configuration for creating an account repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories (DBTX interface)
	DB DBTX
	// Collection is required for MongoDB repositories
	Collection *mongo.Collection
	// DataDir is required for file-based repositories
	DataDir string
}

// NewRepository creates an account repository based on the persistence type
func NewRepository(persistenceType string, config RepositoryConfig) (Repository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		return NewPostgresRepository(config.DB), nil
	case "mongo", "mongodb":
		if config.Collection == nil {
			return nil, fmt.Errorf("collection required for mongo repository")
		}
		return NewMongoRepository(config.Collection), nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileRepository(config.DataDir)
	case "inmem", "memory":
		return NewInMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, mongo, file, inmem)", persistenceType)
	}
}
