// Package bootstrap wires the runtime dependencies shared by the command
// line entry points.
package bootstrap

import (
	"fmt"

	"glimpse/internal/blob"
	"glimpse/internal/cache"
	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/identity"
	"glimpse/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database, runs migrations and initializes the
// Redis cache (which may end up nil when unreachable).
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.Migrate(db,
		&identity.Account{},
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Save{},
	); err != nil {
		return nil, nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// BuildStorage selects the object-store backend from configuration.
func BuildStorage(cfg *config.Config) (blob.Store, error) {
	switch cfg.StorageBackend {
	case "http":
		return blob.NewHTTPStore(cfg.StorageBaseURL, cfg.StorageBucket, cfg.StorageToken), nil
	default:
		return blob.NewDiskStore(cfg.StorageDir, cfg.StorageBaseURL+"/"+cfg.StorageBucket)
	}
}
