package database

import (
	"fmt"
	"os"
	"sync"

	"badgehub/internal/config"

	"go.uber.org/zap"
)

// DB is the global database manager instance
var DB *Manager

var initMutex sync.Mutex

// InitDB initializes the database manager and runs migrations. Calling it
// twice is a no-op.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("Database manager already initialized")
		return nil
	}

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	migrationsPath := cfg.Database.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if _, err := os.Stat(migrationsPath); err != nil {
		manager.Close()
		return fmt.Errorf("migrations path %q not usable: %w", migrationsPath, err)
	}

	if err := manager.Migrate(migrationsPath); err != nil {
		manager.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	DB = manager
	return nil
}

// GetDB returns the global manager, nil before InitDB.
func GetDB() *Manager {
	initMutex.Lock()
	defer initMutex.Unlock()
	return DB
}
