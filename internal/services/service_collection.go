package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"badgehub/internal/cache"
	"badgehub/internal/config"
	"badgehub/internal/database"
	"badgehub/internal/datauri"
	"badgehub/internal/events"
	"badgehub/internal/repositories"
	"badgehub/internal/staging"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their dependencies wired.
type ServiceCollection struct {
	// Domain services
	BadgeService    BadgeService
	AssetService    AssetService
	DesignerService DesignerService

	// Infrastructure components
	Cache     cache.Cache
	EventBus  events.EventBus
	Staging   *staging.Store
	Logger    *zap.Logger
	Config    *config.Config
	DBManager *database.Manager
}

// NewServiceCollection wires repositories, infrastructure, and services in
// dependency order. storage is the media backend implementation.
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	storage AssetStorage,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if storage == nil {
		return nil, fmt.Errorf("asset storage is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	cacheConfig := &cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.TTL,
		MaxKeys:         cfg.Cache.MaxKeys,
		CleanupInterval: cfg.Cache.CleanupInterval,
		RedisURL:        cfg.Cache.RedisURL,
		RedisPrefix:     cfg.Cache.RedisPrefix,
	}
	appCache, err := cache.New(cacheConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	eventBus := events.NewInMemoryEventBus(logger)

	stagingStore := staging.NewStore(os.TempDir(), "badgehub", logger)

	badgeRepo := repositories.NewBadgeRepository(dbManager, logger)
	assetRepo := repositories.NewAssetRepository(dbManager, logger)

	badgeService := NewBadgeService(badgeRepo, assetRepo, appCache, eventBus, logger)
	assetService := NewAssetService(storage, assetRepo, eventBus, logger, cfg.Cloudinary.UploadFolder)
	designerService := NewDesignerService(
		datauri.NewDecoder(),
		stagingStore,
		assetService,
		badgeService,
		allowedMediaTypes(cfg.Cloudinary.AllowedFormats),
		logger,
	)

	collection := &ServiceCollection{
		BadgeService:    badgeService,
		AssetService:    assetService,
		DesignerService: designerService,
		Cache:           appCache,
		EventBus:        eventBus,
		Staging:         stagingStore,
		Logger:          logger,
		Config:          cfg,
		DBManager:       dbManager,
	}

	logger.Info("Service collection initialized")
	return collection, nil
}

// allowedMediaTypes maps the configured image formats ("png", "jpeg") onto
// the media types the ingestion allow-list checks against.
func allowedMediaTypes(formats []string) []string {
	types := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.TrimSpace(strings.ToLower(f))
		if f == "" {
			continue
		}
		if f == "jpg" {
			f = "jpeg"
		}
		types = append(types, "image/"+f)
	}
	return types
}

// HealthCheck probes the collection's dependencies.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if status := database.Health(checkCtx); status.Status != database.StatusHealthy {
		return fmt.Errorf("database unhealthy: %v", status.Errors)
	}
	if err := sc.Cache.Health(checkCtx); err != nil {
		return fmt.Errorf("cache unhealthy: %w", err)
	}
	return nil
}

// Shutdown releases long-lived resources.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var firstErr error
	if err := sc.Cache.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("cache close: %w", err)
	}
	return firstErr
}
