package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badgehub/internal/config"
	"badgehub/internal/database"
	"badgehub/internal/middleware"
	"badgehub/internal/response"
	"badgehub/internal/router"
	"badgehub/internal/services"
	"badgehub/internal/utils"

	"go.uber.org/zap"
)

func main() {
	issueTokenSubject := flag.String("issue-token", "", "mint a publish token for the given subject and exit")
	flag.Parse()

	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if *issueTokenSubject != "" {
		if cfg.Auth.JWTSecret == "" {
			logger.Fatal("Cannot mint a publish token: no JWT secret configured")
		}
		token, err := middleware.IssuePublishToken(cfg.Auth.JWTSecret, *issueTokenSubject, cfg.Auth.JWTExpiry)
		if err != nil {
			logger.Fatal("Failed to mint publish token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	logger.Info("Starting BadgeHub application")
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := database.InitDB(cfg, logger); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	dbManager := database.GetDB()
	defer dbManager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	healthStatus := database.Health(ctx)
	cancel()
	if healthStatus.Status != database.StatusHealthy {
		logger.Fatal("Database is not healthy",
			zap.String("status", healthStatus.Status),
			zap.Strings("errors", healthStatus.Errors),
		)
	}

	storage, err := utils.NewCloudinaryStorage(&cfg.Cloudinary, logger)
	if err != nil {
		logger.Fatal("Failed to initialize asset storage", zap.Error(err))
	}

	serviceCollection, err := services.NewServiceCollection(dbManager, cfg, storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	responseBuilder := response.NewBuilder(logger, cfg.IsProduction())
	handler := router.SetupRouter(serviceCollection, responseBuilder, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("GO_ENV")
	var config zap.Config

	switch env {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
