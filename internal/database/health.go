package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus reports the outcome of one health check.
type HealthStatus struct {
	Status    string        `json:"status"`
	Latency   time.Duration `json:"latency"`
	OpenConns int           `json:"open_conns"`
	IdleConns int           `json:"idle_conns"`
	Errors    []string      `json:"errors,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// HealthChecker pings the database and reports pool statistics.
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHealthChecker creates a health checker bound to a manager.
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{manager: manager, logger: logger}
}

// Check runs one health probe.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		CheckedAt: time.Now(),
	}

	start := time.Now()
	if err := h.manager.DB().PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
		h.logger.Warn("Database health check failed", zap.Error(err))
	}
	status.Latency = time.Since(start)

	stats := h.manager.DB().Stats()
	status.OpenConns = stats.OpenConnections
	status.IdleConns = stats.Idle

	return status
}

// Health checks the global manager.
func Health(ctx context.Context) HealthStatus {
	manager := GetDB()
	if manager == nil {
		return HealthStatus{
			Status:    StatusUnhealthy,
			Errors:    []string{"database not initialized"},
			CheckedAt: time.Now(),
		}
	}
	return manager.health.Check(ctx)
}
