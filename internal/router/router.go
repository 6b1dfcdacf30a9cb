package router

import (
	"encoding/json"
	"net/http"
	"time"

	"badgehub/internal/handlers/api/v1/badges"
	"badgehub/internal/middleware"
	"badgehub/internal/response"
	"badgehub/internal/services"
	"badgehub/internal/utils/appinfo"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP routing table with the shared middleware stack.
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))

	// Health endpoints sit outside the API prefix so probes stay stable
	// across API versions.
	r.HandleFunc("/health", healthHandler(serviceCollection)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", livenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readinessHandler(serviceCollection)).Methods(http.MethodGet)

	badgeController := badges.NewBadgeController(serviceCollection, logger, responseBuilder)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Reads are open; every mutation goes through the publish token check.
	api.HandleFunc("/badges", badgeController.ListBadges).Methods(http.MethodGet)
	api.HandleFunc("/badges/{id:[0-9]+}", badgeController.GetBadge).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.PublishAuth(serviceCollection.Config.Auth.JWTSecret, logger))
	authed.HandleFunc("/badges", badgeController.CreateBadge).Methods(http.MethodPost)
	authed.HandleFunc("/badges/{id:[0-9]+}", badgeController.SaveBadge).Methods(http.MethodPut)
	authed.HandleFunc("/badges/{id:[0-9]+}/designer-publish", badgeController.DesignerPublish).Methods(http.MethodPost)

	r.NotFoundHandler = notFoundHandler()
	r.MethodNotAllowedHandler = methodNotAllowedHandler()

	return r
}

// ===============================
// HEALTH HANDLERS
// ===============================

func healthHandler(sc *services.ServiceCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		var detail string
		if err := sc.HealthCheck(r.Context()); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			detail = err.Error()
		}

		writeJSON(w, code, map[string]interface{}{
			"status":      status,
			"detail":      detail,
			"environment": appinfo.GetEnvironment(),
			"version":     appinfo.GetVersion(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func livenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

func readinessHandler(sc *services.ServiceCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sc.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"detail": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error": map[string]string{
				"type":    "NOT_FOUND",
				"message": "resource not found",
			},
		})
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"success": false,
			"error": map[string]string{
				"type":    "METHOD_NOT_ALLOWED",
				"message": "method not allowed for this resource",
			},
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
