package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"badgehub/internal/contextutils"

	"go.uber.org/zap"
)

// Recovery middleware converts panics into 500 responses instead of
// dropping the connection.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestLogger := GetRequestLogger(r.Context())
					requestLogger.Error("Panic recovered",
						zap.Any("panic", err),
						zap.ByteString("stack", debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"error": map[string]string{
							"type":    "internal_error",
							"message": "An unexpected error occurred",
						},
						"request_id": contextutils.GetRequestID(r.Context()),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
