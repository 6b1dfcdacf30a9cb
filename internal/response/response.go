package response

import (
	"encoding/json"
	"net/http"
	"time"

	"badgehub/internal/contextutils"
	"badgehub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes API responses in a consistent envelope
type Builder struct {
	logger             *zap.Logger
	maskInternalErrors bool
}

// NewBuilder creates a response builder
func NewBuilder(logger *zap.Logger, maskInternalErrors bool) *Builder {
	return &Builder{
		logger:             logger,
		maskInternalErrors: maskInternalErrors,
	}
}

// WriteJSON writes a success response with the given status and payload
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := APIResponse{
		Success:   status < 400,
		Data:      data,
		RequestID: contextutils.GetRequestID(r.Context()),
		Timestamp: time.Now().Unix(),
	}
	b.write(w, status, &resp)
}

// WriteCreated writes a 201 response
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, http.StatusCreated, data)
}

// WriteError maps a service error onto the response envelope. Unknown error
// types become masked 500s.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := contextutils.GetRequestID(r.Context())

	serviceErr := services.GetServiceError(err)
	if serviceErr.Type == services.TypeInternalError {
		b.logger.Error("Internal error in response path",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}

	message := serviceErr.Message
	if b.maskInternalErrors && serviceErr.StatusCode >= 500 && serviceErr.Type == services.TypeInternalError {
		message = "An unexpected error occurred"
	}

	resp := APIResponse{
		Success: false,
		Error: &ErrorDetail{
			Type:    serviceErr.Type,
			Message: message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
	b.write(w, serviceErr.StatusCode, &resp)
}

func (b *Builder) write(w http.ResponseWriter, status int, resp *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}
