package badges

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"badgehub/internal/response"
	"badgehub/internal/services"
	"badgehub/internal/validation"

	"github.com/gorilla/mux"
)

// BadgeController handles the badge management API endpoints
type BadgeController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewBadgeController creates a new badge API controller
func NewBadgeController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BadgeController {
	return &BadgeController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// ===============================
// BADGE CRUD ENDPOINTS
// ===============================

// CreateBadge handles POST /api/v1/badges
func (c *BadgeController) CreateBadge(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid JSON payload", nil))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), nil))
		return
	}

	result, err := c.serviceCollection.BadgeService.CreateBadge(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, result)
}

// GetBadge handles GET /api/v1/badges/{id}
func (c *BadgeController) GetBadge(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	view, err := c.serviceCollection.BadgeService.GetBadge(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteJSON(w, r, http.StatusOK, view)
}

// SaveBadge handles PUT /api/v1/badges/{id}
func (c *BadgeController) SaveBadge(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.SaveBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid JSON payload", nil))
		return
	}
	req.ID = id

	if err := validation.ValidateStruct(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError(err.Error(), nil))
		return
	}

	result, err := c.serviceCollection.BadgeService.SaveBadge(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteJSON(w, r, http.StatusOK, result)
}

// ListBadges handles GET /api/v1/badges
func (c *BadgeController) ListBadges(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	summaries, err := c.serviceCollection.BadgeService.ListBadges(r.Context(), limit, offset)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"badges": summaries,
		"limit":  limit,
		"offset": offset,
	})
}

// ===============================
// DESIGNER PUBLISH ENDPOINT
// ===============================

// DesignerPublish handles POST /api/v1/badges/{id}/designer-publish
func (c *BadgeController) DesignerPublish(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writeDesignerError(w, r, err)
		return
	}

	var req services.DesignerPublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeDesignerError(w, r, services.NewPayloadError("invalid JSON payload", nil))
		return
	}
	req.RecordID = id

	if err := validation.ValidateStruct(&req); err != nil {
		c.writeDesignerError(w, r, services.NewValidationError(err.Error(), nil))
		return
	}

	result, err := c.serviceCollection.DesignerService.Publish(r.Context(), &req)
	if err != nil {
		c.writeDesignerError(w, r, err)
		return
	}

	c.responseBuilder.WriteJSON(w, r, http.StatusOK, result)
}

// writeDesignerError attaches the fallback filename to every designer publish
// failure so the design tool can offer a plain download instead.
func (c *BadgeController) writeDesignerError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)
	if serviceErr.Details == nil {
		serviceErr.Details = make(map[string]interface{})
	}
	serviceErr.Details["suggested_filename"] = services.SuggestedFilename
	c.responseBuilder.WriteError(w, r, serviceErr)
}

// ===============================
// HELPERS
// ===============================

func (c *BadgeController) pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badgeErr := services.NewValidationError("invalid badge id", err)
		badgeErr.Details = map[string]interface{}{"id": raw}
		return 0, badgeErr
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
