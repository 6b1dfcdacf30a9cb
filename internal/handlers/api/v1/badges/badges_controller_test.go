package badges

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"badgehub/internal/models"
	"badgehub/internal/response"
	"badgehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBadgeService is a minimal BadgeService implementation for handler tests
type mockBadgeService struct {
	getBadgeFn func(ctx context.Context, id int64) (*services.BadgeView, error)
	createFn   func(ctx context.Context, req *services.CreateBadgeRequest) (*services.SaveBadgeResult, error)
	saveFn     func(ctx context.Context, req *services.SaveBadgeRequest) (*services.SaveBadgeResult, error)
	listFn     func(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error)
}

func (m *mockBadgeService) CreateBadge(ctx context.Context, req *services.CreateBadgeRequest) (*services.SaveBadgeResult, error) {
	return m.createFn(ctx, req)
}

func (m *mockBadgeService) GetBadge(ctx context.Context, id int64) (*services.BadgeView, error) {
	return m.getBadgeFn(ctx, id)
}

func (m *mockBadgeService) SaveBadge(ctx context.Context, req *services.SaveBadgeRequest) (*services.SaveBadgeResult, error) {
	return m.saveFn(ctx, req)
}

func (m *mockBadgeService) ListBadges(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error) {
	return m.listFn(ctx, limit, offset)
}

func (m *mockBadgeService) RefreshValidity(ctx context.Context, recordID int64) (*models.ValiditySnapshot, error) {
	return nil, nil
}

// mockDesignerService is a minimal DesignerService implementation
type mockDesignerService struct {
	publishFn func(ctx context.Context, req *services.DesignerPublishRequest) (*services.DesignerPublishResult, error)
}

func (m *mockDesignerService) Publish(ctx context.Context, req *services.DesignerPublishRequest) (*services.DesignerPublishResult, error) {
	return m.publishFn(ctx, req)
}

func newTestController(badgeSvc services.BadgeService, designerSvc services.DesignerService) *BadgeController {
	logger := zap.NewNop()
	collection := &services.ServiceCollection{
		BadgeService:    badgeSvc,
		DesignerService: designerSvc,
		Logger:          logger,
	}
	return NewBadgeController(collection, logger, response.NewBuilder(logger, false))
}

func TestGetBadgeSuccess(t *testing.T) {
	badgeSvc := &mockBadgeService{
		getBadgeFn: func(ctx context.Context, id int64) (*services.BadgeView, error) {
			require.Equal(t, int64(7), id)
			return &services.BadgeView{
				Record:       &models.BadgeRecord{ID: 7, Title: "Code Reviewer"},
				DisplayTitle: "Code Reviewer (Version 1.0)",
				Version:      "1.0",
			}, nil
		},
	}
	controller := newTestController(badgeSvc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges/7", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "7"})
	rec := httptest.NewRecorder()

	controller.GetBadge(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			DisplayTitle string `json:"display_title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Code Reviewer (Version 1.0)", body.Data.DisplayTitle)
}

func TestGetBadgeInvalidID(t *testing.T) {
	controller := newTestController(&mockBadgeService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()

	controller.GetBadge(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBadgeNotFound(t *testing.T) {
	badgeSvc := &mockBadgeService{
		getBadgeFn: func(ctx context.Context, id int64) (*services.BadgeView, error) {
			return nil, services.NewNotFoundError("badge 9 not found")
		},
	}
	controller := newTestController(badgeSvc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges/9", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})
	rec := httptest.NewRecorder()

	controller.GetBadge(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBadgeSuccess(t *testing.T) {
	badgeSvc := &mockBadgeService{
		createFn: func(ctx context.Context, req *services.CreateBadgeRequest) (*services.SaveBadgeResult, error) {
			assert.Equal(t, "Code Reviewer", req.Title)
			return &services.SaveBadgeResult{
				Record: &models.BadgeRecord{ID: 1, Title: req.Title, Status: models.StatusDraft},
			}, nil
		},
	}
	controller := newTestController(badgeSvc, nil)

	payload := `{"title": "Code Reviewer", "version": "3"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	controller.CreateBadge(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBadgeRejectsMissingTitle(t *testing.T) {
	controller := newTestController(&mockBadgeService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	controller.CreateBadge(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDesignerPublishFailureCarriesSuggestedFilename(t *testing.T) {
	designerSvc := &mockDesignerService{
		publishFn: func(ctx context.Context, req *services.DesignerPublishRequest) (*services.DesignerPublishResult, error) {
			return nil, services.NewDecodeError("error decoding the badge designer image data: bad base64 data", nil)
		},
	}
	controller := newTestController(&mockBadgeService{}, designerSvc)

	payload := `{"image": "data:image/png;base64,xxxx"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges/3/designer-publish", strings.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	controller.DesignerPublish(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error struct {
			Type    string                 `json:"type"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.TypeDecodeError, body.Error.Type)
	assert.Equal(t, services.SuggestedFilename, body.Error.Details["suggested_filename"])
}

func TestDesignerPublishSuccess(t *testing.T) {
	designerSvc := &mockDesignerService{
		publishFn: func(ctx context.Context, req *services.DesignerPublishRequest) (*services.DesignerPublishResult, error) {
			assert.Equal(t, int64(3), req.RecordID)
			return &services.DesignerPublishResult{AssetID: 11, ImageSet: true}, nil
		},
	}
	controller := newTestController(&mockBadgeService{}, designerSvc)

	payload := `{"image": "data:image/png;base64,iVBORw0KGgo="}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges/3/designer-publish", strings.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	controller.DesignerPublish(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			AssetID  int64 `json:"asset_id"`
			ImageSet bool  `json:"image_set"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.Data.AssetID)
	assert.True(t, body.Data.ImageSet)
}

func TestListBadges(t *testing.T) {
	badgeSvc := &mockBadgeService{
		listFn: func(ctx context.Context, limit, offset int) ([]*models.BadgeSummary, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 0, offset)
			return []*models.BadgeSummary{
				{ID: 1, Title: "Published", Status: models.StatusPublished, Version: "2.0", Invalid: true},
				{ID: 2, Title: "Draft", Status: models.StatusDraft, Version: "1.0"},
			}, nil
		},
	}
	controller := newTestController(badgeSvc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges", nil)
	rec := httptest.NewRecorder()

	controller.ListBadges(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Badges []struct {
				Title   string `json:"title"`
				Invalid bool   `json:"invalid"`
			} `json:"badges"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Badges, 2)
	assert.True(t, body.Data.Badges[0].Invalid)
	assert.False(t, body.Data.Badges[1].Invalid)
}
