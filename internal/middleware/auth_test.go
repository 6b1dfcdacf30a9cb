package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"badgehub/internal/contextutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func publishAuthHandler(t *testing.T, secret string) (http.Handler, *string) {
	t.Helper()
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = contextutils.GetSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return PublishAuth(secret, zap.NewNop())(next), &subject
}

func TestPublishAuthAcceptsMintedToken(t *testing.T) {
	handler, subject := publishAuthHandler(t, testSecret)

	token, err := IssuePublishToken(testSecret, "designer-bot", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "designer-bot", *subject)
}

func TestPublishAuthRejectsMissingToken(t *testing.T) {
	handler, _ := publishAuthHandler(t, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestPublishAuthRejectsWrongSecret(t *testing.T) {
	handler, _ := publishAuthHandler(t, testSecret)

	token, err := IssuePublishToken("other-secret", "designer-bot", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishAuthRejectsExpiredToken(t *testing.T) {
	handler, _ := publishAuthHandler(t, testSecret)

	token, err := IssuePublishToken(testSecret, "designer-bot", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishAuthDisabledWithoutSecret(t *testing.T) {
	handler, _ := publishAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/badges", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
