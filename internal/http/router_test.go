package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"store-admin-service/internal/auth"
	"store-admin-service/internal/backend"
	"store-admin-service/internal/config"
	"store-admin-service/internal/http/handlers"
	"store-admin-service/internal/ws"
)

func newTestRouter(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Env:               "test",
		JWTSecret:         "router-secret",
		JWTExpirySeconds:  600,
		SummaryLinkSecret: "router-secret",
		DisplayTimezone:   "UTC",
	}
	client, err := backend.New(srv.URL, "svc-key", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	logger := zap.NewNop()
	h := &handlers.Handler{Backend: client, Logger: logger, Config: cfg}
	wsServer := ws.New(ws.NewHub(logger), logger, cfg.JWTSecret, time.Second, nil)
	return NewRouter(h, logger, cfg, wsServer)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := auth.IssueAccessToken("router-secret", time.Minute, time.Now())
	require.NoError(t, err)
	return token
}

func do(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("health must not reach the backend")
	})
	rec := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("unauthenticated request reached the backend")
	})
	for _, target := range []string{"/api/admin/orders", "/api/admin/products/1", "/api/admin/reports"} {
		rec := do(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	rec := do(router, http.MethodGet, "/api/admin/orders", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrdersServedNatively(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/orders", r.URL.Path)
		assert.Equal(t, "svc-key", r.Header.Get("X-API-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `{"data":[{"id":3,"status":"Shipped"}]}`)
	})
	rec := do(router, http.MethodGet, "/api/admin/orders", adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "native", rec.Header().Get("X-Store-Admin-Origin"))
	assert.True(t, strings.Contains(rec.Body.String(), `"orderStatus":2`), rec.Body.String())
}

func TestUnknownAdminRoutesAreProxied(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/reports/sales", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "svc-key", r.Header.Get("X-API-Key"))
		_, _ = io.WriteString(w, `{"data":{"total":1}}`)
	})
	rec := do(router, http.MethodGet, "/api/admin/reports/sales", adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proxy", rec.Header().Get("X-Store-Admin-Origin"))
	assert.JSONEq(t, `{"data":{"total":1}}`, rec.Body.String())
}

func TestLoginIsPublic(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("login must not reach the backend")
	})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "LOGIN_DISABLED")
}

func TestPublicSummaryRejectsUnsignedLinks(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("unsigned link reached the backend")
	})
	rec := do(router, http.MethodGet, "/api/public/order-summaries/5", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
