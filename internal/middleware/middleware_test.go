package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"store-admin-service/internal/auth"
)

func TestAdminAuth(t *testing.T) {
	token, _, err := auth.IssueAccessToken("secret", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *AuthContext
	handler := AdminAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name     string
		header   string
		expected int
	}{
		{name: "missing", header: "", expected: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", expected: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, expected: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, rec.Code)
			}
		})
	}
	if seen == nil || seen.Role != auth.RoleAdmin {
		t.Fatalf("expected admin auth context, got %+v", seen)
	}
}

func TestAdminAuthDisabledWithoutSecret(t *testing.T) {
	handler := AdminAuth("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "abc" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated id")
	}
}

func TestTelemetryLogsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Telemetry(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level for 5xx, got %s", entries[0].Level)
	}
	if entries[0].ContextMap()["status"] != int64(http.StatusBadGateway) {
		t.Fatalf("unexpected fields %v", entries[0].ContextMap())
	}
}

func TestQuantile(t *testing.T) {
	values := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := quantile(values, 0.5); got != 5 {
		t.Fatalf("p50: expected 5, got %d", got)
	}
	if got := quantile(values, 0.95); got != 10 {
		t.Fatalf("p95: expected 10, got %d", got)
	}
	if quantile(nil, 0.5) != 0 {
		t.Fatalf("empty window should be zero")
	}
}
