package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shapeflow/shapeflow/backend-go/internal/asset"
	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/catalog"
	"github.com/shapeflow/shapeflow/backend-go/internal/collab"
	"github.com/shapeflow/shapeflow/backend-go/internal/db"
	"github.com/shapeflow/shapeflow/backend-go/internal/progress"
)

const testOrigin = "http://localhost:5173"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := db.NewMemory()
	authService := auth.NewService(store, "test-secret")
	progressService := progress.NewService(store, 5)
	hub := collab.NewHub(progressService)
	t.Cleanup(hub.Stop)

	return newRouter(routes{
		auth:     authService,
		progress: progressService,
		collab:   collab.NewHandler(hub, progressService, authService, []string{"localhost:5173"}),
		catalog:  catalog.New(),
		assets:   asset.NewHandler(t.TempDir(), store),
		origins:  []string{testOrigin},
		limit:    10,
	})
}

func TestRouter_Preflight(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{
		"/api/save-progress",
		"/api/leaderboard",
		"/api/runs",
		"/auth/login",
	} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", testOrigin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status %d, want %d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
				t.Errorf("allow-origin %q, want %q", got, testOrigin)
			}
		})
	}
}

func TestRouter_CORSOnResponses(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/leaderboard", http.StatusOK},
		{http.MethodPost, "/api/save-progress", http.StatusUnauthorized},
		{http.MethodGet, "/health", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set("Origin", testOrigin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s %s status %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
			t.Errorf("%s %s allow-origin %q, want %q", tt.method, tt.path, got, testOrigin)
		}
	}
}

func TestRouter_PreflightForeignOrigin(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/save-progress", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin %q, want empty", got)
	}
}
