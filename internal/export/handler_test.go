package export

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/catalog"
)

func newRouter() *mux.Router {
	h := NewHandler(catalog.New())
	r := mux.NewRouter()
	r.HandleFunc("/export/puzzles/{level:[0-9]+}.svg", h.ExportPuzzle).Methods("GET")
	r.HandleFunc("/export/puzzles/{level:[0-9]+}/pieces/{pieceId}.svg", h.ExportPiece).Methods("GET")
	return r
}

func TestExportPuzzle(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/puzzles/2.svg", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "level-2.svg") {
		t.Errorf("disposition %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<svg viewBox="0 0 400 400"`) || !strings.HasSuffix(body, "</svg>") {
		t.Errorf("body %.60q", body)
	}
}

func TestExportPiece(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/puzzles/1/pieces/piece-2.svg", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<clipPath id="clip-piece-2">`) {
		t.Error("missing clip path")
	}
	if strings.Contains(body, "rotate(") {
		t.Error("home-position export carries a rotation")
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/export/puzzles/1/pieces/piece-9.svg", http.StatusNotFound},
		{"/export/puzzles/0.svg", http.StatusNotFound},
		{"/export/puzzles/500/pieces/piece-0.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("GET %s status %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}
