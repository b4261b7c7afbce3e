package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/document"
	"github.com/shapeflow/shapeflow/backend-go/internal/level"
)

func TestCatalog_Puzzle(t *testing.T) {
	c := New()

	p, err := c.Puzzle(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Pieces) != 5 || p.Config.Seed != 126 {
		t.Errorf("pieces %d seed %d, want 5 and 126", len(p.Pieces), p.Config.Seed)
	}
	again, _ := c.Puzzle(3)
	if again != p {
		t.Error("second lookup regenerated the puzzle")
	}

	for _, n := range []int{0, -1, level.MaxLevel + 1} {
		if _, err := c.Puzzle(n); !errors.Is(err, ErrLevelOutOfRange) {
			t.Errorf("Puzzle(%d) err %v, want ErrLevelOutOfRange", n, err)
		}
	}
}

func TestCatalog_Levels(t *testing.T) {
	c := New()

	list, err := c.Levels(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 20 || list[0].Level != 1 || list[19].Level != 20 {
		t.Errorf("default range %d levels", len(list))
	}

	list, _ = c.Levels(95, 200)
	if len(list) != 6 || list[5].Level != level.MaxLevel {
		t.Errorf("clipped range %d levels", len(list))
	}

	if _, err := c.Levels(5, 2); !errors.Is(err, ErrLevelOutOfRange) {
		t.Errorf("reversed range err %v", err)
	}
}

func newRouter() *mux.Router {
	h := NewHandler(New())
	r := mux.NewRouter()
	r.HandleFunc("/api/levels", h.ListLevels).Methods("GET")
	r.HandleFunc("/api/levels/{level}", h.GetLevel).Methods("GET")
	r.HandleFunc("/api/puzzles/{level}", h.GetPuzzle).Methods("GET")
	return r
}

func TestHandler_GetLevel(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/levels/7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var cfg map[string]any
	json.NewDecoder(rec.Body).Decode(&cfg)
	if cfg["pieceCount"] != float64(9) || cfg["rotationIncrement"] != float64(45) || cfg["complexity"] != "medium" {
		t.Errorf("level 7 = %v", cfg)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/levels/abc", http.StatusBadRequest},
		{"/api/levels/0", http.StatusNotFound},
		{"/api/levels/101", http.StatusNotFound},
		{"/api/levels?from=x", http.StatusBadRequest},
		{"/api/levels?from=1&to=3", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("GET %s status %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}

func TestHandler_GetPuzzle(t *testing.T) {
	r := newRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/puzzles/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var doc document.PuzzleDocument
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Level != 1 || doc.Seed != 42 || len(doc.Pieces) != 3 || doc.CompleteSVG == "" {
		t.Errorf("level %d seed %d pieces %d", doc.Level, doc.Seed, len(doc.Pieces))
	}
	for _, p := range doc.Pieces {
		if p.Solved {
			t.Errorf("piece %s starts solved", p.ID)
		}
	}
}
