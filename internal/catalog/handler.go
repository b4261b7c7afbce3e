package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/document"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

// GetLevel handles GET /api/levels/{level}.
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	n, ok := LevelVar(w, r)
	if !ok {
		return
	}
	cfg, err := h.catalog.Level(n)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ListLevels handles GET /api/levels?from=&to=.
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err1 := optionalInt(q.Get("from"))
	to, err2 := optionalInt(q.Get("to"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid range"})
		return
	}

	list, err := h.catalog.Levels(from, to)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPuzzle handles GET /api/puzzles/{level}.
func (h *Handler) GetPuzzle(w http.ResponseWriter, r *http.Request) {
	n, ok := LevelVar(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Puzzle(n)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document.NewPuzzleDocument(p))
}

// LevelVar parses the {level} path variable, answering 400 when it is not a number.
func LevelVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)["level"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid level"})
		return 0, false
	}
	return n, true
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrLevelOutOfRange) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	slog.Error("catalog error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
