// Package export serves puzzles as standalone SVG downloads.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/catalog"
	"github.com/shapeflow/shapeflow/backend-go/internal/render"
)

type Handler struct {
	catalog *catalog.Catalog
}

func NewHandler(c *catalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

// ExportPuzzle handles GET /export/puzzles/{level}.svg.
func (h *Handler) ExportPuzzle(w http.ResponseWriter, r *http.Request) {
	n, ok := catalog.LevelVar(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Puzzle(n)
	if err != nil {
		handleError(w, err)
		return
	}

	writeSVG(w, fmt.Sprintf("level-%d.svg", n), render.CompleteSVG(p.Pattern))
}

// ExportPiece handles GET /export/puzzles/{level}/pieces/{pieceId}.svg and
// renders the piece at its home position.
func (h *Handler) ExportPiece(w http.ResponseWriter, r *http.Request) {
	n, ok := catalog.LevelVar(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Puzzle(n)
	if err != nil {
		handleError(w, err)
		return
	}

	pieceID := mux.Vars(r)["pieceId"]
	piece, found := p.Piece(pieceID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "piece not found"})
		return
	}

	writeSVG(w, fmt.Sprintf("level-%d-%s.svg", n, pieceID), render.PieceSVG(p.Pattern, piece, false))
}

func writeSVG(w http.ResponseWriter, filename, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(svg)); err != nil {
		slog.Debug("write svg", "error", err)
	}
}

func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrLevelOutOfRange) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	slog.Error("export failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
