package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/db"
	"github.com/shapeflow/shapeflow/backend-go/internal/typeid"
)

const (
	maxUploadSize = 2 << 20 // 2MB
	maxAvatarSide = 1024
)

// UploadResponse is returned from the avatar endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Handler stores player avatars on disk and serves them back.
type Handler struct {
	dir   string
	store db.Store
}

func NewHandler(dir string, store db.Store) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, store: store}
}

// UploadAvatar handles POST /api/avatar (multipart form with a "file" field).
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	playerID := auth.PlayerIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large (max 2MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		writeError(w, http.StatusBadRequest, "only PNG and JPEG images are supported")
		return
	}

	img, _, err := image.Decode(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image")
		return
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxAvatarSide || bounds.Dy() > maxAvatarSide {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("avatar larger than %dx%d", maxAvatarSide, maxAvatarSide))
		return
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	if err := h.writePNG(filename, img); err != nil {
		slog.Error("save avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	url := "/assets/" + filename
	if err := h.store.UpdatePlayerAvatar(r.Context(), playerID, url); err != nil {
		h.Delete(assetID)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		slog.Error("update avatar", "error", err, "player", playerID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		ID:     assetID,
		URL:    url,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	})
}

func (h *Handler) writePNG(filename string, img image.Image) error {
	path := filepath.Join(h.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// asset ids are unique, so files never change
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes a stored asset.
func (h *Handler) Delete(assetID string) error {
	if err := os.Remove(filepath.Join(h.dir, assetID+".png")); err != nil {
		return fmt.Errorf("asset not found: %s", assetID)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
