package progress

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/document"
)

type Handler struct {
	service      *Service
	defaultLimit int
}

func NewHandler(service *Service, defaultLimit int) *Handler {
	return &Handler{service: service, defaultLimit: defaultLimit}
}

type saveRequest struct {
	CurrentLevel     int   `json:"currentLevel"`
	HighestLevel     int   `json:"highestLevel"`
	TotalCompletions int   `json:"totalCompletions"`
	BestTime         int64 `json:"bestTime"`
	SoundEnabled     bool  `json:"soundEnabled"`
}

type leaderboardRequest struct {
	Score int   `json:"score"`
	Time  int64 `json:"time"`
}

type shareRequest struct {
	Level int   `json:"level"`
	Time  int64 `json:"time"`
}

// UserProfile answers anonymously with the default profile.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.UserProfile(r.Context(), auth.PlayerIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p := document.Progress{
		UserID:           auth.PlayerIDFromContext(r.Context()),
		CurrentLevel:     req.CurrentLevel,
		HighestLevel:     req.HighestLevel,
		TotalCompletions: req.TotalCompletions,
		BestTime:         req.BestTime,
		SoundEnabled:     req.SoundEnabled,
	}
	if err := h.service.SaveProgress(r.Context(), p); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// LoadProgress writes null when nothing was saved yet.
func (h *Handler) LoadProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.LoadProgress(r.Context(), auth.PlayerIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.service.UpdateLeaderboard(r.Context(), auth.PlayerIDFromContext(r.Context()), req.Score, req.Time)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) ShareAchievement(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	a, err := h.service.ShareAchievement(r.Context(), auth.PlayerIDFromContext(r.Context()), req.Level, req.Time)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Achievements(r.Context(), auth.PlayerIDFromContext(r.Context()), 0)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "player not found"})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
