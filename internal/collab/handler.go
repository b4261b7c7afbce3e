package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/document"
	"github.com/shapeflow/shapeflow/backend-go/internal/typeid"
)

// ProgressSource reports where a player left off.
type ProgressSource interface {
	LoadProgress(ctx context.Context, playerID string) (*document.Progress, error)
}

// Identity resolves websocket tokens to players.
type Identity interface {
	ValidateToken(token string) (string, error)
	DisplayName(ctx context.Context, playerID string) (string, error)
}

type Handler struct {
	hub            *Hub
	progress       ProgressSource
	identity       Identity
	originPatterns []string
}

func NewHandler(hub *Hub, progress ProgressSource, identity Identity, originPatterns []string) *Handler {
	return &Handler{hub: hub, progress: progress, identity: identity, originPatterns: originPatterns}
}

type createRunRequest struct {
	Level int `json:"level"`
}

type createRunResponse struct {
	RunID        string `json:"runId"`
	Level        int    `json:"level"`
	HighestLevel int    `json:"highestLevel"`
	URL          string `json:"url"`
}

// CreateRun handles POST /api/runs. Without a level the run starts where the
// player's saved progress left off.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	playerID := auth.PlayerIDFromContext(r.Context())

	var req createRunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	start, highest := 1, 1
	prog, err := h.progress.LoadProgress(r.Context(), playerID)
	if err != nil {
		slog.Error("load progress", "error", err, "player", playerID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if prog != nil {
		start = max(prog.CurrentLevel, 1)
		highest = max(prog.HighestLevel, start)
	}

	if req.Level != 0 {
		if req.Level < 1 || req.Level > highest {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "level is locked"})
			return
		}
		start = req.Level
	}

	runID, err := h.hub.CreateRun(r.Context(), playerID, start, highest)
	if err != nil {
		if errors.Is(err, ErrHubStopped) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
			return
		}
		slog.Error("create run", "error", err, "player", playerID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, createRunResponse{
		RunID:        runID,
		Level:        start,
		HighestLevel: highest,
		URL:          "/ws/runs/" + runID,
	})
}

// ServeWS handles /ws/runs/{runId}?token=...
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]
	if err := typeid.Validate(runID, typeid.PrefixRun); err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.identity.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	displayName, err := h.identity.DisplayName(r.Context(), userID)
	if err != nil {
		http.Error(w, "player not found", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, userID, displayName, runID, uuid.New().String())
	h.hub.Register(client)
	client.Pump(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
