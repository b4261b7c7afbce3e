package collab

import (
	"encoding/json"
	"fmt"

	"github.com/shapeflow/shapeflow/backend-go/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	RunID    string          `json:"runId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Presence
	TypePresenceJoin  = "presence.join"
	TypePresenceLeave = "presence.leave"

	// Player actions, owner only
	TypeRotate  = "action.rotate"
	TypeRestart = "action.restart"
	TypeAdvance = "action.advance"
	TypeSelect  = "action.select"

	// State
	TypeStateSync   = "state.sync"
	TypeStateUpdate = "state.update"
	TypeRunComplete = "run.complete"
)

// Roles a client can hold in a room.
const (
	RoleOwner     = "owner"
	RoleSpectator = "spectator"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Role     string `json:"role"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PresencePayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

type RotatePayload struct {
	PieceID string `json:"pieceId"`
}

type SelectPayload struct {
	Level int `json:"level"`
}

// StatePayload carries the run state. Puzzle is set on state.sync and whenever
// the action replaced the pieces.
type StatePayload struct {
	RunID        string                   `json:"runId"`
	OwnerID      string                   `json:"ownerId"`
	Action       string                   `json:"action,omitempty"`
	HighestLevel int                      `json:"highestLevel"`
	State        *document.RunState       `json:"state"`
	Puzzle       *document.PuzzleDocument `json:"puzzle,omitempty"`
}

type CompletePayload struct {
	Level          int   `json:"level"`
	CompletionTime int64 `json:"completionTime"` // ms
	Moves          int   `json:"moves"`
}

func newMessage(msgType string, payload any) *Message {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			msg.Payload = data
		}
	}
	return msg
}

func decodePayload(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}
