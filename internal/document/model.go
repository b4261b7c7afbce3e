// Package document defines the JSON records exchanged with clients and the
// persistence collaborator.
package document

import (
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/game"
	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/level"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
	"github.com/shapeflow/shapeflow/backend-go/internal/render"
)

type PuzzleDocument struct {
	Level             int           `json:"level"`
	PieceCount        int           `json:"pieceCount"`
	RotationIncrement int           `json:"rotationIncrement"`
	Complexity        level.Tier    `json:"complexity"`
	Seed              int64         `json:"seed"`
	Family            string        `json:"family"`
	Strategy          string        `json:"strategy"`
	Canvas            geometry.Size `json:"canvas"`
	Palette           []string      `json:"palette"`
	Pattern           string        `json:"pattern"`
	CompleteSVG       string        `json:"completeSvg"`
	Pieces            []PieceRecord `json:"pieces"`
}

type PieceRecord struct {
	ID              string         `json:"id"`
	SVGPath         string         `json:"svgPath"`
	Path            geometry.Path  `json:"path"`
	CurrentRotation int            `json:"currentRotation"`
	CorrectRotation int            `json:"correctRotation"`
	Position        geometry.Point `json:"position"`
	CorrectPosition geometry.Point `json:"correctPosition"`
	Color           string         `json:"color"`
	Connections     []string       `json:"connections"`
	Solved          bool           `json:"solved"`
	Rotation        int            `json:"displayRotation"`
}

// RunState is a snapshot of a run. Times are in milliseconds; CompletedAt is
// the elapsed time to solve and stays null until then.
type RunState struct {
	CurrentLevel      int           `json:"currentLevel"`
	RotationIncrement int           `json:"rotationIncrement"`
	Pieces            []PieceRecord `json:"pieces"`
	IsComplete        bool          `json:"isComplete"`
	Status            game.Status   `json:"status"`
	StartedAt         int64         `json:"startedAt"`
	CompletedAt       *int64        `json:"completedAt"`
	ElapsedMS         int64         `json:"elapsed"`
	MoveCount         int           `json:"moveCount"`
	SolvedCount       int           `json:"solvedCount"`
	TotalPieces       int           `json:"totalPieces"`
}

type Progress struct {
	UserID           string `json:"userId"`
	CurrentLevel     int    `json:"currentLevel"`
	HighestLevel     int    `json:"highestLevel"`
	TotalCompletions int    `json:"totalCompletions"`
	BestTime         int64  `json:"bestTime"`
	SoundEnabled     bool   `json:"soundEnabled"`
}

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	Score          int    `json:"score"`
	CompletionTime int64  `json:"completionTime"`
}

type UserProfile struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Karma    int    `json:"karma"`
}

type Achievement struct {
	ID        string `json:"id"`
	Level     int    `json:"level"`
	Time      int64  `json:"time"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// Default profile values for players without an account.
const (
	DefaultUsername = "Player"
	DefaultAvatar   = "/default-avatar.png"
)

// NewPuzzleDocument builds the client record for a generated puzzle.
func NewPuzzleDocument(p *puzzle.Puzzle) *PuzzleDocument {
	return &PuzzleDocument{
		Level:             p.Config.Level,
		PieceCount:        p.Config.PieceCount,
		RotationIncrement: p.Config.RotationIncrement,
		Complexity:        level.Get(p.Config.Level).Tier,
		Seed:              p.Config.Seed,
		Family:            p.Family.String(),
		Strategy:          p.Strategy.String(),
		Canvas:            p.Canvas,
		Palette:           p.Palette,
		Pattern:           render.PatternMarkup(p.Pattern),
		CompleteSVG:       render.CompleteSVG(p.Pattern),
		Pieces:            NewPieceRecords(p.Pieces),
	}
}

// NewPieceRecords converts pieces, preserving order.
func NewPieceRecords(pieces []puzzle.Piece) []PieceRecord {
	out := make([]PieceRecord, len(pieces))
	for i, p := range pieces {
		conns := p.Connections
		if conns == nil {
			conns = []string{}
		}
		out[i] = PieceRecord{
			ID:              p.ID,
			SVGPath:         p.Boundary.SVG(),
			Path:            p.Boundary,
			CurrentRotation: p.CurrentRotation,
			CorrectRotation: p.CorrectRotation,
			Position:        p.Position,
			CorrectPosition: p.CorrectPosition,
			Color:           p.Color,
			Connections:     conns,
			Solved:          p.Solved(),
			Rotation:        render.RotationLabel(p),
		}
	}
	return out
}

// NewRunState snapshots a run as of now.
func NewRunState(r game.Run, now time.Time) *RunState {
	s := &RunState{
		CurrentLevel:      r.Level,
		RotationIncrement: r.Config.RotationIncrement,
		Pieces:            NewPieceRecords(r.Pieces),
		IsComplete:        r.Complete,
		Status:            r.Status(),
		StartedAt:         r.StartedAt.UnixMilli(),
		ElapsedMS:         r.Elapsed(now).Milliseconds(),
		MoveCount:         r.MoveCount,
		SolvedCount:       r.SolvedCount(),
		TotalPieces:       len(r.Pieces),
	}
	if r.Complete {
		ms := r.CompletedIn.Milliseconds()
		s.CompletedAt = &ms
	}
	return s
}
