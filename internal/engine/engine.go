// Package engine dispatches player actions against the current puzzle run.
//
// An Engine is the single writer of one run. It is not safe for concurrent use;
// callers that share a run across goroutines must serialize access.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/document"
	"github.com/shapeflow/shapeflow/backend-go/internal/game"
	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/level"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
	"github.com/shapeflow/shapeflow/backend-go/internal/render"
)

// Engine owns the generated puzzle and the run being played on it.
type Engine struct {
	puzzle *puzzle.Puzzle
	run    game.Run

	// Selection state (backend owns this)
	selection []string

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with no run loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Commands ---

// StartGame generates level n and opens a fresh run on it.
func (e *Engine) StartGame(n int) error {
	p, err := puzzle.Generate(level.Get(n).Puzzle())
	if err != nil {
		return fmt.Errorf("start level %d: %w", n, err)
	}
	run, err := game.New(p.Config, e.now())
	if err != nil {
		return fmt.Errorf("start level %d: %w", n, err)
	}

	slog.Debug("level started", "level", p.Config.Level, "pieces", len(p.Pieces), "increment", p.Config.RotationIncrement)
	e.puzzle = p
	e.run = run
	e.selection = nil
	return nil
}

// SelectLevel replaces the current run with a fresh run on level n.
func (e *Engine) SelectLevel(n int) error {
	return e.StartGame(n)
}

// Rotate turns a piece by the level's rotation increment. It reports whether
// this action solved the puzzle.
func (e *Engine) Rotate(pieceID string) (bool, error) {
	wasComplete := e.run.Complete
	next, err := e.run.Turn(pieceID, e.now())
	if err != nil {
		return false, err
	}
	e.run = next

	solved := !wasComplete && next.Complete
	if solved {
		slog.Debug("level solved", "level", next.Level, "moves", next.MoveCount, "elapsed", next.CompletedIn)
	}
	return solved, nil
}

// Restart regenerates the current level from its seed.
func (e *Engine) Restart() error {
	if e.puzzle == nil {
		return e.Generate()
	}
	run, err := e.run.Restart(e.now())
	if err != nil {
		return fmt.Errorf("restart level %d: %w", e.run.Level, err)
	}
	e.run = run
	e.selection = nil
	return nil
}

// Advance moves to the next level and drops the current pieces. Generate must
// be called before the next Rotate.
func (e *Engine) Advance() {
	e.run = e.run.Advance(e.now())
	e.puzzle = nil
	e.selection = nil
	slog.Debug("level advanced", "level", e.run.Level)
}

// Generate builds the pieces for the run's current level.
func (e *Engine) Generate() error {
	n := e.run.Level
	if n < 1 {
		n = 1
	}
	return e.StartGame(n)
}

// SetSelection sets the selected piece IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// --- Queries ---

// Run returns the current run.
func (e *Engine) Run() game.Run {
	return e.run
}

// Puzzle returns the generated puzzle, or nil after Advance.
func (e *Engine) Puzzle() *puzzle.Puzzle {
	return e.puzzle
}

// Render compiles the current pieces to draw commands as JSON.
func (e *Engine) Render() string {
	if e.puzzle == nil {
		return "[]"
	}
	result, _ := render.DrawCommandsToJSON(render.Compile(e.puzzle.Pattern, e.run.Pieces))
	return result
}

// HitTest returns the id of the topmost piece at the given coordinates, or
// the empty string.
func (e *Engine) HitTest(x, y float64) string {
	return render.HitTest(e.run.Pieces, x, y)
}

// GetState returns the run state as JSON.
func (e *Engine) GetState() string {
	return toJSON(document.NewRunState(e.run, e.now()))
}

// GetPuzzle returns the generated puzzle document as JSON, with pieces as
// currently played.
func (e *Engine) GetPuzzle() string {
	if e.puzzle == nil {
		return "{}"
	}
	doc := document.NewPuzzleDocument(e.puzzle)
	doc.Pieces = document.NewPieceRecords(e.run.Pieces)
	return toJSON(doc)
}

// GetLevelConfig returns the parameters of level n as JSON.
func (e *Engine) GetLevelConfig(n int) string {
	return toJSON(level.Get(n))
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if len(e.selection) == 0 {
		return toJSON(geometry.Rect{})
	}
	return toJSON(render.SelectionBounds(e.run.Pieces, e.selection))
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	if e.selection == nil {
		return "[]"
	}
	return toJSON(e.selection)
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
