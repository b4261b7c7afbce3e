// Package game is the puzzle run state machine.
//
// A Run is a value. Every transition returns the next Run and leaves the
// receiver untouched, so the single owner of a run publishes a new state by
// replacing it.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/level"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
)

// ErrNoPieces is returned when rotating a run whose pieces have not been generated.
var ErrNoPieces = errors.New("run has no pieces")

// Status is the phase of a run.
type Status string

const (
	Scrambled Status = "scrambled"
	Solved    Status = "solved"
)

// Run is the state of one level attempt.
type Run struct {
	Level       int            `json:"currentLevel"`
	Config      puzzle.Config  `json:"config"`
	Pieces      []puzzle.Piece `json:"pieces"`
	Complete    bool           `json:"isComplete"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedIn time.Duration  `json:"-"` // set on the transition to solved
	MoveCount   int            `json:"moveCount"`
}

// Start generates the puzzle for level n and opens a fresh run on it.
// Levels below 1 start level 1.
func Start(n int, now time.Time) (Run, error) {
	return New(level.Get(n).Puzzle(), now)
}

// New opens a fresh run on the puzzle generated from cfg.
func New(cfg puzzle.Config, now time.Time) (Run, error) {
	p, err := puzzle.Generate(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("generate level %d: %w", cfg.Level, err)
	}
	return Run{
		Level:     cfg.Level,
		Config:    cfg,
		Pieces:    p.Pieces,
		StartedAt: now,
	}, nil
}

// Status reports the run phase.
func (r Run) Status() Status {
	if r.Complete {
		return Solved
	}
	return Scrambled
}

// Rotate turns the piece with the given id by increment degrees.
//
// A solved run ignores the call. Otherwise the move counter always advances,
// even if no piece matches id. A piece whose rotation reaches a whole number of
// turns is moved to its correct position and stays there.
func (r Run) Rotate(id string, increment int, now time.Time) (Run, error) {
	if r.Complete {
		return r, nil
	}
	if len(r.Pieces) == 0 {
		return r, ErrNoPieces
	}

	next := r
	next.Pieces = make([]puzzle.Piece, len(r.Pieces))
	copy(next.Pieces, r.Pieces)
	next.MoveCount++

	for i := range next.Pieces {
		p := &next.Pieces[i]
		if p.ID != id {
			continue
		}
		p.CurrentRotation += increment
		if p.Solved() {
			p.Position = p.CorrectPosition
		}
		break
	}

	if allSolved(next.Pieces) {
		next.Complete = true
		next.CompletedIn = now.Sub(r.StartedAt)
	}
	return next, nil
}

// Turn rotates a piece by the run's own rotation increment.
func (r Run) Turn(id string, now time.Time) (Run, error) {
	return r.Rotate(id, r.Config.RotationIncrement, now)
}

// Restart regenerates the same puzzle and resets the counters.
func (r Run) Restart(now time.Time) (Run, error) {
	return New(r.Config, now)
}

// Advance moves to the next level and drops the pieces. The caller must
// Load the new level before rotating.
func (r Run) Advance(now time.Time) Run {
	n := r.Level + 1
	return Run{
		Level:     n,
		Config:    level.Get(n).Puzzle(),
		Pieces:    nil,
		StartedAt: now,
	}
}

// Load generates the pieces for the run's current level, replacing any it holds.
func (r Run) Load(now time.Time) (Run, error) {
	return Start(r.Level, now)
}

// SolvedCount returns how many pieces are at a whole number of turns.
func (r Run) SolvedCount() int {
	n := 0
	for _, p := range r.Pieces {
		if p.Solved() {
			n++
		}
	}
	return n
}

// Elapsed returns the completion time of a solved run, or the running time otherwise.
func (r Run) Elapsed(now time.Time) time.Duration {
	if r.Complete {
		return r.CompletedIn
	}
	return now.Sub(r.StartedAt)
}

// Piece returns the piece with the given id.
func (r Run) Piece(id string) (puzzle.Piece, bool) {
	for _, p := range r.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return puzzle.Piece{}, false
}

func allSolved(pieces []puzzle.Piece) bool {
	for _, p := range pieces {
		if !p.Solved() {
			return false
		}
	}
	return true
}
