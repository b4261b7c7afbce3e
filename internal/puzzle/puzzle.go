// Package puzzle assembles a playable puzzle from a synthesized pattern and a
// canvas decomposition, scrambling every piece's rotation and position.
package puzzle

import (
	"errors"
	"fmt"
	"math"

	"github.com/shapeflow/shapeflow/backend-go/internal/decompose"
	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/seqrand"
	"github.com/shapeflow/shapeflow/backend-go/internal/shape"
)

// ErrInvalidConfig is returned when a Config violates a generation precondition.
var ErrInvalidConfig = errors.New("invalid puzzle config")

// Canvas is the fixed coordinate space every puzzle is generated in.
var Canvas = geometry.Size{Width: 400, Height: 400}

// Margin keeps scattered pieces fully visible.
const Margin = 80.0

const (
	minScatter = 5.0
	maxScatter = 30.0
)

// Config holds the generation parameters of one puzzle.
type Config struct {
	Level             int   `json:"level"`
	PieceCount        int   `json:"pieceCount"`
	RotationIncrement int   `json:"rotationIncrement"`
	Seed              int64 `json:"seed"`
}

// Validate reports whether c can be generated.
func (c Config) Validate() error {
	if c.PieceCount < 1 {
		return fmt.Errorf("%w: piece count %d must be at least 1", ErrInvalidConfig, c.PieceCount)
	}
	if c.RotationIncrement <= 0 || 360%c.RotationIncrement != 0 {
		return fmt.Errorf("%w: rotation increment %d must be a positive divisor of 360", ErrInvalidConfig, c.RotationIncrement)
	}
	if c.Steps() < 2 {
		return fmt.Errorf("%w: rotation increment %d leaves no scrambled orientation", ErrInvalidConfig, c.RotationIncrement)
	}
	return nil
}

// Steps is the number of rotate actions in a full turn.
func (c Config) Steps() int {
	return 360 / c.RotationIncrement
}

// Piece is one rotatable region of the puzzle.
type Piece struct {
	ID              string         `json:"id"`
	Boundary        geometry.Path  `json:"boundary"`
	CurrentRotation int            `json:"currentRotation"`
	CorrectRotation int            `json:"correctRotation"`
	Position        geometry.Point `json:"position"`
	CorrectPosition geometry.Point `json:"correctPosition"`
	Color           string         `json:"color"`
	Connections     []string       `json:"connections"`
}

// Solved reports whether the piece's rotation is a whole number of turns.
func (p Piece) Solved() bool {
	return p.CurrentRotation%360 == 0
}

// Puzzle is the output of one generation call.
type Puzzle struct {
	Config   Config             `json:"config"`
	Pattern  shape.Pattern      `json:"-"`
	Family   shape.Family       `json:"family"`
	Strategy decompose.Strategy `json:"strategy"`
	Palette  shape.Palette      `json:"palette"`
	Pieces   []Piece            `json:"pieces"`
	Canvas   geometry.Size      `json:"canvas"`
}

// Generate builds the puzzle for cfg. Identical configs yield identical puzzles.
func Generate(cfg Config) (*Puzzle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cur := seqrand.NewCursor(cfg.Seed)
	pattern := shape.Synthesize(cur, Canvas)
	palette := shape.DrawPalette(cur)
	regions := decompose.Decompose(cfg.PieceCount, cur, Canvas)

	steps := cfg.Steps()
	pieces := make([]Piece, len(regions))
	for i, r := range regions {
		step := cur.Int(1, steps-1)
		angle := cur.Float(0, 2*math.Pi)
		dist := cur.Float(minScatter, maxScatter)

		pieces[i] = Piece{
			ID:              PieceID(i),
			Boundary:        r.Boundary,
			CurrentRotation: step * cfg.RotationIncrement,
			Position:        r.Home.Polar(angle, dist).Clamp(Margin, Canvas.Width-Margin),
			CorrectPosition: r.Home,
			Color:           palette.At(i),
			Connections:     []string{},
		}
	}

	return &Puzzle{
		Config:   cfg,
		Pattern:  pattern,
		Family:   pattern.Family,
		Strategy: decompose.StrategyFor(cfg.PieceCount),
		Palette:  palette,
		Pieces:   pieces,
		Canvas:   Canvas,
	}, nil
}

// PieceID returns the stable id of the i-th piece.
func PieceID(i int) string {
	return fmt.Sprintf("piece-%d", i)
}

// Piece returns the piece with the given id.
func (p *Puzzle) Piece(id string) (Piece, bool) {
	for _, pc := range p.Pieces {
		if pc.ID == id {
			return pc, true
		}
	}
	return Piece{}, false
}
