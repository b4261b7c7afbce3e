// Package catalog serves level parameters and the canonical puzzle of each level.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shapeflow/shapeflow/backend-go/internal/level"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
)

var ErrLevelOutOfRange = errors.New("level out of range")

// Catalog memoizes generated puzzles by level. Generation is deterministic,
// so a cached puzzle is identical to a fresh one.
type Catalog struct {
	mu      sync.RWMutex
	puzzles map[int]*puzzle.Puzzle
}

func New() *Catalog {
	return &Catalog{puzzles: make(map[int]*puzzle.Puzzle)}
}

func (c *Catalog) Level(n int) (level.Config, error) {
	if err := checkLevel(n); err != nil {
		return level.Config{}, err
	}
	return level.Get(n), nil
}

// Levels lists from..to; zero values default to 1 and from+19.
func (c *Catalog) Levels(from, to int) ([]level.Config, error) {
	if from == 0 {
		from = 1
	}
	if to == 0 {
		to = from + 19
	}
	if err := checkLevel(from); err != nil {
		return nil, err
	}
	if to < from {
		return nil, fmt.Errorf("%w: to %d before from %d", ErrLevelOutOfRange, to, from)
	}
	return level.Range(from, to), nil
}

// Puzzle returns the puzzle for level n. Callers must not modify it.
func (c *Catalog) Puzzle(n int) (*puzzle.Puzzle, error) {
	if err := checkLevel(n); err != nil {
		return nil, err
	}

	c.mu.RLock()
	p, ok := c.puzzles[n]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := puzzle.Generate(level.Get(n).Puzzle())
	if err != nil {
		return nil, fmt.Errorf("generate level %d: %w", n, err)
	}

	c.mu.Lock()
	c.puzzles[n] = p
	c.mu.Unlock()
	return p, nil
}

func checkLevel(n int) error {
	if n < 1 || n > level.MaxLevel {
		return fmt.Errorf("%w: %d", ErrLevelOutOfRange, n)
	}
	return nil
}
