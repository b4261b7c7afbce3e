// Package level maps level numbers to generation parameters.
package level

import "github.com/shapeflow/shapeflow/backend-go/internal/puzzle"

// Tier is a coarse difficulty label.
type Tier string

const (
	Simple  Tier = "simple"
	Medium  Tier = "medium"
	Complex Tier = "complex"
)

// MaxLevel is the highest level offered for selection. Get does not enforce it.
const MaxLevel = 100

// SeedFactor derives a level's seed. Changing it changes every level's puzzle.
const SeedFactor = 42

// Config is the parameter set of one level.
type Config struct {
	Level             int  `json:"level"`
	PieceCount        int  `json:"pieceCount"`
	RotationIncrement int  `json:"rotationIncrement"`
	Tier              Tier `json:"complexity"`
}

var table = []Config{
	{1, 3, 90, Simple},
	{2, 4, 90, Simple},
	{3, 5, 90, Simple},
	{4, 6, 90, Simple},
	{5, 7, 45, Medium},
	{6, 8, 45, Medium},
	{7, 9, 45, Medium},
	{8, 10, 45, Medium},
	{9, 11, 45, Medium},
	{10, 12, 30, Complex},
	{11, 13, 30, Complex},
	{12, 14, 30, Complex},
	{13, 15, 30, Complex},
	{14, 16, 30, Complex},
	{15, 17, 30, Complex},
}

// Get returns the parameters for level n. Levels past the table extrapolate one
// extra piece per level; levels below 1 get the first level's parameters.
func Get(n int) Config {
	if n < 1 {
		return table[0]
	}
	if n <= len(table) {
		return table[n-1]
	}
	last := table[len(table)-1]
	return Config{
		Level:             n,
		PieceCount:        last.PieceCount + (n - last.Level),
		RotationIncrement: last.RotationIncrement,
		Tier:              Complex,
	}
}

// Seed returns the generation seed for level n.
func Seed(n int) int64 {
	return int64(n) * SeedFactor
}

// Puzzle returns the generation config for level n.
func (c Config) Puzzle() puzzle.Config {
	return puzzle.Config{
		Level:             c.Level,
		PieceCount:        c.PieceCount,
		RotationIncrement: c.RotationIncrement,
		Seed:              Seed(c.Level),
	}
}

// Range returns the configs for levels from..to inclusive, clipped to [1, MaxLevel].
func Range(from, to int) []Config {
	if from < 1 {
		from = 1
	}
	if to > MaxLevel {
		to = MaxLevel
	}
	var out []Config
	for n := from; n <= to; n++ {
		out = append(out, Get(n))
	}
	return out
}
