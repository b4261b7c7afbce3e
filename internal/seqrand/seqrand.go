// Package seqrand is the deterministic sequence generator behind puzzle generation.
//
// A Sequence is an immutable value: every draw returns the produced value together
// with the successor Sequence. The update rule is a small linear congruential
// generator whose exact constants are part of the reproducibility contract: a given
// seed must produce the same puzzle on every platform, forever.
package seqrand

import "math"

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// Sequence is the state of the generator between draws.
type Sequence struct {
	state int64
}

// New returns the sequence for seed.
func New(seed int64) Sequence {
	return Sequence{state: seed}
}

// State returns the raw counter.
func (s Sequence) State() int64 {
	return s.state
}

// Next returns a float in [0, 1) and the successor sequence.
func (s Sequence) Next() (float64, Sequence) {
	next := (s.state*multiplier + increment) % modulus
	if next < 0 {
		next += modulus
	}
	return float64(next) / modulus, Sequence{state: next}
}

// Int returns an integer in [min, max] inclusive.
func (s Sequence) Int(min, max int) (int, Sequence) {
	v, s := s.Next()
	return int(math.Floor(v*float64(max-min+1))) + min, s
}

// Float returns a float in [min, max).
func (s Sequence) Float(min, max float64) (float64, Sequence) {
	v, s := s.Next()
	return v*(max-min) + min, s
}

// Cursor threads a Sequence through one generation call. It is owned by exactly
// one caller and is not safe for concurrent use.
type Cursor struct {
	seq   Sequence
	draws int
}

// NewCursor starts a cursor at seed.
func NewCursor(seed int64) *Cursor {
	return &Cursor{seq: New(seed)}
}

// Next draws a float in [0, 1).
func (c *Cursor) Next() float64 {
	var v float64
	v, c.seq = c.seq.Next()
	c.draws++
	return v
}

// Int draws an integer in [min, max] inclusive.
func (c *Cursor) Int(min, max int) int {
	var v int
	v, c.seq = c.seq.Int(min, max)
	c.draws++
	return v
}

// Float draws a float in [min, max).
func (c *Cursor) Float(min, max float64) float64 {
	var v float64
	v, c.seq = c.seq.Float(min, max)
	c.draws++
	return v
}

// Sequence returns the current sequence value.
func (c *Cursor) Sequence() Sequence {
	return c.seq
}

// Draws reports how many values the cursor has produced.
func (c *Cursor) Draws() int {
	return c.draws
}
