package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Op identifies a path drawing command.
type Op byte

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpCubic
	OpClose
)

var opLetters = [...]string{OpMove: "M", OpLine: "L", OpQuad: "Q", OpCubic: "C", OpClose: "Z"}

// String returns the SVG / Canvas2D letter for the op.
func (o Op) String() string {
	if int(o) < len(opLetters) {
		return opLetters[o]
	}
	return "?"
}

// Command is one segment of a path. Only the points the op needs are set:
// Move/Line use To, Quad uses C1 and To, Cubic uses C1, C2 and To, Close uses none.
type Command struct {
	Op Op
	C1 Point
	C2 Point
	To Point
}

// points returns the coordinates the command carries, in drawing order.
func (c Command) points() []Point {
	switch c.Op {
	case OpMove, OpLine:
		return []Point{c.To}
	case OpQuad:
		return []Point{c.C1, c.To}
	case OpCubic:
		return []Point{c.C1, c.C2, c.To}
	default:
		return nil
	}
}

// Path is an ordered sequence of drawing commands. The zero value is an empty path.
type Path struct {
	cmds []Command
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{cmds: make([]Command, 0, 16)}
}

// MoveTo starts a new subpath at p.
func (p *Path) MoveTo(pt Point) *Path {
	p.cmds = append(p.cmds, Command{Op: OpMove, To: pt})
	return p
}

// LineTo draws a straight segment to pt.
func (p *Path) LineTo(pt Point) *Path {
	p.cmds = append(p.cmds, Command{Op: OpLine, To: pt})
	return p
}

// QuadTo draws a quadratic Bezier curve through control ctrl to pt.
func (p *Path) QuadTo(ctrl, pt Point) *Path {
	p.cmds = append(p.cmds, Command{Op: OpQuad, C1: ctrl, To: pt})
	return p
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1, c2, pt Point) *Path {
	p.cmds = append(p.cmds, Command{Op: OpCubic, C1: c1, C2: c2, To: pt})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.cmds = append(p.cmds, Command{Op: OpClose})
	return p
}

// Commands returns a copy of the path's commands.
func (p Path) Commands() []Command {
	out := make([]Command, len(p.cmds))
	copy(out, p.cmds)
	return out
}

// Len returns the number of commands.
func (p Path) Len() int {
	return len(p.cmds)
}

// IsClosed reports whether the path is a single well-formed closed region:
// it starts with a move and ends with a close.
func (p Path) IsClosed() bool {
	return len(p.cmds) >= 2 && p.cmds[0].Op == OpMove && p.cmds[len(p.cmds)-1].Op == OpClose
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Matrix2D) Path {
	out := Path{cmds: make([]Command, len(p.cmds))}
	for i, c := range p.cmds {
		t := Command{Op: c.Op}
		switch c.Op {
		case OpCubic:
			t.C2 = m.TransformPoint(c.C2)
			fallthrough
		case OpQuad:
			t.C1 = m.TransformPoint(c.C1)
			fallthrough
		case OpMove, OpLine:
			t.To = m.TransformPoint(c.To)
		}
		out.cmds[i] = t
	}
	return out
}

// Bounds computes the axis-aligned bounding box of every on-curve and control point.
func (p Path) Bounds() Rect {
	var minX, minY, maxX, maxY float64
	first := true

	for _, c := range p.cmds {
		for _, pt := range c.points() {
			if first {
				minX, maxX = pt.X, pt.X
				minY, maxY = pt.Y, pt.Y
				first = false
				continue
			}
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
	}

	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SVG serializes the path as the value of an SVG "d" attribute.
func (p Path) SVG() string {
	var b strings.Builder
	for i, c := range p.cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Op.String())
		for _, pt := range c.points() {
			b.WriteByte(' ')
			b.WriteString(FormatNumber(pt.X))
			b.WriteByte(' ')
			b.WriteString(FormatNumber(pt.Y))
		}
	}
	return b.String()
}

// Canvas returns the path in Canvas2D command form:
// ["M", x, y], ["L", x, y], ["Q", cx, cy, x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
func (p Path) Canvas() []CanvasCommand {
	out := make([]CanvasCommand, len(p.cmds))
	for i, c := range p.cmds {
		cmd := CanvasCommand{c.Op.String()}
		for _, pt := range c.points() {
			cmd = append(cmd, pt.X, pt.Y)
		}
		out[i] = cmd
	}
	return out
}

// MarshalJSON encodes the path in Canvas2D command form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Canvas())
}

// UnmarshalJSON decodes the Canvas2D command form produced by MarshalJSON.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cmds := make([]Command, 0, len(raw))
	for i, entry := range raw {
		if len(entry) == 0 {
			return fmt.Errorf("path command %d: empty", i)
		}
		var letter string
		if err := json.Unmarshal(entry[0], &letter); err != nil {
			return fmt.Errorf("path command %d: %w", i, err)
		}
		nums := make([]float64, len(entry)-1)
		for j := range nums {
			if err := json.Unmarshal(entry[j+1], &nums[j]); err != nil {
				return fmt.Errorf("path command %d: %w", i, err)
			}
		}
		cmd, err := commandFromCanvas(letter, nums)
		if err != nil {
			return fmt.Errorf("path command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}

	p.cmds = cmds
	return nil
}

func commandFromCanvas(letter string, n []float64) (Command, error) {
	want := map[string]int{"M": 2, "L": 2, "Q": 4, "C": 6, "Z": 0}
	count, ok := want[letter]
	if !ok {
		return Command{}, fmt.Errorf("unknown op %q", letter)
	}
	if len(n) != count {
		return Command{}, fmt.Errorf("op %s takes %d numbers, got %d", letter, count, len(n))
	}

	switch letter {
	case "M":
		return Command{Op: OpMove, To: Pt(n[0], n[1])}, nil
	case "L":
		return Command{Op: OpLine, To: Pt(n[0], n[1])}, nil
	case "Q":
		return Command{Op: OpQuad, C1: Pt(n[0], n[1]), To: Pt(n[2], n[3])}, nil
	case "C":
		return Command{Op: OpCubic, C1: Pt(n[0], n[1]), C2: Pt(n[2], n[3]), To: Pt(n[4], n[5])}, nil
	default:
		return Command{Op: OpClose}, nil
	}
}

// CanvasCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type CanvasCommand []interface{}

// FormatNumber renders a coordinate with at most three decimals and no trailing zeros.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
