// Package decompose cuts the canvas into piece regions.
//
// The strategy is chosen from the piece count alone. Each strategy draws from the
// cursor in a fixed order, so an identical (count, seed) pair always yields the
// same regions.
package decompose

import (
	"fmt"
	"math"

	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/seqrand"
)

// Strategy is a decomposition algorithm.
type Strategy int

const (
	Quadrant Strategy = iota
	Radial
	Grid
)

func (s Strategy) String() string {
	switch s {
	case Quadrant:
		return "quadrant"
	case Radial:
		return "radial"
	case Grid:
		return "grid"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	maxQuadrantPieces = 4
	maxRadialPieces   = 8
)

// StrategyFor returns the strategy used for count pieces.
func StrategyFor(count int) Strategy {
	switch {
	case count <= maxQuadrantPieces:
		return Quadrant
	case count <= maxRadialPieces:
		return Radial
	default:
		return Grid
	}
}

// Region is one piece's closed boundary and its home centroid.
type Region struct {
	Boundary geometry.Path
	Home     geometry.Point
}

// Decompose splits a canvas into exactly count regions. count must be >= 1.
func Decompose(count int, cur *seqrand.Cursor, canvas geometry.Size) []Region {
	switch StrategyFor(count) {
	case Quadrant:
		return quadrants(count, cur, canvas)
	case Radial:
		return radial(count, cur, canvas)
	default:
		return grid(count, cur, canvas)
	}
}

// quadrants produces up to four corner regions whose inner edges are curves.
// A shared curve variation pulls every inner edge; each edge endpoint gets its own jitter.
func quadrants(count int, cur *seqrand.Cursor, canvas geometry.Size) []Region {
	w, h := canvas.Width, canvas.Height
	c := canvas.Center()
	cv := cur.Float(30, 60)

	edge := func() float64 { return cur.Float(0, 30) }
	jitter := func() float64 { return cur.Float(-20, 20) }

	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		p := geometry.NewPath()
		var home geometry.Point

		switch i {
		case 0: // top-left
			p.MoveTo(geometry.Pt(0, 0))
			ctrl := geometry.Pt(c.X-cv, edge())
			p.QuadTo(ctrl, geometry.Pt(c.X+jitter(), c.Y-cv))
			ctrl = geometry.Pt(edge(), c.Y-cv)
			p.QuadTo(ctrl, geometry.Pt(0, c.Y+jitter()))
			home = geometry.Pt(c.X/2, c.Y/2)
		case 1: // top-right
			p.MoveTo(geometry.Pt(c.X+jitter(), c.Y-cv))
			p.QuadTo(geometry.Pt(c.X+cv, edge()), geometry.Pt(w, 0))
			p.LineTo(geometry.Pt(w, c.Y+jitter()))
			ctrl := geometry.Pt(w-edge(), c.Y-cv)
			p.QuadTo(ctrl, geometry.Pt(c.X+jitter(), c.Y-cv))
			home = geometry.Pt(c.X+c.X/2, c.Y/2)
		case 2: // bottom-left
			p.MoveTo(geometry.Pt(0, c.Y+jitter()))
			ctrl := geometry.Pt(edge(), c.Y+cv)
			p.QuadTo(ctrl, geometry.Pt(c.X+jitter(), c.Y+cv))
			ctrl = geometry.Pt(c.X-cv, h-edge())
			p.QuadTo(ctrl, geometry.Pt(0, h))
			home = geometry.Pt(c.X/2, c.Y+c.Y/2)
		default: // bottom-right
			p.MoveTo(geometry.Pt(c.X+jitter(), c.Y+cv))
			ctrl := geometry.Pt(w-edge(), c.Y+cv)
			p.QuadTo(ctrl, geometry.Pt(w, c.Y+jitter()))
			p.LineTo(geometry.Pt(w, h))
			ctrl = geometry.Pt(c.X+cv, h-edge())
			p.QuadTo(ctrl, geometry.Pt(c.X+jitter(), c.Y+cv))
			home = geometry.Pt(c.X+c.X/2, c.Y+c.Y/2)
		}
		p.Close()

		regions = append(regions, Region{Boundary: *p, Home: home})
	}
	return regions
}

// radial produces count equal wedges around the canvas center.
func radial(count int, cur *seqrand.Cursor, canvas geometry.Size) []Region {
	c := canvas.Center()
	base := math.Min(canvas.Width, canvas.Height) * 0.35

	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) / float64(count) * 2 * math.Pi
		end := float64(i+1) / float64(count) * 2 * math.Pi
		mid := (start + end) / 2

		v1 := cur.Float(0.8, 1.2)
		v2 := cur.Float(0.8, 1.2)
		ctrl := c.Polar(mid, base*cur.Float(0.6, 0.9))

		p := geometry.NewPath().
			MoveTo(c).
			LineTo(c.Polar(start, base*v1)).
			QuadTo(ctrl, c.Polar(end, base*v2)).
			Close()

		regions = append(regions, Region{Boundary: *p, Home: c.Polar(mid, base*0.6)})
	}
	return regions
}

// grid tiles the canvas with ceil(sqrt(count)) columns and replaces each cell
// with an organic hexagon-like outline.
func grid(count int, cur *seqrand.Cursor, canvas geometry.Size) []Region {
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := int(math.Ceil(float64(count) / float64(cols)))
	cw := canvas.Width / float64(cols)
	ch := canvas.Height / float64(rows)

	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		col, row := i%cols, i/cols
		cell := geometry.Rect{X: float64(col) * cw, Y: float64(row) * ch, Width: cw, Height: ch}
		regions = append(regions, Region{
			Boundary: organicCell(cell, cur),
			Home:     cell.Center(),
		})
	}
	return regions
}

const cellPoints = 6

func organicCell(cell geometry.Rect, cur *seqrand.Cursor) geometry.Path {
	c := cell.Center()
	rx, ry := cell.Width/2, cell.Height/2

	points := make([]geometry.Point, cellPoints)
	for i := range points {
		angle := float64(i) / cellPoints * 2 * math.Pi
		v := cur.Float(0.6, 1.0)
		points[i] = geometry.Pt(c.X+math.Cos(angle)*rx*v, c.Y+math.Sin(angle)*ry*v)
	}

	p := geometry.NewPath().MoveTo(points[0])
	for i := 0; i < cellPoints; i++ {
		from, next := points[i], points[(i+1)%cellPoints]
		dist := cur.Float(15, 30)
		dir := math.Atan2(next.Y-from.Y, next.X-from.X) + cur.Float(-0.5, 0.5)
		p.QuadTo(from.Mid(next).Polar(dir, dist), next)
	}
	p.Close()
	return *p
}
