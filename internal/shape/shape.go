// Package shape synthesizes the abstract background image a puzzle is cut from.
//
// A Pattern is fully determined by the cursor it is drawn from: the family, the
// palette and every family parameter come from the same deterministic stream.
// Geometry is kept structured; serialization to markup happens in package render.
package shape

import (
	"fmt"

	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/seqrand"
)

// Family is one of the fixed shape variants.
type Family int

const (
	Flower Family = iota
	Butterfly
	Starburst
	Blob
	Mandala

	familyCount = int(Mandala) + 1
)

var familyNames = [familyCount]string{"flower", "butterfly", "starburst", "blob", "mandala"}

func (f Family) String() string {
	if f < 0 || int(f) >= familyCount {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// MarshalText encodes the family by name.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Kind is the primitive an Element draws.
type Kind int

const (
	KindPath Kind = iota
	KindCircle
	KindPolygon
)

// Style is the paint of one element. Zero StrokeWidth means no stroke;
// zero Opacity means fully opaque.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	RoundCap    bool
}

// Element is one primitive of a Pattern.
type Element struct {
	Kind   Kind
	Path   geometry.Path    // KindPath
	Center geometry.Point   // KindCircle
	Radius float64          // KindCircle
	Points []geometry.Point // KindPolygon
	Style  Style
}

// Bounds returns the element's axis-aligned extent.
func (e Element) Bounds() geometry.Rect {
	switch e.Kind {
	case KindCircle:
		return geometry.Rect{X: e.Center.X - e.Radius, Y: e.Center.Y - e.Radius, Width: 2 * e.Radius, Height: 2 * e.Radius}
	case KindPolygon:
		return geometry.PolygonPath(e.Points).Bounds()
	default:
		return e.Path.Bounds()
	}
}

// Outline returns the element as a path, whatever its kind.
func (e Element) Outline() geometry.Path {
	switch e.Kind {
	case KindCircle:
		return geometry.CirclePath(e.Center, e.Radius)
	case KindPolygon:
		return geometry.PolygonPath(e.Points)
	default:
		return e.Path
	}
}

// Pattern is the synthesized background shared by every piece.
type Pattern struct {
	Family   Family
	Palette  Palette
	Canvas   geometry.Size
	Elements []Element
}

// Bounds returns the union of every element's bounds.
func (p Pattern) Bounds() geometry.Rect {
	var r geometry.Rect
	for _, e := range p.Elements {
		r = r.Union(e.Bounds())
	}
	return r
}

// Synthesize draws a family, a palette and the family's geometry from cur,
// centered on a canvas of the given size.
func Synthesize(cur *seqrand.Cursor, canvas geometry.Size) Pattern {
	family := Family(cur.Int(0, familyCount-1))
	palette := DrawPalette(cur)
	c := canvas.Center()
	main, accent := palette.Main(), palette.Accent()

	var elements []Element
	switch family {
	case Flower:
		elements = flower(cur, c, main, accent)
	case Butterfly:
		elements = butterfly(cur, c, main, accent)
	case Starburst:
		elements = starburst(cur, c, main, accent)
	case Blob:
		elements = blob(cur, c, main, accent)
	case Mandala:
		elements = mandala(cur, c, main, accent)
	}

	return Pattern{
		Family:   family,
		Palette:  palette,
		Canvas:   canvas,
		Elements: elements,
	}
}
