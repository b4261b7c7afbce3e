package shape

import "github.com/shapeflow/shapeflow/backend-go/internal/seqrand"

// Swatches is the fixed set of thematic colors palettes are drawn from.
// Duplicates are intentional: they weight the draw.
var Swatches = []string{
	"#4ade80", "#22c55e", "#10b981", "#059669",
	"#6ee7b7", "#34d399", "#5eead4", "#2dd4bf",
	"#86efac", "#a7f3d0", "#6ee7b7", "#14b8a6",
}

const (
	minPaletteSize = 3
	maxPaletteSize = 5
)

// Palette is an ordered list of 3 to 5 swatches, repetition allowed.
type Palette []string

// DrawPalette draws a palette size, then each color uniformly from Swatches.
func DrawPalette(cur *seqrand.Cursor) Palette {
	n := cur.Int(minPaletteSize, maxPaletteSize)
	p := make(Palette, n)
	for i := range p {
		p[i] = Swatches[cur.Int(0, len(Swatches)-1)]
	}
	return p
}

// Main is the primary fill color.
func (p Palette) Main() string {
	return p[0]
}

// Accent is the secondary color, falling back to Main for a one-color palette.
func (p Palette) Accent() string {
	if len(p) > 1 {
		return p[1]
	}
	return p[0]
}

// At returns the color for index i, cycling through the palette.
func (p Palette) At(i int) string {
	return p[i%len(p)]
}
