// Package render turns generated puzzles into SVG markup and Canvas2D draw
// commands. It is the only place geometry becomes text.
package render

import (
	"fmt"
	"strings"

	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
	"github.com/shapeflow/shapeflow/backend-go/internal/shape"
)

// Background is the canvas fill behind the pattern.
const Background = "#f0fdf4"

// Outline colors for solved and unsolved pieces.
const (
	SolvedStroke   = "#22c55e"
	UnsolvedStroke = "#64748b"
	SolvedFill     = "rgba(34, 197, 94, 0.1)"
	UnsolvedFill   = "rgba(100, 116, 139, 0.1)"
)

// PatternMarkup serializes the pattern's elements as SVG fragments.
func PatternMarkup(p shape.Pattern) string {
	var b strings.Builder
	for _, e := range p.Elements {
		writeElement(&b, e)
	}
	return b.String()
}

// CompleteSVG renders the finished image: background plus pattern.
func CompleteSVG(p shape.Pattern) string {
	var b strings.Builder
	openSVG(&b, p.Canvas)
	writeBackground(&b, p.Canvas)
	b.WriteString(PatternMarkup(p))
	b.WriteString("</svg>")
	return b.String()
}

// PieceSVG renders one piece as the pattern clipped to its boundary, with its outline.
// When placed is true the piece is drawn at its current position and rotation,
// otherwise at home.
func PieceSVG(p shape.Pattern, piece puzzle.Piece, placed bool) string {
	var b strings.Builder
	openSVG(&b, p.Canvas)

	clipID := "clip-" + piece.ID
	d := piece.Boundary.SVG()
	fmt.Fprintf(&b, `<defs><clipPath id="%s"><path d="%s"/></clipPath></defs>`, clipID, d)

	if placed {
		delta := piece.Position.Sub(piece.CorrectPosition)
		fmt.Fprintf(&b, `<g transform="translate(%s %s) rotate(%d %s %s)">`,
			num(delta.X), num(delta.Y), piece.CurrentRotation,
			num(piece.CorrectPosition.X), num(piece.CorrectPosition.Y))
	}

	fmt.Fprintf(&b, `<g clip-path="url(#%s)">`, clipID)
	writeBackground(&b, p.Canvas)
	b.WriteString(PatternMarkup(p))
	b.WriteString("</g>")

	fill, stroke := outlineColors(piece.Solved())
	fmt.Fprintf(&b, `<path d="%s" fill="%s" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"/>`,
		d, fill, stroke)

	if placed {
		b.WriteString("</g>")
	}
	b.WriteString("</svg>")
	return b.String()
}

func openSVG(b *strings.Builder, canvas geometry.Size) {
	fmt.Fprintf(b, `<svg viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg">`, num(canvas.Width), num(canvas.Height))
}

func writeBackground(b *strings.Builder, canvas geometry.Size) {
	fmt.Fprintf(b, `<rect width="%s" height="%s" fill="%s"/>`, num(canvas.Width), num(canvas.Height), Background)
}

func writeElement(b *strings.Builder, e shape.Element) {
	switch e.Kind {
	case shape.KindCircle:
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s"`, num(e.Center.X), num(e.Center.Y), num(e.Radius))
	case shape.KindPolygon:
		pts := make([]string, len(e.Points))
		for i, pt := range e.Points {
			pts[i] = num(pt.X) + "," + num(pt.Y)
		}
		fmt.Fprintf(b, `<polygon points="%s"`, strings.Join(pts, " "))
	default:
		fmt.Fprintf(b, `<path d="%s"`, e.Path.SVG())
	}
	writeStyle(b, e.Style)
	b.WriteString("/>")
}

func writeStyle(b *strings.Builder, s shape.Style) {
	if s.Fill != "" {
		fmt.Fprintf(b, ` fill="%s"`, s.Fill)
	}
	if s.Stroke != "" {
		fmt.Fprintf(b, ` stroke="%s"`, s.Stroke)
	}
	if s.StrokeWidth > 0 {
		fmt.Fprintf(b, ` stroke-width="%s"`, num(s.StrokeWidth))
	}
	if s.RoundCap {
		b.WriteString(` stroke-linecap="round"`)
	}
	if s.Opacity > 0 {
		fmt.Fprintf(b, ` opacity="%s"`, num(s.Opacity))
	}
}

func outlineColors(solved bool) (fill, stroke string) {
	if solved {
		return SolvedFill, SolvedStroke
	}
	return UnsolvedFill, UnsolvedStroke
}

func num(v float64) string {
	return geometry.FormatNumber(v)
}
