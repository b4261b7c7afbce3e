package shape

import (
	"math"

	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/seqrand"
)

// flower draws 6-12 quadratic petals around c and a center disc.
func flower(cur *seqrand.Cursor, c geometry.Point, main, accent string) []Element {
	petals := cur.Int(6, 12)
	length := cur.Float(80, 120)
	width := cur.Float(30, 50)

	p := geometry.NewPath()
	for i := 0; i < petals; i++ {
		angle := float64(i) / float64(petals) * 2 * math.Pi
		ctrl := c.Polar(angle, length*0.6)
		p.MoveTo(c.Polar(angle-0.3, width)).
			QuadTo(ctrl, c.Polar(angle, length)).
			QuadTo(ctrl, c.Polar(angle+0.3, width))
	}

	center := cur.Float(20, 35)

	return []Element{
		{Kind: KindPath, Path: *p, Style: Style{Fill: main, Stroke: accent, StrokeWidth: 3, Opacity: 0.8}},
		{Kind: KindCircle, Center: c, Radius: center, Style: Style{Fill: accent, Stroke: main, StrokeWidth: 2}},
	}
}

// butterfly draws two mirrored wings, a body stroke and a head.
func butterfly(cur *seqrand.Cursor, c geometry.Point, main, accent string) []Element {
	span := cur.Float(140, 180)
	height := cur.Float(100, 130)

	wing := func(dir float64) geometry.Path {
		p := geometry.NewPath().
			MoveTo(c).
			QuadTo(geometry.Pt(c.X+dir*span/3, c.Y-height/2), geometry.Pt(c.X+dir*span/2, c.Y-height/3)).
			QuadTo(geometry.Pt(c.X+dir*span/2, c.Y), geometry.Pt(c.X+dir*span/3, c.Y+height/4)).
			QuadTo(geometry.Pt(c.X+dir*span/4, c.Y+height/2), c)
		return *p
	}

	bodyLength := height * 0.8
	body := geometry.NewPath().
		MoveTo(geometry.Pt(c.X, c.Y-bodyLength/2)).
		LineTo(geometry.Pt(c.X, c.Y+bodyLength/2))

	wingStyle := Style{Fill: main, Stroke: accent, StrokeWidth: 2, Opacity: 0.8}
	return []Element{
		{Kind: KindPath, Path: wing(-1), Style: wingStyle},
		{Kind: KindPath, Path: wing(1), Style: wingStyle},
		{Kind: KindPath, Path: *body, Style: Style{Fill: "none", Stroke: accent, StrokeWidth: 6, RoundCap: true}},
		{Kind: KindCircle, Center: geometry.Pt(c.X, c.Y-bodyLength/3), Radius: 8, Style: Style{Fill: accent}},
	}
}

// starburst draws an 8-16 ray star polygon and a center disc.
func starburst(cur *seqrand.Cursor, c geometry.Point, main, accent string) []Element {
	rays := cur.Int(8, 16)
	inner := cur.Float(30, 50)
	outer := cur.Float(120, 160)

	points := make([]geometry.Point, 0, rays*2)
	for i := 0; i < rays*2; i++ {
		angle := float64(i) / float64(rays*2) * 2 * math.Pi
		r := inner
		if i%2 == 0 {
			r = outer
		}
		points = append(points, c.Polar(angle, r))
	}

	center := cur.Float(15, 25)

	return []Element{
		{Kind: KindPolygon, Points: points, Style: Style{Fill: main, Stroke: accent, StrokeWidth: 3, Opacity: 0.8}},
		{Kind: KindCircle, Center: c, Radius: center, Style: Style{Fill: accent}},
	}
}

// blob draws 8-12 jittered perimeter points joined by curves whose controls
// wander around each edge's midpoint.
func blob(cur *seqrand.Cursor, c geometry.Point, main, accent string) []Element {
	n := cur.Int(8, 12)
	base := cur.Float(80, 120)

	points := make([]geometry.Point, n)
	for i := range points {
		angle := float64(i) / float64(n) * 2 * math.Pi
		points[i] = c.Polar(angle, base*cur.Float(0.7, 1.3))
	}

	p := geometry.NewPath().MoveTo(points[0])
	for i := 0; i < n; i++ {
		next := points[(i+1)%n]
		spread := cur.Float(20, 40)
		mid := points[i].Mid(next)
		dx := cur.Float(-spread, spread)
		dy := cur.Float(-spread, spread)
		p.QuadTo(geometry.Pt(mid.X+dx, mid.Y+dy), next)
	}
	p.Close()

	return []Element{
		{Kind: KindPath, Path: *p, Style: Style{Fill: main, Stroke: accent, StrokeWidth: 4, Opacity: 0.8}},
	}
}

// mandala draws 3-5 concentric rings of circles alternating main/accent by ring.
func mandala(cur *seqrand.Cursor, c geometry.Point, main, accent string) []Element {
	layers := cur.Int(3, 5)

	var out []Element
	for layer := 0; layer < layers; layer++ {
		radius := 30 + float64(layer)*25
		count := 6 + layer*2
		size := cur.Float(15, 25)

		color := main
		if layer%2 == 1 {
			color = accent
		}
		for i := 0; i < count; i++ {
			angle := float64(i)/float64(count)*2*math.Pi + float64(layer)*0.2
			out = append(out, Element{
				Kind:   KindCircle,
				Center: c.Polar(angle, radius),
				Radius: size,
				Style:  Style{Fill: color, Opacity: 0.7},
			})
		}
	}

	out = append(out, Element{
		Kind:   KindCircle,
		Center: c,
		Radius: 20,
		Style:  Style{Fill: accent, Stroke: main, StrokeWidth: 3},
	})
	return out
}
