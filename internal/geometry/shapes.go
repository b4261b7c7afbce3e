package geometry

// RectPath returns a closed rectangle outline.
func RectPath(r Rect) Path {
	p := NewPath().
		MoveTo(Pt(r.X, r.Y)).
		LineTo(Pt(r.X+r.Width, r.Y)).
		LineTo(Pt(r.X+r.Width, r.Y+r.Height)).
		LineTo(Pt(r.X, r.Y+r.Height)).
		Close()
	return *p
}

// CirclePath approximates a circle with four cubic bezier curves.
func CirclePath(c Point, r float64) Path {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498 * r
	p := NewPath().
		MoveTo(Pt(c.X+r, c.Y)).
		CubicTo(Pt(c.X+r, c.Y+k), Pt(c.X+k, c.Y+r), Pt(c.X, c.Y+r)).
		CubicTo(Pt(c.X-k, c.Y+r), Pt(c.X-r, c.Y+k), Pt(c.X-r, c.Y)).
		CubicTo(Pt(c.X-r, c.Y-k), Pt(c.X-k, c.Y-r), Pt(c.X, c.Y-r)).
		CubicTo(Pt(c.X+k, c.Y-r), Pt(c.X+r, c.Y-k), Pt(c.X+r, c.Y)).
		Close()
	return *p
}

// PolygonPath joins points with straight lines and closes the outline.
func PolygonPath(points []Point) Path {
	p := NewPath()
	for i, pt := range points {
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	if len(points) > 0 {
		p.Close()
	}
	return *p
}

const flattenSteps = 12

// Flatten approximates the path as polylines, one per subpath.
// Curves are sampled at a fixed number of steps.
func (p Path) Flatten() [][]Point {
	var out [][]Point
	var poly []Point
	var pos, start Point

	flush := func() {
		if len(poly) > 1 {
			out = append(out, poly)
		}
		poly = nil
	}

	for _, c := range p.cmds {
		switch c.Op {
		case OpMove:
			flush()
			pos, start = c.To, c.To
			poly = []Point{pos}
		case OpLine:
			poly = append(poly, c.To)
			pos = c.To
		case OpQuad:
			for i := 1; i <= flattenSteps; i++ {
				t := float64(i) / flattenSteps
				u := 1 - t
				poly = append(poly, Pt(
					u*u*pos.X+2*u*t*c.C1.X+t*t*c.To.X,
					u*u*pos.Y+2*u*t*c.C1.Y+t*t*c.To.Y,
				))
			}
			pos = c.To
		case OpCubic:
			for i := 1; i <= flattenSteps; i++ {
				t := float64(i) / flattenSteps
				u := 1 - t
				poly = append(poly, Pt(
					u*u*u*pos.X+3*u*u*t*c.C1.X+3*u*t*t*c.C2.X+t*t*t*c.To.X,
					u*u*u*pos.Y+3*u*u*t*c.C1.Y+3*u*t*t*c.C2.Y+t*t*t*c.To.Y,
				))
			}
			pos = c.To
		case OpClose:
			poly = append(poly, start)
			pos = start
		}
	}
	flush()
	return out
}

// Contains reports whether pt lies inside the path under the even-odd rule.
func (p Path) Contains(pt Point) bool {
	inside := false
	for _, poly := range p.Flatten() {
		for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
			a, b := poly[i], poly[j]
			if (a.Y > pt.Y) != (b.Y > pt.Y) &&
				pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}
