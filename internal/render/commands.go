package render

import (
	"encoding/json"

	"github.com/shapeflow/shapeflow/backend-go/internal/geometry"
	"github.com/shapeflow/shapeflow/backend-go/internal/puzzle"
	"github.com/shapeflow/shapeflow/backend-go/internal/shape"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string                   `json:"op"`                    // "path", "save", "restore", "clip"
	ObjectID    string                   `json:"objectId,omitempty"`    // piece id, for hit correlation
	Transform   []float64                `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []geometry.CanvasCommand `json:"path,omitempty"`        // Path data for "path" and "clip" ops
	Fill        string                   `json:"fill,omitempty"`        // Fill color
	Stroke      string                   `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64                  `json:"strokeWidth,omitempty"` // Stroke width
	Opacity     float64                  `json:"opacity,omitempty"`     // Global alpha
	LineCap     string                   `json:"lineCap,omitempty"`
}

// PieceTransform maps a piece's home geometry to where it is drawn: rotated
// about its home centroid, then moved by its scatter offset.
func PieceTransform(p puzzle.Piece) geometry.Matrix2D {
	d := p.Position.Sub(p.CorrectPosition)
	return geometry.Translate(d.X, d.Y).Multiply(geometry.RotateAbout(float64(p.CurrentRotation), p.CorrectPosition))
}

// Compile generates the draw command buffer for a set of pieces over a pattern.
// Commands are in painter's order; later pieces are on top.
func Compile(pattern shape.Pattern, pieces []puzzle.Piece) []DrawCommand {
	background := geometry.RectPath(geometry.Rect{Width: pattern.Canvas.Width, Height: pattern.Canvas.Height}).Canvas()

	layers := make([]DrawCommand, len(pattern.Elements))
	for i, e := range pattern.Elements {
		layers[i] = elementCommand(e)
	}

	var commands []DrawCommand
	for _, p := range pieces {
		m := PieceTransform(p).ToSlice()
		boundary := p.Boundary.Canvas()

		commands = append(commands,
			DrawCommand{Op: "save"},
			DrawCommand{Op: "clip", Transform: m, Path: boundary},
			DrawCommand{Op: "path", Transform: m, Path: background, Fill: Background, Opacity: 1},
		)
		for _, layer := range layers {
			layer.Transform = m
			commands = append(commands, layer)
		}
		commands = append(commands, DrawCommand{Op: "restore"})

		fill, stroke := outlineColors(p.Solved())
		commands = append(commands, DrawCommand{
			Op:          "path",
			ObjectID:    p.ID,
			Transform:   m,
			Path:        boundary,
			Fill:        fill,
			Stroke:      stroke,
			StrokeWidth: 2,
			Opacity:     1,
			LineCap:     "round",
		})
	}
	return commands
}

func elementCommand(e shape.Element) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		Path:        e.Outline().Canvas(),
		Fill:        e.Style.Fill,
		Stroke:      e.Style.Stroke,
		StrokeWidth: e.Style.StrokeWidth,
		Opacity:     e.Style.Opacity,
	}
	if cmd.Opacity == 0 {
		cmd.Opacity = 1
	}
	if cmd.Fill == "none" {
		cmd.Fill = ""
	}
	if e.Style.RoundCap {
		cmd.LineCap = "round"
	}
	return cmd
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the id of the topmost piece whose drawn boundary contains
// (x, y), or the empty string.
func HitTest(pieces []puzzle.Piece, x, y float64) string {
	pt := geometry.Pt(x, y)
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		drawn := p.Boundary.Transform(PieceTransform(p))
		if !drawn.Bounds().Contains(x, y) {
			continue
		}
		if drawn.Contains(pt) {
			return p.ID
		}
	}
	return ""
}

// SelectionBounds returns the combined drawn bounding box of the given pieces.
func SelectionBounds(pieces []puzzle.Piece, ids []string) geometry.Rect {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var r geometry.Rect
	for _, p := range pieces {
		if want[p.ID] {
			r = r.Union(p.Boundary.Transform(PieceTransform(p)).Bounds())
		}
	}
	return r
}

// RotationLabel formats a piece's rotation the way the rotation indicator
// shows it: normalized into [0, 360).
func RotationLabel(p puzzle.Piece) int {
	r := p.CurrentRotation % 360
	if r < 0 {
		r += 360
	}
	return r
}
