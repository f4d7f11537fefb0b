package core

// Primitive is a single drawing instruction in scene coordinates.
// Renderers switch on the concrete type.
type Primitive interface {
	primitive()
}

// FillRect paints a solid rectangle.
type FillRect struct {
	Rect  RectF
	Color Color
}

func (FillRect) primitive() {}

// GradientRect paints a rectangle with a vertical two-stop gradient.
type GradientRect struct {
	Rect   RectF
	Top    Color
	Bottom Color
}

func (GradientRect) primitive() {}

// FillPath paints a closed polygon.
type FillPath struct {
	Points []PointF
	Color  Color
}

func (FillPath) primitive() {}

// Text draws a label with its top-left corner at Pos, or with Pos at
// the middle of its top edge when Center is set.
type Text struct {
	Pos    PointF
	Value  string
	Color  Color
	Center bool
}

func (Text) primitive() {}

// Bounds returns the bounding rectangle of the polygon.
func (p FillPath) Bounds() RectF {
	if len(p.Points) == 0 {
		return RectF{}
	}
	minX, minY := p.Points[0].X, p.Points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p.Points[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}
	return RectF{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// ContainsPoint reports whether (x, y) lies inside the polygon
// using the even-odd rule.
func (p FillPath) ContainsPoint(x, y float64) bool {
	inside := false
	n := len(p.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.Points[i], p.Points[j]
		if (a.Y > y) != (b.Y > y) {
			crossX := (b.X-a.X)*(y-a.Y)/(b.Y-a.Y) + a.X
			if x < crossX {
				inside = !inside
			}
		}
	}
	return inside
}
