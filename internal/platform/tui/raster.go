package tui

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
)

// cellAspect is the height of a terminal cell in widths.
const cellAspect = 2.0

// viewport maps the logical canvas onto the largest centred area of
// the cell grid that keeps its proportions.
type viewport struct {
	scale      float64 // cells per logical unit, horizontally
	offX, offY float64 // top-left of the canvas, in cells
}

func fitViewport(cols, rows int) viewport {
	scale := math.Min(float64(cols)/timber.GameWidth, float64(rows)*cellAspect/timber.GameHeight)
	w := timber.GameWidth * scale
	h := timber.GameHeight * scale / cellAspect
	return viewport{
		scale: scale,
		offX:  (float64(cols) - w) / 2,
		offY:  (float64(rows) - h) / 2,
	}
}

// toCell converts a logical point to fractional cell coordinates.
func (v viewport) toCell(p core.PointF) (float64, float64) {
	return v.offX + p.X*v.scale, v.offY + p.Y*v.scale/cellAspect
}

// center returns the logical point at the middle of a cell.
func (v viewport) center(cx, cy int) core.PointF {
	return core.PointF{
		X: (float64(cx) + 0.5 - v.offX) / v.scale,
		Y: (float64(cy) + 0.5 - v.offY) * cellAspect / v.scale,
	}
}

// cells returns the cell rectangle covering a logical rectangle.
func (v viewport) cells(r core.RectF) core.Rect {
	x0, y0 := v.toCell(core.PointF{X: r.X, Y: r.Y})
	x1, y1 := v.toCell(core.PointF{X: r.X + r.W, Y: r.Y + r.H})
	ix, iy := int(math.Floor(x0)), int(math.Floor(y0))
	return core.NewRect(ix, iy, int(math.Ceil(x1))-ix, int(math.Ceil(y1))-iy)
}

// canvas returns the cells the logical canvas covers.
func (v viewport) canvas() core.Rect {
	return v.cells(core.RectF{W: timber.GameWidth, H: timber.GameHeight})
}

// Rasterize clears s and paints prims onto it, back to front. A cell
// takes a shape's colour when the shape covers the cell's centre.
func Rasterize(s *core.Screen, prims []core.Primitive) {
	s.Clear()
	if s.Width() == 0 || s.Height() == 0 {
		return
	}
	v := fitViewport(s.Width(), s.Height())
	clip := v.canvas().Intersect(s.Bounds())

	for _, p := range prims {
		switch p := p.(type) {
		case core.FillRect:
			fillCells(s, v, clip, p.Rect, func(pt core.PointF) (core.Color, bool) {
				return p.Color, inRect(p.Rect, pt)
			})
		case core.GradientRect:
			g := newGradient(p.Top, p.Bottom)
			fillCells(s, v, clip, p.Rect, func(pt core.PointF) (core.Color, bool) {
				if !inRect(p.Rect, pt) {
					return "", false
				}
				t := 0.0
				if p.Rect.H > 0 {
					t = (pt.Y - p.Rect.Y) / p.Rect.H
				}
				return g.at(t), true
			})
		case core.FillPath:
			fillCells(s, v, clip, p.Bounds(), func(pt core.PointF) (core.Color, bool) {
				return p.Color, p.ContainsPoint(pt.X, pt.Y)
			})
		case core.Text:
			drawText(s, v, p)
		}
	}
}

func fillCells(s *core.Screen, v viewport, clip core.Rect, bounds core.RectF, shade func(core.PointF) (core.Color, bool)) {
	r := v.cells(bounds).Intersect(clip)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if c, ok := shade(v.center(x, y)); ok {
				s.Paint(x, y, c)
			}
		}
	}
}

func inRect(r core.RectF, p core.PointF) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

func drawText(s *core.Screen, v viewport, t core.Text) {
	fx, fy := v.toCell(t.Pos)
	x, y := int(math.Floor(fx)), int(math.Floor(fy))
	if t.Center {
		x -= len([]rune(t.Value)) / 2
	}
	s.DrawText(x, y, t.Value, t.Color)
}

// gradient blends two colours in Lab space.
type gradient struct {
	top, bottom colorful.Color
	ok          bool
	fallback    core.Color
}

func newGradient(top, bottom core.Color) gradient {
	a, errA := colorful.Hex(string(top))
	b, errB := colorful.Hex(string(bottom))
	return gradient{top: a, bottom: b, ok: errA == nil && errB == nil, fallback: top}
}

func (g gradient) at(t float64) core.Color {
	if !g.ok {
		return g.fallback
	}
	return core.Color(g.top.BlendLab(g.bottom, core.ClampF(t, 0, 1)).Clamped().Hex())
}
