package tui

import (
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
)

func TestFitViewportKeepsProportions(t *testing.T) {
	tests := []struct {
		cols, rows int
	}{
		{80, 24},
		{200, 50},
		{40, 60},
	}

	for _, tt := range tests {
		v := fitViewport(tt.cols, tt.rows)
		x0, y0 := v.toCell(core.PointF{})
		x1, y1 := v.toCell(core.PointF{X: timber.GameWidth, Y: timber.GameHeight})

		if x0 < -1e-9 || y0 < -1e-9 || x1 > float64(tt.cols)+1e-9 || y1 > float64(tt.rows)+1e-9 {
			t.Errorf("%dx%d: canvas (%v,%v)-(%v,%v) leaves the grid", tt.cols, tt.rows, x0, y0, x1, y1)
		}
		// One of the axes is filled
		if math.Abs(x1-x0-float64(tt.cols)) > 1e-9 && math.Abs(y1-y0-float64(tt.rows)) > 1e-9 {
			t.Errorf("%dx%d: canvas does not fill either axis", tt.cols, tt.rows)
		}
		// Width/height in cells reflects 400x600 with 2:1 cells
		ratio := (x1 - x0) / ((y1 - y0) * cellAspect)
		if math.Abs(ratio-timber.GameWidth/timber.GameHeight) > 1e-9 {
			t.Errorf("%dx%d: aspect %v", tt.cols, tt.rows, ratio)
		}
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := fitViewport(80, 24)
	p := v.center(40, 12)
	x, y := v.toCell(p)
	if math.Abs(x-40.5) > 1e-9 || math.Abs(y-12.5) > 1e-9 {
		t.Errorf("round trip = (%v, %v), want (40.5, 12.5)", x, y)
	}
}

func TestRasterizeFillRect(t *testing.T) {
	s := core.NewScreen(40, 30)
	Rasterize(s, []core.Primitive{
		core.FillRect{Rect: core.RectF{W: timber.GameWidth, H: timber.GameHeight}, Color: core.ColorGrass},
	})

	v := fitViewport(40, 30)
	canvas := v.canvas()
	for y := range s.Height() {
		for x := range s.Width() {
			got := s.GetCell(x, y).BG
			inside := canvas.Contains(x, y)
			if inside && got != core.ColorGrass {
				t.Fatalf("cell (%d,%d) inside the canvas = %q", x, y, got)
			}
			if !inside && got != core.ColorDefault {
				t.Fatalf("cell (%d,%d) outside the canvas = %q", x, y, got)
			}
		}
	}
}

func TestRasterizeLaterPrimitivesWin(t *testing.T) {
	s := core.NewScreen(40, 30)
	Rasterize(s, []core.Primitive{
		core.FillRect{Rect: core.RectF{W: timber.GameWidth, H: timber.GameHeight}, Color: core.ColorSkyTop},
		core.FillPath{Points: []core.PointF{
			{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 500}, {X: 100, Y: 500},
		}, Color: core.ColorTrunk},
	})

	v := fitViewport(40, 30)
	cx, cy := v.toCell(core.PointF{X: 200, Y: 300})
	if got := s.GetCell(int(cx), int(cy)).BG; got != core.ColorTrunk {
		t.Errorf("centre = %q, want trunk", got)
	}
	ex, ey := v.toCell(core.PointF{X: 20, Y: 20})
	if got := s.GetCell(int(ex), int(ey)).BG; got != core.ColorSkyTop {
		t.Errorf("corner = %q, want sky", got)
	}
}

func TestRasterizeGradient(t *testing.T) {
	s := core.NewScreen(40, 60)
	Rasterize(s, []core.Primitive{
		core.GradientRect{Rect: core.RectF{W: timber.GameWidth, H: timber.GameHeight}, Top: "#000000", Bottom: "#FFFFFF"},
	})

	v := fitViewport(40, 60)
	canvas := v.canvas()
	top := s.GetCell(20, canvas.Y).BG
	bottom := s.GetCell(20, canvas.Bottom()-1).BG
	if top == bottom {
		t.Fatalf("gradient is flat: %q", top)
	}
	if !strings.HasPrefix(string(top), "#") || top > bottom {
		t.Errorf("top %q should be darker than bottom %q", top, bottom)
	}
}

func TestGradientBadColourFallsBack(t *testing.T) {
	g := newGradient("sky", "#FFFFFF")
	if got := g.at(0.5); got != "sky" {
		t.Errorf("at() = %q, want the top colour", got)
	}
}

func TestRasterizeText(t *testing.T) {
	s := core.NewScreen(40, 30)
	Rasterize(s, []core.Primitive{
		core.FillRect{Rect: core.RectF{W: timber.GameWidth, H: timber.GameHeight}, Color: core.ColorSkyTop},
		core.Text{Pos: core.PointF{X: timber.GameWidth / 2, Y: 300}, Value: "42", Color: core.ColorWhite, Center: true},
	})

	v := fitViewport(40, 30)
	_, fy := v.toCell(core.PointF{Y: 300})
	row := s.Row(int(fy))
	if !strings.Contains(row, "42") {
		t.Fatalf("row %q does not contain the label", row)
	}
	x := strings.Index(row, "42")
	c := s.GetCell(x, int(fy))
	if c.FG != core.ColorWhite || c.BG != core.ColorSkyTop {
		t.Errorf("label cell = %+v", c)
	}
}

func TestRasterizeProjectedScene(t *testing.T) {
	m := timber.NewMachine(timber.ModeSurvival, timber.Options{})
	s := core.NewScreen(160, 46)
	Rasterize(s, timber.Project(m.State(), core.PointF{}))

	counts := map[core.Color]int{}
	for y := range s.Height() {
		for x := range s.Width() {
			counts[s.GetCell(x, y).BG]++
		}
	}
	for _, c := range []core.Color{core.ColorTrunk, core.ColorGrass, core.ColorShirt} {
		if counts[c] == 0 {
			t.Errorf("no %s cells in the scene", c)
		}
	}
}

func TestRasterizeEmptyScreen(t *testing.T) {
	s := core.NewScreen(0, 0)
	Rasterize(s, []core.Primitive{core.FillRect{Rect: core.RectF{W: 10, H: 10}, Color: core.ColorGrass}})
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.PaintRect(core.NewRect(0, 0, 6, 1), core.ColorGrass)
	s.DrawText(1, 0, "hi", core.ColorWhite)
	s.DrawText(0, 1, "plain", core.ColorDefault)

	out := RenderScreen(nil, s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "hi") || !strings.Contains(lines[1], "plain") {
		t.Errorf("output = %q", out)
	}
}
