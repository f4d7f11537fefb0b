package timber

import (
	"fmt"
	"math"

	"github.com/vovakirdan/timber/internal/core"
)

// Scene layout in logical units. The renderer scales the 400x600
// canvas to whatever it draws on.
const (
	GameWidth     = 400.0
	GameHeight    = 600.0
	TreeWidth     = 80.0
	TreeX         = GameWidth/2 - TreeWidth/2
	SegmentHeight = 50.0
	TreeBaseY     = GameHeight - 80
	GroundY       = TreeBaseY + 20
	BranchWidth   = 70.0
	BranchHeight  = 25.0
	PlayerWidth   = 60.0
	PlayerHeight  = 80.0
	PlayerY       = TreeBaseY - PlayerHeight + 10
	PlayerOffsetX = 20.0
)

const (
	timerLow    = 0.3
	timerMid    = 0.6
	deathTilt   = 0.5 // radians
	circleSteps = 12
	hudBarX     = 100.0
	hudBarY     = 24.0
	hudBarW     = 200.0
	hudBarH     = 16.0
)

// SegmentY returns the top edge of the segment at index i.
func SegmentY(i int) float64 {
	return TreeBaseY - float64(i+1)*SegmentHeight
}

// PlayerX returns the left edge of the lumberjack on a side.
func PlayerX(side Side) float64 {
	centerX := TreeX + TreeWidth/2
	if side == SideRight {
		return centerX + PlayerOffsetX + TreeWidth/2
	}
	return centerX - PlayerOffsetX - PlayerWidth - TreeWidth/2
}

// TimerColor picks the bar colour for a timer value.
func TimerColor(v float64) core.Color {
	switch {
	case v < timerLow:
		return core.ColorTimerLow
	case v < timerMid:
		return core.ColorTimerMid
	default:
		return core.ColorTimerFull
	}
}

// Project turns a state into draw primitives, back to front. The scene
// is moved by offset (the screen shake); the HUD is not.
func Project(view State, offset core.PointF) []core.Primitive {
	p := &projection{off: offset}
	p.background()
	p.ground()
	p.tree(view.Segments)
	p.player(view.PlayerSide, view.IsPlayerDead)
	if view.Screen == ScreenPlaying {
		p.hud(view)
	}
	return p.prims
}

type projection struct {
	off   core.PointF
	prims []core.Primitive
}

func (p *projection) rect(x, y, w, h float64, c core.Color) {
	p.prims = append(p.prims, core.FillRect{
		Rect:  core.RectF{X: x, Y: y, W: w, H: h}.Translate(p.off.X, p.off.Y),
		Color: c,
	})
}

func (p *projection) path(pts []core.PointF, c core.Color) {
	moved := make([]core.PointF, len(pts))
	for i, pt := range pts {
		moved[i] = core.PointF{X: pt.X + p.off.X, Y: pt.Y + p.off.Y}
	}
	p.prims = append(p.prims, core.FillPath{Points: moved, Color: c})
}

func (p *projection) circle(cx, cy, r float64, c core.Color) {
	p.path(arc(cx, cy, r, 0, 2*math.Pi), c)
}

func (p *projection) background() {
	p.prims = append(p.prims, core.GradientRect{
		Rect:   core.RectF{X: 0, Y: 0, W: GameWidth, H: GameHeight},
		Top:    core.ColorSkyTop,
		Bottom: core.ColorSkyBottom,
	})
	p.cloud(50, 80, 40)
	p.cloud(280, 120, 50)
	p.cloud(150, 50, 35)
}

func (p *projection) cloud(x, y, size float64) {
	p.circle(x, y, size*0.5, core.ColorCloud)
	p.circle(x+size*0.4, y-size*0.1, size*0.4, core.ColorCloud)
	p.circle(x+size*0.8, y, size*0.45, core.ColorCloud)
}

func (p *projection) ground() {
	p.rect(0, GroundY, GameWidth, GameHeight-GroundY, core.ColorGrass)
	p.rect(0, GroundY, GameWidth, 5, core.ColorGrassDark)
}

func (p *projection) tree(segments []TreeSegment) {
	// Stump
	p.rect(TreeX-10, TreeBaseY, TreeWidth+20, 30, core.ColorTrunk)

	for i, seg := range segments {
		y := SegmentY(i)
		p.rect(TreeX, y, TreeWidth, SegmentHeight+2, core.ColorTrunk)
		p.rect(TreeX+5, y+5, 8, SegmentHeight-10, core.ColorBark)
		p.rect(TreeX+TreeWidth-15, y+10, 10, SegmentHeight-20, core.ColorBarkLight)
		if seg.Obstacle != ObstacleNone {
			p.branch(y, seg.Obstacle)
		}
	}

	p.treeTop(TreeBaseY - float64(len(segments))*SegmentHeight)
}

func (p *projection) branch(y float64, side Obstacle) {
	by := y + SegmentHeight/2 - BranchHeight/2
	bx := TreeX + TreeWidth
	leafX := bx + BranchWidth - 10
	if side == ObstacleLeft {
		bx = TreeX - BranchWidth
		leafX = bx - 15
	}

	p.rect(bx, by+3, BranchWidth, BranchHeight, core.ColorBranchDark)
	p.rect(bx, by, BranchWidth, BranchHeight-3, core.ColorBranch)
	p.circle(leafX+12, by+BranchHeight/2, 18, core.ColorLeaves)
}

// treeTop stacks three triangles above the highest segment.
func (p *projection) treeTop(y float64) {
	cx := TreeX + TreeWidth/2
	layers := []struct{ half, base, peak float64 }{
		{60, 20, -40},
		{45, -20, -70},
		{30, -50, -90},
	}
	for _, l := range layers {
		p.path([]core.PointF{
			{X: cx - l.half, Y: y + l.base},
			{X: cx + l.half, Y: y + l.base},
			{X: cx, Y: y + l.peak},
		}, core.ColorCanopy)
	}
}

// player draws the lumberjack facing the trunk. A dead lumberjack
// tilts away from it, pivoting on the feet.
func (p *projection) player(side Side, dead bool) {
	px := PlayerX(side)
	pivot := core.PointF{X: px + PlayerWidth/2, Y: PlayerY + PlayerHeight}

	angle := 0.0
	if dead {
		angle = -deathTilt
		if side == SideRight {
			angle = deathTilt
		}
	}

	place := func(local []core.PointF) []core.PointF {
		out := make([]core.PointF, len(local))
		for i, pt := range local {
			w := rotate(core.PointF{X: px + pt.X, Y: PlayerY + pt.Y}, pivot, angle)
			if side == SideRight {
				w.X = 2*pivot.X - w.X
			}
			out[i] = w
		}
		return out
	}

	p.path(place(box(15, 25, 30, 35)), core.ColorShirt)
	p.path(place(arc(PlayerWidth/2, 15, 15, 0, 2*math.Pi)), core.ColorSkin)
	p.path(place(arc(PlayerWidth/2, 10, 16, math.Pi, 2*math.Pi)), core.ColorHardHat)
	p.path(place(box(10, 8, 40, 5)), core.ColorHardHat)
	p.path(place(box(18, 58, 10, 22)), core.ColorTrousers)
	p.path(place(box(32, 58, 10, 22)), core.ColorTrousers)
	p.path(place(box(45, 30, 25, 5)), core.ColorAxeHandle)
	p.path(place([]core.PointF{{X: 65, Y: 20}, {X: 75, Y: 32}, {X: 65, Y: 45}, {X: 60, Y: 32}}), core.ColorAxeHead)
}

func (p *projection) hud(view State) {
	fill, label := view.TimerValue, fmt.Sprintf("%d", view.Score)
	color := TimerColor(view.TimerValue)
	if view.Mode == ModeTimeTrial {
		fill = view.Progress
		label = fmt.Sprintf("%d / %d", view.BlocksChopped, view.TargetBlocks)
		color = core.ColorTimerFull
	}

	p.prims = append(p.prims,
		core.FillRect{Rect: core.RectF{X: hudBarX - 2, Y: hudBarY - 2, W: hudBarW + 4, H: hudBarH + 4}, Color: core.ColorBlack},
		core.FillRect{Rect: core.RectF{X: hudBarX, Y: hudBarY, W: hudBarW * clamp01(fill), H: hudBarH}, Color: color},
		core.Text{Pos: core.PointF{X: GameWidth / 2, Y: hudBarY + hudBarH + 16}, Value: label, Color: core.ColorWhite, Center: true},
	)
}

// box returns the corners of a rectangle, clockwise from the top left.
func box(x, y, w, h float64) []core.PointF {
	return []core.PointF{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

// arc approximates a circular arc from angle a0 to a1 with straight
// segments. Angles grow clockwise because y points down.
func arc(cx, cy, r, a0, a1 float64) []core.PointF {
	pts := make([]core.PointF, 0, circleSteps+1)
	for i := 0; i <= circleSteps; i++ {
		a := a0 + (a1-a0)*float64(i)/circleSteps
		pts = append(pts, core.PointF{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

func rotate(pt, pivot core.PointF, angle float64) core.PointF {
	if angle == 0 {
		return pt
	}
	sin, cos := math.Sincos(angle)
	dx, dy := pt.X-pivot.X, pt.Y-pivot.Y
	return core.PointF{X: pivot.X + dx*cos - dy*sin, Y: pivot.Y + dx*sin + dy*cos}
}
