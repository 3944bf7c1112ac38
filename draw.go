package main

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/clawmachine/claw"
	"golang.org/x/image/colornames"
)

// view maps two world axes onto the screen.
type view struct {
	cx, cy float64
	scale  float64
}

var (
	topView  = view{cx: baseWidth * 0.27, cy: baseHeight * 0.5, scale: 70}
	sideView = view{cx: baseWidth * 0.75, cy: baseHeight * 0.5, scale: 28}
)

// sideMidY is the world height drawn at the side view's centre.
const sideMidY = 2.5

// top projects onto the X/Z plane, +Z down the screen.
func (v view) top(p mgl64.Vec3) (float32, float32) {
	return float32(v.cx + p.X()*v.scale), float32(v.cy + p.Z()*v.scale)
}

// side projects onto the X/Y plane, +Y up the screen.
func (v view) side(p mgl64.Vec3) (float32, float32) {
	return float32(v.cx + p.X()*v.scale), float32(v.cy - (p.Y()-sideMidY)*v.scale)
}

func (v view) px(d float64) float32 {
	return float32(d * v.scale)
}

var kindColors = map[string]color.Color{
	"bear":    colornames.Sandybrown,
	"ball":    colornames.Tomato,
	"capsule": colornames.Mediumpurple,
	"duck":    colornames.Gold,
}

func prizeColor(p *claw.Prize) color.Color {
	if p.Won {
		return colornames.Limegreen
	}
	if c, ok := kindColors[p.Kind]; ok {
		return c
	}
	return colornames.Lightgrey
}

func drawMachine(screen *ebiten.Image, s *claw.Session) {
	cfg := s.Config()
	drawTop(screen, s, cfg)
	drawSide(screen, s, cfg)
}

func drawTop(screen *ebiten.Image, s *claw.Session, cfg claw.Config) {
	v := topView
	cab := cfg.Cabinet

	x, y := v.top(mgl64.Vec3{-cab.PitHalfSize, 0, -cab.PitHalfSize})
	size := v.px(2 * cab.PitHalfSize)
	vector.DrawFilledRect(screen, x, y, size, size, colornames.Darkslategray, false)
	vector.StrokeRect(screen, x, y, size, size, 2, colornames.Lightsteelblue, false)

	bx, by := v.top(mgl64.Vec3{cfg.BinX-cab.BinHalfSize, 0, cfg.BinZ-cab.BinHalfSize})
	bin := v.px(2 * cab.BinHalfSize)
	vector.DrawFilledRect(screen, bx, by, bin, bin, colornames.Black, false)
	vector.StrokeRect(screen, bx, by, bin, bin, 2, colornames.Goldenrod, false)

	b := cfg.Bounds
	lx, ly := v.top(mgl64.Vec3{b.MinX, 0, b.MinZ})
	vector.StrokeRect(screen, lx, ly, v.px(b.MaxX-b.MinX), v.px(b.MaxZ-b.MinZ), 1, colornames.Dimgray, false)

	for _, p := range s.Prizes() {
		px, py := v.top(p.Position)
		vector.DrawFilledCircle(screen, px, py, v.px(p.Radius), prizeColor(p), true)
		if p.Grabbed {
			vector.StrokeCircle(screen, px, py, v.px(p.Radius)+2, 2, colornames.Orange, true)
		}
	}

	c := s.Claw()
	cx, cy := v.top(c.Position)
	r := v.px(cfg.GrabRadius)
	vector.StrokeCircle(screen, cx, cy, r, 2, colornames.Silver, true)
	vector.StrokeLine(screen, cx-r, cy, cx+r, cy, 1, colornames.Silver, true)
	vector.StrokeLine(screen, cx, cy-r, cx, cy+r, 1, colornames.Silver, true)
}

func drawSide(screen *ebiten.Image, s *claw.Session, cfg claw.Config) {
	v := sideView
	cab := cfg.Cabinet

	// Pit floor with the bin opening.
	fl, fy := v.side(mgl64.Vec3{-cab.PitHalfSize, cab.PitFloorY, 0})
	hl, _ := v.side(mgl64.Vec3{cfg.BinX-cab.BinHalfSize, 0, 0})
	hr, _ := v.side(mgl64.Vec3{cfg.BinX+cab.BinHalfSize, 0, 0})
	fr, _ := v.side(mgl64.Vec3{cab.PitHalfSize, 0, 0})
	vector.StrokeLine(screen, fl, fy, hl, fy, 3, colornames.Lightsteelblue, false)
	vector.StrokeLine(screen, hr, fy, fr, fy, 3, colornames.Lightsteelblue, false)

	_, wallTop := v.side(mgl64.Vec3{0, cab.PitFloorY+cab.WallHeight, 0})
	vector.StrokeLine(screen, fl, fy, fl, wallTop, 2, colornames.Lightsteelblue, false)
	vector.StrokeLine(screen, fr, fy, fr, wallTop, 2, colornames.Lightsteelblue, false)

	_, binFloor := v.side(mgl64.Vec3{0, cab.BinFloorY, 0})
	_, rimTop := v.side(mgl64.Vec3{0, cab.PitFloorY+cab.RimHeight, 0})
	vector.StrokeLine(screen, hl, rimTop, hl, binFloor, 2, colornames.Goldenrod, false)
	vector.StrokeLine(screen, hr, rimTop, hr, binFloor, 2, colornames.Goldenrod, false)
	vector.StrokeLine(screen, hl, binFloor, hr, binFloor, 2, colornames.Goldenrod, false)

	for _, p := range s.Prizes() {
		px, py := v.side(p.Position)
		vector.DrawFilledCircle(screen, px, py, v.px(p.Radius), prizeColor(p), true)
	}

	joints := s.Tether().Joints()
	for i := 0; i+1 < len(joints); i++ {
		ax, ay := v.side(joints[i])
		bx, by := v.side(joints[i+1])
		vector.StrokeLine(screen, ax, ay, bx, by, 2, colornames.Darkgray, true)
	}

	drawJaws(screen, v, s.Claw())
}

// drawJaws draws the claw head with two prongs spread by the current jaw
// angle and leaning with the swing.
func drawJaws(screen *ebiten.Image, v view, c *claw.Claw) {
	hx, hy := v.side(c.Position)
	vector.DrawFilledRect(screen, hx-8, hy-6, 16, 8, colornames.Silver, false)

	const prong = 22.0
	lean := c.Swing
	for _, sign := range []float64{-1, 1} {
		a := sign*c.CurrentAngle + lean
		tx := hx + float32(math.Sin(a)*prong)
		ty := hy + float32(math.Cos(a)*prong)
		vector.StrokeLine(screen, hx, hy, tx, ty, 3, colornames.Silver, true)
	}
}
