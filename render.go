package main

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/system"
	"github.com/milk9111/bastion/physics"
	"golang.org/x/image/colornames"
)

const arrowDrawLength = 0.8

var (
	groundColor    = color.NRGBA{R: 0x3b, G: 0x4a, B: 0x2f, A: 0xff}
	wallColor      = colornames.Dimgray
	structureColor = colornames.Slategray
	ringColor      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x30}
	aimColor       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}
	flashColor     = colornames.White
)

// worldToScreen projects the ground plane top-down with the arena center in
// the middle of the screen.
func worldToScreen(p mgl64.Vec3) (float32, float32) {
	return float32(common.BaseWidth/2 + p.X()*common.PixelsPerMeter),
		float32(common.BaseHeight/2 + p.Z()*common.PixelsPerMeter)
}

func screenToWorld(x, y float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(x - common.BaseWidth/2) / common.PixelsPerMeter,
		0,
		(y - common.BaseHeight/2) / common.PixelsPerMeter,
	}
}

func namedColor(name string) color.Color {
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	return colornames.Gray
}

func drawArena(screen *ebiten.Image, loop *system.CombatLoop, input *Input) {
	screen.Fill(groundColor)
	world := loop.World()

	cfg := world.Config()
	if half := cfg.Walls.HalfSize; half > 0 {
		x, y := worldToScreen(mgl64.Vec3{-half, 0, -half})
		size := float32(2 * half * common.PixelsPerMeter)
		vector.StrokeRect(screen, x, y, size, size, 3, wallColor, false)
	}
	cx, cy := worldToScreen(mgl64.Vec3{})
	vector.StrokeCircle(screen, cx, cy, float32(loop.Waves().SpawnRadius()*common.PixelsPerMeter), 1, ringColor, true)

	if s := world.Structure(); s != nil {
		drawBox(screen, s.Position(), s.HalfExtents(), structureColor)
	}

	now := loop.Clock().Now()
	for _, p := range loop.Scene().Proxies() {
		drawProxy(screen, p, now)
	}

	drawAim(screen, loop, input)
}

func drawBox(screen *ebiten.Image, center, half mgl64.Vec3, clr color.Color) {
	x, y := worldToScreen(center.Sub(half))
	w := float32(2 * half.X() * common.PixelsPerMeter)
	h := float32(2 * half.Z() * common.PixelsPerMeter)
	vector.DrawFilledRect(screen, x, y, w, h, clr, false)
}

func drawProxy(screen *ebiten.Image, p *component.Proxy, now float64) {
	clr := namedColor(p.Color)
	if p.Flashing(now) {
		clr = flashColor
	}
	ext := p.Extents()

	switch p.Kind {
	case "arrow", "quiver_arrow":
		if p.Kind == "quiver_arrow" {
			x, y := worldToScreen(p.Position)
			vector.DrawFilledCircle(screen, x, y, 1.5, clr, true)
			return
		}
		tip := p.Orientation.Rotate(mgl64.Vec3{0, 0, 1})
		tail := p.Position.Sub(tip.Mul(arrowDrawLength))
		x0, y0 := worldToScreen(tail)
		x1, y1 := worldToScreen(p.Position)
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
	default:
		drawBox(screen, p.Position, ext, clr)
		yaw := p.Yaw()
		nose := p.Position.Add(mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}.Mul(ext.Z() + 0.3))
		x0, y0 := worldToScreen(p.Position)
		x1, y1 := worldToScreen(nose)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, colornames.Black, true)
	}
}

func drawAim(screen *ebiten.Image, loop *system.CombatLoop, input *Input) {
	if input == nil || loop.GameOver() {
		return
	}
	in := input.Poll()
	x0, y0 := worldToScreen(in.AimOrigin)
	x1, y1 := worldToScreen(input.Cursor())
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, aimColor, true)

	draw := loop.Bow().DrawState()
	const barW, barH = 160, 10
	bx := float32(common.BaseWidth/2 - barW/2)
	by := float32(common.BaseHeight - 40)
	vector.StrokeRect(screen, bx, by, barW, barH, 1, colornames.White, false)
	if draw.Drawing {
		vector.DrawFilledRect(screen, bx, by, float32(draw.Strength*barW), barH, colornames.Gold, false)
	}
	if draw.CooldownRemaining > 0 {
		vector.DrawFilledRect(screen, bx, by+barH+2, barW, 3, colornames.Firebrick, false)
	}
}

func drawDebug(screen *ebiten.Image, loop *system.CombatLoop) {
	for _, b := range loop.World().Bodies() {
		if b.Kind() == physics.KindWall {
			continue
		}
		clr := colornames.Lime
		if b.IsStatic() {
			clr = colornames.Orange
		}
		half := b.HalfExtents()
		x, y := worldToScreen(b.Position().Sub(half))
		vector.StrokeRect(screen, x, y, float32(2*half.X()*common.PixelsPerMeter), float32(2*half.Z()*common.PixelsPerMeter), 1, clr, false)
	}
}
