package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/ecs/system"
)

const (
	defaultLoft = 8.0
	maxLoft     = 45.0
	// aimHeight is the height the cursor targets, roughly an attacker's
	// chest.
	aimHeight = 0.75
)

// Input reads mouse and keyboard once per frame and hands the combat loop
// a snapshot when polled.
type Input struct {
	origin mgl64.Vec3
	loft   float64
	state  system.InputState
	cursor mgl64.Vec3
}

func NewInput(origin mgl64.Vec3) *Input {
	return &Input{origin: origin, loft: defaultLoft}
}

func (i *Input) Update() {
	if i == nil {
		return
	}
	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || ebiten.IsKeyPressed(ebiten.KeySpace)
	ticks := max(inpututil.MouseButtonPressDuration(ebiten.MouseButtonLeft), inpututil.KeyPressDuration(ebiten.KeySpace))

	_, wy := ebiten.Wheel()
	i.loft = common.Clamp(i.loft+wy, 0, maxLoft)

	mx, my := ebiten.CursorPosition()
	i.cursor = screenToWorld(float64(mx), float64(my))

	i.state = system.InputState{
		TriggerHeld:    held,
		HoldDuration:   float64(ticks) / float64(ebiten.TPS()),
		AimOrigin:      i.origin,
		AimDirection:   aimDirection(i.origin, i.cursor, i.loft),
		UpgradePressed: ebiten.IsKeyPressed(ebiten.KeyU),
	}
}

func (i *Input) Poll() system.InputState {
	if i == nil {
		return system.InputState{}
	}
	return i.state
}

// Cursor is the ground point under the mouse.
func (i *Input) Cursor() mgl64.Vec3 {
	if i == nil {
		return mgl64.Vec3{}
	}
	return i.cursor
}

func (i *Input) Loft() float64 {
	if i == nil {
		return 0
	}
	return i.loft
}

// aimDirection points from origin toward target at aimHeight, pitched up by
// loft degrees.
func aimDirection(origin, target mgl64.Vec3, loft float64) mgl64.Vec3 {
	dx := target.X() - origin.X()
	dz := target.Z() - origin.Z()
	dist := math.Hypot(dx, dz)
	if dist < 1e-6 {
		return mgl64.Vec3{0, 0, 1}
	}
	pitch := math.Atan2(aimHeight-origin.Y(), dist) + loft*math.Pi/180
	c := math.Cos(pitch)
	return mgl64.Vec3{dx / dist * c, math.Sin(pitch), dz / dist * c}
}
