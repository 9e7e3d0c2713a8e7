package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs/system"
)

// bot is a scripted archer. It draws to full strength, leads nothing and
// compensates for drop against the nearest attacker.
type bot struct {
	loop    *system.CombatLoop
	origin  mgl64.Vec3
	gravity float64
	draw    float64

	held        bool
	heldFor     float64
	target      mgl64.Vec3
	upgradeCost int
}

// newBot builds a bot that buys an upgrade whenever it can afford
// upgradeCost. Zero disables upgrades.
func newBot(origin mgl64.Vec3, gravity, draw float64, upgradeCost int) *bot {
	return &bot{origin: origin, gravity: gravity, draw: draw, upgradeCost: upgradeCost}
}

// step decides this tick's input. It runs before the loop's Tick.
func (b *bot) step(dt float64) {
	target, ok := b.nearest()
	if !ok {
		b.held = false
		b.heldFor = 0
		return
	}
	b.target = target
	if !b.held {
		if b.loop.Bow().DrawState().CooldownRemaining > 0 {
			return
		}
		b.held = true
		b.heldFor = 0
		return
	}
	b.heldFor += dt
	if b.heldFor >= b.draw {
		b.held = false
	}
}

func (b *bot) nearest() (mgl64.Vec3, bool) {
	attackers := b.loop.Attackers()
	best := math.Inf(1)
	var out mgl64.Vec3
	for _, e := range attackers.Entities() {
		a, ok := attackers.Get(e)
		if !ok || a.IsDead() || a.Body == nil {
			continue
		}
		p := a.Body.Position()
		d := p.Sub(b.origin).LenSqr()
		if d < best {
			best = d
			out = p
		}
	}
	return out, !math.IsInf(best, 1)
}

func (b *bot) Poll() system.InputState {
	speed := b.loop.Bow().ReleaseVelocity(b.loop.Bow().Strength())
	return system.InputState{
		TriggerHeld:    b.held,
		AimOrigin:      b.origin,
		AimDirection:   ballisticAim(b.origin, b.target, speed, b.gravity),
		UpgradePressed: b.upgradeCost > 0 && b.loop.State().Resources >= b.upgradeCost,
	}
}

// ballisticAim returns the low-arc launch direction that reaches target at
// speed, or the straight line when the target is out of reach.
func ballisticAim(origin, target mgl64.Vec3, speed, gravity float64) mgl64.Vec3 {
	d := target.Sub(origin)
	flat := math.Hypot(d.X(), d.Z())
	if flat < 1e-6 || speed <= 0 {
		if d.LenSqr() < 1e-12 {
			return mgl64.Vec3{0, 0, 1}
		}
		return d.Normalize()
	}
	g := math.Abs(gravity)
	v2 := speed * speed
	disc := v2*v2 - g*(g*flat*flat+2*d.Y()*v2)
	pitch := math.Atan2(d.Y(), flat)
	if disc >= 0 && g > 0 {
		pitch = math.Atan((v2 - math.Sqrt(disc)) / (g * flat))
	}
	c := math.Cos(pitch)
	return mgl64.Vec3{d.X() / flat * c, math.Sin(pitch), d.Z() / flat * c}
}
