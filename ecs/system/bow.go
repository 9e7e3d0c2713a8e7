package system

import (
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/entity"
	"github.com/milk9111/bastion/physics"
	"github.com/milk9111/bastion/prefabs"
)

// DamageSink applies projectile hits to attackers by handle. It must only
// mark; teardown happens in the owner's flush.
type DamageSink interface {
	ApplyHit(target ecs.Entity, amount int, now float64) bool
}

// BowSystem owns the draw/release state machine and every fired projectile.
type BowSystem struct {
	spec   prefabs.BowSpec
	world  *physics.World
	scene  *component.Scene
	assets Assets
	audio  Audio
	clock  *Clock
	sink   DamageSink

	arrows   *ecs.Arena[*entity.Projectile]
	removals ecs.RemovalQueue
	draw     component.DrawState

	bonusDamage  int
	prevHeld     bool
	lastVelocity float64
	fired        int
	released     int
}

func NewBowSystem(spec prefabs.BowSpec, world *physics.World, scene *component.Scene, assets Assets, audio Audio, clock *Clock, sink DamageSink) *BowSystem {
	if audio == nil {
		audio = nopAudio{}
	}
	return &BowSystem{
		spec:   spec,
		world:  world,
		scene:  scene,
		assets: assets,
		audio:  audio,
		clock:  clock,
		sink:   sink,
		arrows: ecs.NewArena[*entity.Projectile](),
	}
}

// SetSpec swaps in reloaded tuning. Flying arrows keep their values.
func (b *BowSystem) SetSpec(spec prefabs.BowSpec) {
	if b == nil {
		return
	}
	b.spec = spec
}

func (b *BowSystem) SetBonusDamage(n int) {
	if b == nil {
		return
	}
	b.bonusDamage = max(0, n)
}

func (b *BowSystem) DrawState() component.DrawState {
	if b == nil {
		return component.DrawState{}
	}
	return b.draw
}

func (b *BowSystem) Strength() float64 {
	if b == nil {
		return 0
	}
	return b.draw.Strength
}

// LastReleaseVelocity is the speed of the most recent shot.
func (b *BowSystem) LastReleaseVelocity() float64 {
	if b == nil {
		return 0
	}
	return b.lastVelocity
}

func (b *BowSystem) ProjectileCount() int {
	if b == nil {
		return 0
	}
	return b.arrows.Len()
}

func (b *BowSystem) Projectile(e ecs.Entity) (*entity.Projectile, bool) {
	if b == nil {
		return nil, false
	}
	return b.arrows.Get(e)
}

func (b *BowSystem) Projectiles() []ecs.Entity {
	if b == nil {
		return nil
	}
	return b.arrows.Entities()
}

func (b *BowSystem) PendingRemovals() int {
	if b == nil {
		return 0
	}
	return b.removals.Len()
}

// Fired and Released count spawned and torn down projectiles.
func (b *BowSystem) Fired() int {
	if b == nil {
		return 0
	}
	return b.fired
}

func (b *BowSystem) Released() int {
	if b == nil {
		return 0
	}
	return b.released
}

// ReleaseVelocity maps a draw strength onto launch speed.
func (b *BowSystem) ReleaseVelocity(strength float64) float64 {
	if b == nil {
		return 0
	}
	return common.Lerp(b.spec.MinVelocity, b.spec.MaxVelocity, common.Clamp01(strength))
}

// Update runs the per-tick maintenance: draw state from input, pose sync and
// the age/distance sweep. Removals wait for Flush.
func (b *BowSystem) Update(dt float64, in InputState) {
	if b == nil {
		return
	}
	now := b.clock.Now()
	b.draw.Tick(dt)

	switch {
	case in.TriggerHeld && !b.prevHeld:
		b.Press(now - max(0, in.HoldDuration))
	case !in.TriggerHeld && b.prevHeld:
		b.Release(in.AimOrigin, in.AimDirection)
	}
	b.prevHeld = in.TriggerHeld

	if b.draw.Drawing {
		b.draw.Advance(now, b.spec.MaxDrawTime)
	}
	b.syncProxies()
	b.sweep(now)
}

// Press starts drawing at start. Pressing while already drawing keeps the
// original start time.
func (b *BowSystem) Press(start float64) {
	if b == nil || b.draw.Drawing {
		return
	}
	b.draw.Begin(start)
	b.audio.Play(CueBowDraw)
}

// Release fires if the cooldown has expired. During cooldown, or when the
// shot cannot be spawned, it is a no-op and the bow stays drawn. It reports
// whether a projectile was spawned.
func (b *BowSystem) Release(origin, aim mgl64.Vec3) bool {
	if b == nil || !b.draw.Drawing {
		return false
	}
	if b.draw.CooldownRemaining > 0 {
		return false
	}
	now := b.clock.Now()
	strength := b.draw.Advance(now, b.spec.MaxDrawTime)
	velocity := b.ReleaseVelocity(strength)

	if err := b.fire(now, origin, aim, strength, velocity); err != nil {
		log.Printf("Bow: fire failed: %v", err)
		return false
	}
	b.draw.Reset()
	b.draw.CooldownRemaining = b.spec.Cooldown
	b.lastVelocity = velocity
	b.audio.Play(CueBowRelease)
	return true
}

func (b *BowSystem) fire(now float64, origin, aim mgl64.Vec3, strength, velocity float64) error {
	tmpl, ok := b.assets.Template(b.spec.Projectile)
	if !ok {
		return &ecs.ResourceMissingError{Kind: b.spec.Projectile}
	}
	if aim.LenSqr() < 1e-12 {
		return &ecs.ConfigurationError{Name: "aim", Reason: "zero aim direction"}
	}
	dir := aim.Normalize()
	damage := b.spec.BaseDamage + b.bonusDamage + int(math.Round(strength*b.spec.BonusFactor))

	p, err := entity.NewProjectile(b.arrows, b.world, b.scene, entity.ProjectileDef{
		Template:       tmpl,
		Position:       origin.Add(dir.Mul(b.spec.SpawnOffset)),
		Velocity:       dir.Mul(velocity),
		Mass:           b.spec.ArrowMass,
		LinearDamping:  b.spec.LinearDamping,
		AngularDamping: b.spec.AngularDamping,
		Strength:       strength,
		Damage:         damage,
		Now:            now,
	})
	if err != nil {
		return fmt.Errorf("bow: spawn projectile: %w", err)
	}
	b.world.Subscribe(p.Body, b.contactHandler(p.Handle))
	b.fired++
	return nil
}

// contactHandler runs inside the physics step. It only marks: damage goes
// through the sink, teardown through the removal queue.
func (b *BowSystem) contactHandler(handle ecs.Entity) physics.CollisionFunc {
	return func(c physics.Contact) {
		p, ok := b.arrows.Get(handle)
		if !ok || p.State != entity.ProjectileFlying || b.removals.Contains(handle) {
			return
		}
		other := c.Other
		switch {
		case other == nil:
			log.Printf("Bow: projectile %v contact without a target, discarding", handle)
			b.removals.Push(handle)
		case other.Kind() == physics.KindAttacker:
			if b.sink != nil {
				b.sink.ApplyHit(other.Owner(), p.Damage, b.clock.Now())
			}
			b.audio.Play(CueArrowHit)
			b.removals.Push(handle)
		case other.IsStatic():
			p.Stick(b.clock.Now())
			b.audio.Play(CueArrowHit)
		default:
			b.removals.Push(handle)
		}
	}
}

func (b *BowSystem) syncProxies() {
	b.arrows.Each(func(_ ecs.Entity, p *entity.Projectile) {
		p.SyncProxy()
	})
}

func (b *BowSystem) sweep(now float64) {
	b.arrows.Each(func(e ecs.Entity, p *entity.Projectile) {
		if b.removals.Contains(e) {
			return
		}
		age := p.Age(now)
		switch {
		case p.State == entity.ProjectileFlying && b.spec.MaxFlightAge > 0 && age > b.spec.MaxFlightAge:
			b.removals.Push(e)
		case p.State == entity.ProjectileStuck && age > b.spec.StuckAge:
			b.removals.Push(e)
		case b.spec.MaxDistance > 0 && p.DistanceFromOrigin() > b.spec.MaxDistance:
			b.removals.Push(e)
		}
	})
}

// Flush tears down every queued projectile exactly once and returns how many
// were released. An empty queue is a no-op.
func (b *BowSystem) Flush() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, e := range b.removals.Drain() {
		p, ok := b.arrows.Get(e)
		if !ok {
			continue
		}
		b.world.Unsubscribe(p.Body)
		if p.Release() {
			n++
		}
		b.arrows.Remove(e)
	}
	b.released += n
	return n
}

// Clear releases every projectile, used when a run restarts.
func (b *BowSystem) Clear() {
	if b == nil {
		return
	}
	for _, e := range b.arrows.Entities() {
		b.removals.Push(e)
	}
	b.Flush()
	b.draw = component.DrawState{}
	b.prevHeld = false
}
