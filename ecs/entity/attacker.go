package entity

import (
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
)

const (
	CueEnemyAttack = "enemyAttack"
	CueEnemyHit    = "enemyHit"
	CueEnemyDie    = "enemyDie"
	CueTowerHit    = "towerHit"

	HitFlashSeconds = 0.15
	FacingSlerp     = 0.1
)

// CuePlayer plays a named sound cue. Failures are the player's concern.
type CuePlayer interface {
	Play(cue string)
}

type AttackerState int

const (
	AttackerSpawned AttackerState = iota
	AttackerSeeking
	AttackerAttacking
	AttackerDead
)

func (s AttackerState) String() string {
	switch s {
	case AttackerSpawned:
		return "spawned"
	case AttackerSeeking:
		return "seeking"
	case AttackerAttacking:
		return "attacking"
	case AttackerDead:
		return "dead"
	}
	return "unknown"
}

// AttackerDef is everything needed to spawn one attacker.
type AttackerDef struct {
	Template      component.ProxyTemplate
	Stats         component.WaveDefinition
	Position      mgl64.Vec3
	AttackRange   float64
	LinearDamping float64
}

// Attacker is one spawned enemy. It owns its body and proxy.
type Attacker struct {
	Handle ecs.Entity
	Type   string
	Body   *physics.Body
	Proxy  *component.Proxy

	Health         int
	Speed          float64
	AttackCooldown float64
	AttackDamage   int
	AttackRate     float64
	AttackRangeSq  float64
	Scale          float64
	ScoreValue     int
	ResourceValue  int

	state  AttackerState
	dead   bool
	torn   bool
	facing mgl64.Quat

	world *physics.World
	scene *component.Scene
	audio CuePlayer
}

// NewAttacker validates the template, inserts the attacker into arena, then
// creates and registers its body and proxy. On error nothing is left behind.
func NewAttacker(arena *ecs.Arena[*Attacker], world *physics.World, scene *component.Scene, audio CuePlayer, def AttackerDef) (*Attacker, error) {
	if arena == nil || world == nil {
		return nil, &ecs.ConfigurationError{Name: def.Stats.AttackerType, Reason: "attacker needs an arena and a physics world"}
	}
	if err := def.Template.Validate(); err != nil {
		return nil, fmt.Errorf("attacker: %w", err)
	}
	scale := def.Stats.Scale
	if scale <= 0 {
		scale = 1
	}
	a := &Attacker{
		Type:          def.Stats.AttackerType,
		Health:        def.Stats.Health,
		Speed:         def.Stats.Speed,
		AttackDamage:  def.Stats.AttackDamage,
		AttackRate:    def.Stats.AttackRate,
		AttackRangeSq: def.AttackRange * def.AttackRange,
		Scale:         scale,
		ScoreValue:    def.Stats.ScoreValue,
		ResourceValue: def.Stats.ResourceValue,
		facing:        mgl64.QuatIdent(),
		world:         world,
		scene:         scene,
		audio:         audio,
	}
	a.Handle = arena.Insert(a)

	shape := def.Template.ScaledShape(scale)
	mass := def.Template.Mass * scale * scale * scale
	if mass <= 0 {
		mass = 5
	}
	body, err := world.NewBody(physics.BodyDef{
		Kind:          physics.KindAttacker,
		Owner:         a.Handle,
		Material:      physics.MaterialAttacker,
		Mass:          mass,
		HalfExtents:   shape.HalfExtents,
		Radius:        shape.Radius,
		Position:      mgl64.Vec3{def.Position.X(), shape.HalfExtents.Y(), def.Position.Z()},
		LinearDamping: def.LinearDamping,
		FixedRotation: true,
	})
	if err != nil {
		arena.Remove(a.Handle)
		return nil, fmt.Errorf("attacker: create body: %w", err)
	}
	if err := world.AddBody(body); err != nil {
		arena.Remove(a.Handle)
		return nil, fmt.Errorf("attacker: add body: %w", err)
	}
	a.Body = body
	a.Proxy = def.Template.Instantiate(scale)
	a.Proxy.Sync(body.Position(), a.facing)
	scene.Attach(a.Proxy)
	return a, nil
}

func (a *Attacker) State() AttackerState {
	if a == nil {
		return AttackerDead
	}
	return a.state
}

func (a *Attacker) IsDead() bool {
	return a == nil || a.dead
}

// TornDown reports whether Die has run.
func (a *Attacker) TornDown() bool {
	return a != nil && a.torn
}

// Facing is the smoothed heading.
func (a *Attacker) Facing() mgl64.Quat {
	if a == nil {
		return mgl64.QuatIdent()
	}
	return a.facing
}

// Update runs one AI tick toward target. It returns the structure damage
// dealt this tick, already applied to state.
func (a *Attacker) Update(dt float64, target mgl64.Vec3, state *component.GameState) int {
	if a == nil || a.dead || a.Body == nil {
		return 0
	}
	a.AttackCooldown -= dt

	pos := a.Body.Position()
	dx := target.X() - pos.X()
	dz := target.Z() - pos.Z()
	distSq := dx*dx + dz*dz

	dealt := 0
	if distSq <= a.AttackRangeSq {
		a.Body.SetPlanarVelocity(0, 0)
		a.state = AttackerAttacking
		a.face(dx, dz)
		if a.AttackCooldown <= 0 {
			a.AttackCooldown = a.AttackRate
			dealt = a.AttackDamage
			state.ApplyStructureDamage(dealt)
			a.play(CueEnemyAttack)
			a.play(CueTowerHit)
		}
	} else {
		dist := math.Sqrt(distSq)
		vx := dx / dist * a.Speed
		vz := dz / dist * a.Speed
		a.Body.SetPlanarVelocity(vx, vz)
		a.state = AttackerSeeking
		a.face(vx, vz)
	}
	a.SyncProxy()
	return dealt
}

func (a *Attacker) face(dx, dz float64) {
	if dx == 0 && dz == 0 {
		return
	}
	want := mgl64.QuatRotate(math.Atan2(dx, dz), mgl64.Vec3{0, 1, 0})
	a.facing = mgl64.QuatSlerp(a.facing, want, FacingSlerp).Normalize()
}

// SyncProxy mirrors the body pose onto the proxy.
func (a *Attacker) SyncProxy() {
	if a == nil || a.Body == nil {
		return
	}
	a.Proxy.Sync(a.Body.Position(), a.facing)
}

// TakeDamage subtracts amount, flashes the proxy and marks the attacker dead
// once health reaches zero. It reports whether this hit was the killing one.
// Teardown is left to Die.
func (a *Attacker) TakeDamage(amount int, now float64) bool {
	if a == nil || a.dead || amount <= 0 {
		return false
	}
	a.Health -= amount
	a.Proxy.Flash(now, HitFlashSeconds)
	a.play(CueEnemyHit)
	if a.Health <= 0 {
		a.dead = true
		a.state = AttackerDead
		return true
	}
	return false
}

// Die detaches and releases the body and proxy. Only the first call does
// anything; it reports whether it tore the attacker down.
func (a *Attacker) Die() bool {
	if a == nil || a.torn {
		return false
	}
	a.torn = true
	a.dead = true
	a.state = AttackerDead
	if a.Body != nil {
		if err := a.world.RemoveBody(a.Body); err != nil {
			log.Printf("Attacker: remove body %v: %v", a.Handle, err)
		}
	}
	a.scene.Detach(a.Proxy)
	a.Body = nil
	a.Proxy = nil
	a.play(CueEnemyDie)
	return true
}

func (a *Attacker) play(cue string) {
	if a.audio != nil {
		a.audio.Play(cue)
	}
}
