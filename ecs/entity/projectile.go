package entity

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
)

type ProjectileState int

const (
	ProjectileFlying ProjectileState = iota
	ProjectileStuck
)

func (s ProjectileState) String() string {
	if s == ProjectileStuck {
		return "stuck"
	}
	return "flying"
}

// ProjectileDef describes one shot.
type ProjectileDef struct {
	Template       component.ProxyTemplate
	Position       mgl64.Vec3
	Velocity       mgl64.Vec3
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	Strength       float64
	Damage         int
	Now            float64
}

// Projectile is a fired arrow. It owns its body and proxy.
type Projectile struct {
	Handle    ecs.Entity
	Body      *physics.Body
	Proxy     *component.Proxy
	SpawnTime float64
	StuckTime float64
	Strength  float64
	Damage    int
	State     ProjectileState

	orientation mgl64.Quat
	released    bool
	world       *physics.World
	scene       *component.Scene
}

// NewProjectile inserts the projectile into arena and registers its body.
// The caller subscribes the body to contacts.
func NewProjectile(arena *ecs.Arena[*Projectile], world *physics.World, scene *component.Scene, def ProjectileDef) (*Projectile, error) {
	if arena == nil || world == nil {
		return nil, &ecs.ConfigurationError{Name: def.Template.Kind, Reason: "projectile needs an arena and a physics world"}
	}
	if err := def.Template.Validate(); err != nil {
		return nil, fmt.Errorf("projectile: %w", err)
	}
	p := &Projectile{
		SpawnTime:   def.Now,
		Strength:    def.Strength,
		Damage:      def.Damage,
		orientation: headingQuat(def.Velocity),
		world:       world,
		scene:       scene,
	}
	p.Handle = arena.Insert(p)

	shape := def.Template.Shape
	body, err := world.NewBody(physics.BodyDef{
		Kind:           physics.KindProjectile,
		Owner:          p.Handle,
		Material:       physics.MaterialProjectile,
		Mass:           def.Mass,
		HalfExtents:    shape.HalfExtents,
		Radius:         shape.Radius,
		Position:       def.Position,
		Velocity:       def.Velocity,
		LinearDamping:  def.LinearDamping,
		AngularDamping: def.AngularDamping,
		Ballistic:      true,
		Bullet:         true,
	})
	if err != nil {
		arena.Remove(p.Handle)
		return nil, fmt.Errorf("projectile: create body: %w", err)
	}
	if err := world.AddBody(body); err != nil {
		arena.Remove(p.Handle)
		return nil, fmt.Errorf("projectile: add body: %w", err)
	}
	p.Body = body
	p.Proxy = def.Template.Instantiate(1)
	p.Proxy.Offset = mgl64.Vec3{}
	p.Proxy.Sync(def.Position, p.orientation)
	scene.Attach(p.Proxy)
	return p, nil
}

// Stick freezes the projectile in place. Its body becomes static and loses
// its contact subscription.
func (p *Projectile) Stick(now float64) {
	if p == nil || p.State == ProjectileStuck {
		return
	}
	p.State = ProjectileStuck
	p.StuckTime = now
	p.world.Freeze(p.Body)
}

func (p *Projectile) Age(now float64) float64 {
	if p == nil {
		return 0
	}
	return now - p.SpawnTime
}

// DistanceFromOrigin is the straight-line distance from the world origin.
func (p *Projectile) DistanceFromOrigin() float64 {
	if p == nil || p.Body == nil {
		return 0
	}
	return p.Body.Position().Len()
}

// SyncProxy mirrors the body pose. A flying arrow points along its velocity.
func (p *Projectile) SyncProxy() {
	if p == nil || p.Body == nil {
		return
	}
	if p.State == ProjectileFlying {
		if v := p.Body.Velocity(); v.LenSqr() > 1e-9 {
			p.orientation = headingQuat(v)
		}
	}
	p.Proxy.Sync(p.Body.Position(), p.orientation)
}

// Release unregisters the body and detaches the proxy. Only the first call
// does anything.
func (p *Projectile) Release() bool {
	if p == nil || p.released {
		return false
	}
	p.released = true
	if p.Body != nil {
		if err := p.world.RemoveBody(p.Body); err != nil {
			log.Printf("Projectile: remove body %v: %v", p.Handle, err)
		}
	}
	p.scene.Detach(p.Proxy)
	p.Body = nil
	p.Proxy = nil
	return true
}

func (p *Projectile) Released() bool {
	return p != nil && p.released
}

func headingQuat(v mgl64.Vec3) mgl64.Quat {
	if v.LenSqr() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, v.Normalize())
}
