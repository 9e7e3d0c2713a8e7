package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/bastion/ecs"
)

// Kind tags what a body belongs to.
type Kind string

const (
	KindGround     Kind = "ground"
	KindStructure  Kind = "structure"
	KindWall       Kind = "wall"
	KindAttacker   Kind = "attacker"
	KindProjectile Kind = "projectile"
	KindDecoration Kind = "decoration"
)

// BodyDef describes a body to create. The engine simulates the ground plane
// (X, Z); the Y axis is elevation, integrated by the world for ballistic
// bodies.
type BodyDef struct {
	Kind     Kind
	Owner    ecs.Entity
	Material string

	// Mass 0 creates a static body.
	Mass float64
	// HalfExtents of the box shape. Radius > 0 creates a cylinder instead,
	// with HalfExtents.Y() as its half height.
	HalfExtents mgl64.Vec3
	Radius      float64

	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Yaw      float64

	LinearDamping  float64
	AngularDamping float64
	FixedRotation  bool
	// Ballistic bodies fall under gravity and report ground contact.
	Ballistic bool
	// Bullet bodies sweep their path each step so they cannot pass through
	// thin targets between steps.
	Bullet bool
	// Sensor bodies report contacts but never push other bodies. Ground
	// contact still applies.
	Sensor bool
}

// CollisionFunc receives contacts for a subscribed body.
type CollisionFunc func(Contact)

// Contact is one collision reported to a subscriber. Self is the subscribed
// body.
type Contact struct {
	Self   *Body
	Other  *Body
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// Body is a rigid body registered in a World. It carries the owning entity's
// handle rather than a pointer to the entity.
type Body struct {
	kind     Kind
	owner    ecs.Entity
	material Material

	body  *cp.Body
	shape *cp.Shape

	halfExtents mgl64.Vec3
	elevation   float64
	vy          float64
	ballistic   bool
	bullet      bool
	grounded    bool
	prev        cp.Vector

	linearDamping  float64
	angularDamping float64

	static    bool
	frozen    bool
	onContact CollisionFunc
	world     *World
}

func (b *Body) Kind() Kind {
	if b == nil {
		return ""
	}
	return b.kind
}

func (b *Body) Owner() ecs.Entity {
	if b == nil {
		return 0
	}
	return b.owner
}

func (b *Body) Material() string {
	if b == nil {
		return ""
	}
	return b.material.Name
}

// Position returns the body center; Y is elevation.
func (b *Body) Position() mgl64.Vec3 {
	if b == nil || b.body == nil {
		return mgl64.Vec3{}
	}
	p := b.body.Position()
	return mgl64.Vec3{p.X, b.elevation, p.Y}
}

// SetPosition teleports the body. It must not be called on a static body
// once it is registered.
func (b *Body) SetPosition(p mgl64.Vec3) {
	if b == nil || b.body == nil {
		return
	}
	b.body.SetPosition(cp.Vector{X: p.X(), Y: p.Z()})
	b.prev = b.body.Position()
	b.elevation = p.Y()
}

// Velocity is zero for static bodies.
func (b *Body) Velocity() mgl64.Vec3 {
	if b == nil || b.body == nil || b.IsStatic() {
		return mgl64.Vec3{}
	}
	v := b.body.Velocity()
	return mgl64.Vec3{v.X, b.vy, v.Y}
}

// SetVelocity sets the planar velocity and, for ballistic bodies, the
// vertical one.
func (b *Body) SetVelocity(v mgl64.Vec3) {
	if b == nil || b.body == nil || b.IsStatic() {
		return
	}
	b.body.SetVelocity(v.X(), v.Z())
	if b.ballistic {
		b.vy = v.Y()
	}
}

// SetPlanarVelocity replaces the X/Z velocity and keeps the vertical one.
func (b *Body) SetPlanarVelocity(x, z float64) {
	if b == nil || b.body == nil || b.IsStatic() {
		return
	}
	b.body.SetVelocity(x, z)
}

// Mass is 0 for static bodies.
func (b *Body) Mass() float64 {
	if b == nil || b.body == nil || b.IsStatic() {
		return 0
	}
	return b.body.Mass()
}

func (b *Body) IsStatic() bool {
	if b == nil {
		return true
	}
	return b.static
}

// Frozen reports whether Freeze was requested, even if the conversion is
// still waiting for the running step to finish.
func (b *Body) Frozen() bool {
	return b != nil && b.frozen
}

// Yaw is the rotation about the vertical axis.
func (b *Body) Yaw() float64 {
	if b == nil || b.body == nil {
		return 0
	}
	return b.body.Angle()
}

func (b *Body) HalfExtents() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.halfExtents
}

func (b *Body) Grounded() bool {
	return b != nil && b.grounded
}

func (b *Body) Subscribed() bool {
	return b != nil && b.onContact != nil
}

// overlapsVertically reports whether the vertical spans of a and b meet.
func overlapsVertically(a, b *Body, slop float64) bool {
	if a.kind == KindGround || b.kind == KindGround {
		return true
	}
	gap := math.Abs(a.elevation - b.elevation)
	return gap <= a.halfExtents.Y()+b.halfExtents.Y()+slop
}

func (b *Body) integratePosition(body *cp.Body, dt float64) {
	b.prev = body.Position()
	cp.BodyUpdatePosition(body, dt)
	if b.ballistic && !b.static {
		b.elevation += b.vy * dt
	}
}

func (b *Body) integrateVelocity(gravity float64) cp.BodyVelocityFunc {
	return func(body *cp.Body, _ cp.Vector, damping float64, dt float64) {
		linear := math.Pow(1-clampDamping(b.linearDamping), dt)
		angular := math.Pow(1-clampDamping(b.angularDamping), dt)
		cp.BodyUpdateVelocity(body, cp.Vector{}, damping*linear, dt)
		if linear > 0 {
			body.SetAngularVelocity(body.AngularVelocity() * angular / linear)
		}
		if b.ballistic && !b.static && !b.grounded {
			b.vy = (b.vy + gravity*dt) * linear
		}
	}
}

func clampDamping(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
