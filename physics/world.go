package physics

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/bastion/ecs"
)

// ErrWorldLocked is returned for registry changes attempted while Step runs.
var ErrWorldLocked = errors.New("physics: world is stepping")

const (
	categoryDefault    uint = 1 << 0
	categoryProjectile uint = 1 << 1

	verticalSlop = 0.05
	groundDrag   = 10.0
)

type shapePair struct{ a, b *cp.Shape }

func makeShapePair(a, b *cp.Shape) shapePair {
	if a != nil && b != nil && b.HashId() < a.HashId() {
		a, b = b, a
	}
	return shapePair{a: a, b: b}
}

// World owns the Chipmunk space, the body registry and contact dispatch.
type World struct {
	cfg           Config
	space         *cp.Space
	ready         bool
	handlersReady bool

	materials   map[string]Material
	contacts    map[pairKey]ContactMaterial
	shapeToBody map[*cp.Shape]*Body
	reported    map[shapePair]bool
	bodies      []*Body

	ground    *Body
	structure *Body
	walls     []*Body

	accumulator float64
	stepping    bool
	inSpaceStep bool
	substeps    uint64
}

// NewWorld creates an uninitialized world. Call Init before use.
func NewWorld(cfg Config) *World {
	return &World{cfg: cfg.withDefaults()}
}

// Init builds the space, materials, contact handlers and static geometry.
// Calling it again is a no-op.
func (w *World) Init() error {
	if w == nil {
		return &ecs.ConfigurationError{Name: "world", Reason: "physics world is nil"}
	}
	if w.ready {
		return nil
	}

	materials := buildMaterials(w.cfg.Contacts)
	contacts := make(map[pairKey]ContactMaterial, len(w.cfg.Contacts))
	for _, c := range w.cfg.Contacts {
		if _, ok := materials[c.A]; !ok {
			return &ecs.ConfigurationError{Name: c.A, Reason: "unknown material in contact table"}
		}
		if _, ok := materials[c.B]; !ok {
			return &ecs.ConfigurationError{Name: c.B, Reason: "unknown material in contact table"}
		}
		contacts[makePairKey(c.A, c.B)] = c
	}

	space := cp.NewSpace()
	space.Iterations = uint(w.cfg.Iterations)
	space.SetGravity(cp.Vector{})

	w.space = space
	w.materials = materials
	w.contacts = contacts
	w.shapeToBody = make(map[*cp.Shape]*Body)
	w.reported = make(map[shapePair]bool)
	w.setupHandlers()

	w.ground = &Body{
		kind:     KindGround,
		material: materials[MaterialGround],
		body:     space.StaticBody,
		static:   true,
		world:    w,
	}
	w.ready = true

	if err := w.buildStructure(); err != nil {
		w.ready = false
		return fmt.Errorf("physics: build structure: %w", err)
	}
	if err := w.buildWalls(); err != nil {
		w.ready = false
		return fmt.Errorf("physics: build walls: %w", err)
	}

	log.Printf("PhysicsWorld: initialized timestep=%.4f maxSubSteps=%d gravity=%.2f contacts=%d", w.cfg.TimeStep, w.cfg.MaxSubSteps, w.cfg.Gravity, len(contacts))
	return nil
}

func (w *World) Ready() bool {
	return w != nil && w.ready
}

func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.cfg
}

// Material returns a named material. It fails with a ConfigurationError
// before Init or for an unknown name.
func (w *World) Material(name string) (Material, error) {
	if w == nil || !w.ready {
		return Material{}, &ecs.ConfigurationError{Name: name, Reason: "physics world not initialized"}
	}
	m, ok := w.materials[name]
	if !ok {
		return Material{}, &ecs.ConfigurationError{Name: name, Reason: "unknown material"}
	}
	return m, nil
}

// ContactMaterial returns the configured pair for two materials.
func (w *World) ContactMaterial(a, b string) (ContactMaterial, bool) {
	if w == nil || w.contacts == nil {
		return ContactMaterial{}, false
	}
	c, ok := w.contacts[makePairKey(a, b)]
	return c, ok
}

// Structure is the permanently static defended structure.
func (w *World) Structure() *Body {
	if w == nil {
		return nil
	}
	return w.structure
}

// Ground is the static ground plane at elevation 0.
func (w *World) Ground() *Body {
	if w == nil {
		return nil
	}
	return w.ground
}

// Bodies returns a snapshot of the registered bodies.
func (w *World) Bodies() []*Body {
	if w == nil || len(w.bodies) == 0 {
		return nil
	}
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) BodyCount() int {
	if w == nil {
		return 0
	}
	return len(w.bodies)
}

// Stepping reports whether a Step call is in progress.
func (w *World) Stepping() bool {
	return w != nil && w.stepping
}

// NewBody creates a body from def. The body is not simulated until AddBody.
func (w *World) NewBody(def BodyDef) (*Body, error) {
	m, err := w.Material(def.Material)
	if err != nil {
		return nil, err
	}
	hx, hy, hz := def.HalfExtents.X(), def.HalfExtents.Y(), def.HalfExtents.Z()
	if def.Radius <= 0 && (hx <= 0 || hz <= 0) {
		return nil, &ecs.ConfigurationError{Name: string(def.Kind), Reason: "body shape has no extent"}
	}

	static := def.Mass <= 0
	var body *cp.Body
	if static {
		body = cp.NewStaticBody()
	} else {
		moment := cp.MomentForBox(def.Mass, 2*hx, 2*hz)
		if def.Radius > 0 {
			moment = cp.MomentForCircle(def.Mass, 0, def.Radius, cp.Vector{})
		}
		if def.FixedRotation {
			moment = math.Inf(1)
		}
		body = cp.NewBody(def.Mass, moment)
	}
	body.SetPosition(cp.Vector{X: def.Position.X(), Y: def.Position.Z()})
	body.SetAngle(def.Yaw)

	var shape *cp.Shape
	if def.Radius > 0 {
		shape = cp.NewCircle(body, def.Radius, cp.Vector{})
		def.HalfExtents = mgl64.Vec3{def.Radius, hy, def.Radius}
	} else {
		shape = cp.NewBox(body, 2*hx, 2*hz, 0)
	}
	shape.SetFriction(m.Friction)
	shape.SetElasticity(m.Restitution)
	shape.SetCollisionType(m.collisionType)
	shape.SetSensor(def.Sensor)
	if m.Name == MaterialProjectile {
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryProjectile, cp.ALL_CATEGORIES&^categoryProjectile))
	} else {
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryDefault, cp.ALL_CATEGORIES))
	}

	b := &Body{
		kind:           def.Kind,
		owner:          def.Owner,
		material:       m,
		body:           body,
		shape:          shape,
		halfExtents:    def.HalfExtents,
		elevation:      def.Position.Y(),
		ballistic:      def.Ballistic && !static,
		bullet:         def.Bullet && !static,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		static:         static,
		prev:           body.Position(),
	}
	if !static {
		body.SetVelocity(def.Velocity.X(), def.Velocity.Z())
		if b.ballistic {
			b.vy = def.Velocity.Y()
		}
		body.SetPositionUpdateFunc(b.integratePosition)
		body.SetVelocityUpdateFunc(b.integrateVelocity(w.cfg.Gravity))
	}
	return b, nil
}

// AddBody registers b with the simulation.
func (w *World) AddBody(b *Body) error {
	if w == nil || !w.ready {
		return &ecs.ConfigurationError{Name: "world", Reason: "physics world not initialized"}
	}
	if b == nil || b.body == nil {
		return nil
	}
	if w.stepping {
		return fmt.Errorf("physics: add %s body: %w", b.kind, ErrWorldLocked)
	}
	if b.world == w {
		return nil
	}
	if b.world != nil {
		return fmt.Errorf("physics: %s body already belongs to another world", b.kind)
	}
	if b.body != w.space.StaticBody && !w.space.ContainsBody(b.body) {
		w.space.AddBody(b.body)
	}
	if b.shape != nil {
		w.space.AddShape(b.shape)
		w.shapeToBody[b.shape] = b
	}
	b.world = w
	w.bodies = append(w.bodies, b)
	return nil
}

// RemoveBody detaches b's subscription, then unregisters its shape and body.
// Removing an unregistered body is a no-op.
func (w *World) RemoveBody(b *Body) error {
	if w == nil || b == nil {
		return nil
	}
	if w.stepping {
		return fmt.Errorf("physics: remove %s body: %w", b.kind, ErrWorldLocked)
	}
	b.onContact = nil
	if b.world != w {
		return nil
	}
	if b.shape != nil {
		if w.space.ContainsShape(b.shape) {
			w.space.RemoveShape(b.shape)
		}
		delete(w.shapeToBody, b.shape)
		for pair := range w.reported {
			if pair.a == b.shape || pair.b == b.shape {
				delete(w.reported, pair)
			}
		}
	}
	if b.body != w.space.StaticBody && w.space.ContainsBody(b.body) {
		w.space.RemoveBody(b.body)
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
	return nil
}

// Subscribe routes contacts involving b to fn, replacing any previous
// subscription.
func (w *World) Subscribe(b *Body, fn CollisionFunc) {
	if w == nil || b == nil {
		return
	}
	b.onContact = fn
}

func (w *World) Unsubscribe(b *Body) {
	if b == nil {
		return
	}
	b.onContact = nil
}

// Freeze converts b to a static body with zero velocity and drops its
// subscription. Inside a running engine step the conversion is applied by a
// post-step callback, before Step returns.
func (w *World) Freeze(b *Body) {
	if w == nil || b == nil || b.body == nil || b.frozen {
		return
	}
	b.frozen = true
	b.onContact = nil
	b.ballistic = false
	b.bullet = false
	b.vy = 0

	convert := func() {
		b.body.SetVelocity(0, 0)
		b.body.SetAngularVelocity(0)
		b.body.SetType(cp.BODY_STATIC)
		b.static = true
	}
	if w.inSpaceStep {
		b.static = true
		w.space.AddPostStepCallback(func(*cp.Space, interface{}, interface{}) {
			convert()
		}, b, nil)
		return
	}
	convert()
}

// Step advances the simulation by dt seconds of wall clock using fixed
// substeps, at most MaxSubSteps per call. Leftover time carries over; a
// backlog beyond the cap is dropped. It returns the number of substeps run.
func (w *World) Step(dt float64) int {
	if w == nil || !w.ready || dt <= 0 || w.stepping {
		return 0
	}
	ts := w.cfg.TimeStep
	w.accumulator += dt
	steps := 0
	for w.accumulator+1e-9 >= ts && steps < w.cfg.MaxSubSteps {
		w.substep(ts)
		w.accumulator -= ts
		steps++
	}
	if w.accumulator >= ts {
		w.accumulator = 0
	}
	if w.accumulator < 0 {
		w.accumulator = 0
	}
	return steps
}

func (w *World) substep(ts float64) {
	w.stepping = true
	w.inSpaceStep = true
	w.space.Step(ts)
	w.inSpaceStep = false
	w.sweepBullets(ts)
	w.resolveGround(ts)
	w.stepping = false
	w.substeps++
}

func (w *World) setupHandlers() {
	if w == nil || w.space == nil || w.handlersReady {
		return
	}
	for i, a := range materialNames {
		for _, b := range materialNames[i:] {
			pair, ok := w.contacts[makePairKey(a, b)]
			if !ok {
				pair = ContactMaterial{A: a, B: b, Friction: -1}
			}
			handler := w.space.NewCollisionHandler(w.materials[a].collisionType, w.materials[b].collisionType)
			handler.UserData = pair
			handler.PreSolveFunc = w.preSolve
			handler.SeparateFunc = w.separate
		}
	}
	w.handlersReady = true
}

func (w *World) preSolve(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
	sa, sb := arb.Shapes()
	a, b := w.shapeToBody[sa], w.shapeToBody[sb]
	if a == nil || b == nil {
		return true
	}
	if !overlapsVertically(a, b, verticalSlop) {
		return false
	}
	key := makeShapePair(sa, sb)
	if !w.reported[key] {
		w.reported[key] = true
		set := arb.ContactPointSet()
		var point cp.Vector
		if set.Count > 0 {
			point = set.Points[0].PointA
		} else {
			point = a.body.Position()
		}
		n := arb.Normal()
		w.dispatch(a, b,
			mgl64.Vec3{point.X, a.elevation, point.Y},
			mgl64.Vec3{n.X, 0, n.Y})
	}
	pair, _ := userData.(ContactMaterial)
	return !pair.EventOnly()
}

func (w *World) separate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	sa, sb := arb.Shapes()
	delete(w.reported, makeShapePair(sa, sb))
}

// sweepBullets catches fast bodies that passed through a target during the
// last substep without the engine seeing an overlap.
func (w *World) sweepBullets(ts float64) {
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES&^categoryProjectile)
	for _, b := range w.Bodies() {
		if !b.bullet || b.static || b.onContact == nil {
			continue
		}
		cur := b.body.Position()
		if cur.Sub(b.prev).LengthSq() == 0 {
			continue
		}
		info := w.space.SegmentQueryFirst(b.prev, cur, 0, filter)
		if info.Shape == nil || info.Shape == b.shape {
			continue
		}
		other := w.shapeToBody[info.Shape]
		if other == nil {
			continue
		}
		elevation := b.elevation - b.vy*ts*(1-info.Alpha)
		if math.Abs(elevation-other.elevation) > b.halfExtents.Y()+other.halfExtents.Y()+verticalSlop {
			continue
		}
		key := makeShapePair(b.shape, info.Shape)
		if w.reported[key] {
			continue
		}
		w.reported[key] = true
		w.dispatch(b, other,
			mgl64.Vec3{info.Point.X, elevation, info.Point.Y},
			mgl64.Vec3{info.Normal.X, 0, info.Normal.Y})
	}
}

// resolveGround clamps ballistic bodies to the ground plane and reports the
// first touch to their subscriber.
func (w *World) resolveGround(ts float64) {
	for _, b := range w.Bodies() {
		if !b.ballistic || b.static {
			continue
		}
		if b.elevation-b.halfExtents.Y() > 0 {
			b.grounded = false
			continue
		}
		b.elevation = b.halfExtents.Y()
		if !b.grounded {
			b.grounded = true
			b.vy = 0
			p := b.body.Position()
			w.dispatch(b, w.ground, mgl64.Vec3{p.X, 0, p.Y}, mgl64.Vec3{0, 1, 0})
		}
		if b.static || b.frozen {
			continue
		}
		friction := b.material.Friction
		if c, ok := w.ContactMaterial(b.material.Name, MaterialGround); ok {
			friction = c.Friction
		}
		v := b.body.Velocity()
		b.body.SetVelocityVector(v.Mult(math.Max(0, 1-friction*groundDrag*ts)))
	}
}

func (w *World) dispatch(a, b *Body, point, normal mgl64.Vec3) {
	if fn := a.onContact; fn != nil {
		fn(Contact{Self: a, Other: b, Point: point, Normal: normal})
	}
	if fn := b.onContact; fn != nil {
		fn(Contact{Self: b, Other: a, Point: point, Normal: normal.Mul(-1)})
	}
}

func (w *World) buildStructure() error {
	s := w.cfg.Structure
	he := mgl64.Vec3{s.HalfExtents[0], s.HalfExtents[1], s.HalfExtents[2]}
	body, err := w.NewBody(BodyDef{
		Kind:        KindStructure,
		Material:    MaterialDefender,
		HalfExtents: he,
		Position:    mgl64.Vec3{s.Position[0], s.Position[1] + he.Y(), s.Position[2]},
	})
	if err != nil {
		return err
	}
	if err := w.AddBody(body); err != nil {
		return err
	}
	w.structure = body
	return nil
}

func (w *World) buildWalls() error {
	half := w.cfg.Walls.HalfSize
	if half <= 0 {
		return nil
	}
	const thickness = 0.25
	hh := w.cfg.Walls.HalfHeight
	if hh <= 0 {
		hh = 2
	}
	placements := []struct{ x, z, hx, hz float64 }{
		{0, half, half, thickness},
		{0, -half, half, thickness},
		{half, 0, thickness, half},
		{-half, 0, thickness, half},
	}
	for _, p := range placements {
		wall, err := w.NewBody(BodyDef{
			Kind:        KindWall,
			Material:    MaterialGround,
			HalfExtents: mgl64.Vec3{p.hx, hh, p.hz},
			Position:    mgl64.Vec3{p.x, hh, p.z},
		})
		if err != nil {
			return err
		}
		if err := w.AddBody(wall); err != nil {
			return err
		}
		w.walls = append(w.walls, wall)
	}
	return nil
}
