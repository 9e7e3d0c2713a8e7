package system

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
	"github.com/milk9111/bastion/prefabs"
)

type decorationPhase int

const (
	decorationIdle decorationPhase = iota
	decorationContainerFalling
	decorationArrowsFalling
	decorationSettled
)

type decorationItem struct {
	body  *physics.Body
	proxy *component.Proxy
}

// DecorationSystem drops the quiver beside the structure, then fills it with
// arrows. Everything is frozen in place once it has settled.
type DecorationSystem struct {
	spec  prefabs.DecorationSpec
	world *physics.World
	scene *component.Scene
	clock *Clock

	items     *ecs.Arena[*decorationItem]
	container ecs.Entity
	arrows    []ecs.Entity
	phase     decorationPhase
	phaseAt   float64
}

func NewDecorationSystem(spec prefabs.DecorationSpec, world *physics.World, scene *component.Scene, clock *Clock) *DecorationSystem {
	return &DecorationSystem{
		spec:  spec,
		world: world,
		scene: scene,
		clock: clock,
		items: ecs.NewArena[*decorationItem](),
	}
}

// Begin drops the container. Calling it again after a Clear starts over.
func (d *DecorationSystem) Begin() error {
	if d == nil || d.phase != decorationIdle {
		return nil
	}
	pos := d.spec.PositionVec()
	tmpl := d.spec.Container.Template("quiver")
	h, err := d.drop(tmpl, physics.MaterialContainer, pos.Add(mgl64.Vec3{0, d.spec.DropHeight + tmpl.Shape.HalfExtents.Y(), 0}), false)
	if err != nil {
		return fmt.Errorf("decoration: drop container: %w", err)
	}
	d.container = h
	d.phase = decorationContainerFalling
	d.phaseAt = d.clock.Now()
	return nil
}

func (d *DecorationSystem) drop(tmpl component.ProxyTemplate, material string, at mgl64.Vec3, sensor bool) (ecs.Entity, error) {
	if err := tmpl.Validate(); err != nil {
		return 0, err
	}
	item := &decorationItem{}
	h := d.items.Insert(item)
	body, err := d.world.NewBody(physics.BodyDef{
		Kind:          physics.KindDecoration,
		Owner:         h,
		Material:      material,
		Mass:          tmpl.Mass,
		HalfExtents:   tmpl.Shape.HalfExtents,
		Radius:        tmpl.Shape.Radius,
		Position:      at,
		FixedRotation: true,
		Ballistic:     true,
		Sensor:        sensor,
	})
	if err == nil {
		err = d.world.AddBody(body)
	}
	if err != nil {
		d.items.Remove(h)
		return 0, err
	}
	item.body = body
	item.proxy = tmpl.Instantiate(1)
	item.proxy.Sync(at, mgl64.QuatIdent())
	d.scene.Attach(item.proxy)
	return h, nil
}

// Update advances the drop sequence and mirrors poses until everything is
// frozen.
func (d *DecorationSystem) Update() {
	if d == nil || d.phase == decorationIdle || d.phase == decorationSettled {
		return
	}
	now := d.clock.Now()
	switch d.phase {
	case decorationContainerFalling:
		if now-d.phaseAt >= d.spec.FreezeAfter {
			d.freeze(d.container)
			d.dropArrows()
			d.phase = decorationArrowsFalling
			d.phaseAt = now
		}
	case decorationArrowsFalling:
		if now-d.phaseAt >= d.spec.ArrowDelay {
			for _, h := range d.arrows {
				d.freeze(h)
			}
			d.phase = decorationSettled
		}
	}
	d.items.Each(func(_ ecs.Entity, it *decorationItem) {
		if it.body != nil {
			it.proxy.Sync(it.body.Position(), mgl64.QuatIdent())
		}
	})
}

func (d *DecorationSystem) dropArrows() {
	base := d.spec.PositionVec()
	if c, ok := d.items.Get(d.container); ok && c.body != nil {
		base = c.body.Position()
	}
	tmpl := d.spec.Arrow.Template("quiver_arrow")
	first := -float64(d.spec.ArrowCount-1) / 2 * d.spec.ArrowSpacing
	for i := 0; i < d.spec.ArrowCount; i++ {
		at := base.Add(mgl64.Vec3{first + float64(i)*d.spec.ArrowSpacing, tmpl.Shape.HalfExtents.Y() + 0.2, 0})
		h, err := d.drop(tmpl, physics.MaterialProjectile, at, true)
		if err != nil {
			log.Printf("Decoration: drop arrow %d: %v", i, err)
			continue
		}
		d.arrows = append(d.arrows, h)
	}
}

func (d *DecorationSystem) freeze(h ecs.Entity) {
	if it, ok := d.items.Get(h); ok {
		d.world.Freeze(it.body)
	}
}

// Settled reports whether every decoration body is frozen.
func (d *DecorationSystem) Settled() bool {
	return d != nil && d.phase == decorationSettled
}

func (d *DecorationSystem) Len() int {
	if d == nil {
		return 0
	}
	return d.items.Len()
}

// Clear removes every decoration body and proxy.
func (d *DecorationSystem) Clear() {
	if d == nil {
		return
	}
	for _, h := range d.items.Entities() {
		it, _ := d.items.Get(h)
		if it != nil {
			if err := d.world.RemoveBody(it.body); err != nil {
				log.Printf("Decoration: remove %v: %v", h, err)
			}
			d.scene.Detach(it.proxy)
		}
		d.items.Remove(h)
	}
	d.arrows = nil
	d.container = 0
	d.phase = decorationIdle
}
