package component

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
)

const footprintTolerance = 1e-6

// ShapeDef is the physics shape paired with a proxy template.
type ShapeDef struct {
	HalfExtents mgl64.Vec3
	Radius      float64
}

// ProxyTemplate is a cloneable proxy plus the physics shape that must match
// its footprint.
type ProxyTemplate struct {
	Kind      string
	Footprint mgl64.Vec3
	Shape     ShapeDef
	Color     string
	// Mass of the spawned body at scale 1.
	Mass float64
}

// Validate checks that the shape covers exactly the proxy footprint.
func (t ProxyTemplate) Validate() error {
	he := t.Shape.HalfExtents
	if he.Y() <= 0 || (t.Shape.Radius <= 0 && (he.X() <= 0 || he.Z() <= 0)) {
		return &ecs.ConfigurationError{Name: t.Kind, Reason: "shape has no extent"}
	}
	want := he
	if t.Shape.Radius > 0 {
		want = mgl64.Vec3{t.Shape.Radius, he.Y(), t.Shape.Radius}
	}
	for i := 0; i < 3; i++ {
		if math.Abs(want[i]-t.Footprint[i]) > footprintTolerance {
			return &ecs.ConfigurationError{
				Name:   t.Kind,
				Reason: fmt.Sprintf("shape half extents %v do not match proxy footprint %v", want, t.Footprint),
			}
		}
	}
	return nil
}

// ScaledShape returns the shape at the given scale.
func (t ProxyTemplate) ScaledShape(scale float64) ShapeDef {
	if scale <= 0 {
		scale = 1
	}
	return ShapeDef{HalfExtents: t.Shape.HalfExtents.Mul(scale), Radius: t.Shape.Radius * scale}
}

// Instantiate clones the template into a proxy whose origin sits at the
// bottom of the shape.
func (t ProxyTemplate) Instantiate(scale float64) *Proxy {
	if scale <= 0 {
		scale = 1
	}
	return &Proxy{
		Kind:        t.Kind,
		Orientation: mgl64.QuatIdent(),
		Scale:       scale,
		Footprint:   t.Footprint,
		Offset:      mgl64.Vec3{0, -t.Shape.HalfExtents.Y() * scale, 0},
		Color:       t.Color,
	}
}
