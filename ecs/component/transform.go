package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Proxy is the renderable node mirrored from a physics body every tick.
type Proxy struct {
	Kind        string
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Scale       float64
	// Footprint is the half extents of the rendered shape at Scale 1.
	Footprint mgl64.Vec3
	// Offset is added to the body center when syncing, so the proxy origin
	// can sit at the feet rather than the center of mass.
	Offset mgl64.Vec3
	Color  string

	// FlashUntil is the simulation time until which the hit tint shows.
	FlashUntil float64
	attached   bool
}

// Sync copies a body pose onto the proxy.
func (p *Proxy) Sync(center mgl64.Vec3, orientation mgl64.Quat) {
	if p == nil {
		return
	}
	p.Position = center.Add(p.Offset)
	p.Orientation = orientation
}

// Flash starts the hit tint for d seconds.
func (p *Proxy) Flash(now, d float64) {
	if p == nil {
		return
	}
	p.FlashUntil = now + d
}

func (p *Proxy) Flashing(now float64) bool {
	return p != nil && now < p.FlashUntil
}

// Extents returns the scaled footprint.
func (p *Proxy) Extents() mgl64.Vec3 {
	if p == nil {
		return mgl64.Vec3{}
	}
	s := p.Scale
	if s == 0 {
		s = 1
	}
	return p.Footprint.Mul(s)
}

func (p *Proxy) Attached() bool {
	return p != nil && p.attached
}

// Yaw returns the heading about the vertical axis.
func (p *Proxy) Yaw() float64 {
	if p == nil {
		return 0
	}
	fwd := p.Orientation.Rotate(mgl64.Vec3{0, 0, 1})
	return math.Atan2(fwd.X(), fwd.Z())
}
