package main

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBallisticAimReachesTarget(t *testing.T) {
	origin := mgl64.Vec3{0, 2.2, 0}
	target := mgl64.Vec3{20, 0.75, 5}
	const speed, gravity = 40.0, -9.82

	dir := ballisticAim(origin, target, speed, gravity)
	require.InDelta(t, 1, dir.Len(), 1e-9)

	flat := math.Hypot(target.X(), target.Z())
	vh := speed * math.Hypot(dir.X(), dir.Z())
	tof := flat / vh
	y := origin.Y() + speed*dir.Y()*tof + 0.5*gravity*tof*tof
	assert.InDelta(t, target.Y(), y, 1e-6)
}

func TestBallisticAimOutOfReachFallsBack(t *testing.T) {
	origin := mgl64.Vec3{0, 2.2, 0}
	target := mgl64.Vec3{300, 0, 0}
	dir := ballisticAim(origin, target, 10, -9.82)
	assert.InDelta(t, target.Sub(origin).Normalize().Y(), dir.Y(), 1e-9)
}

func TestBotFiresAtAttackers(t *testing.T) {
	cfg, err := system.LoadCombatConfig(3)
	require.NoError(t, err)
	b := newBot(cfg.Arena.AimOriginVec(), cfg.Arena.Physics.Gravity, 0.5, 0)
	cfg.Input = b
	loop, err := system.NewCombatLoop(cfg)
	require.NoError(t, err)
	b.loop = loop
	require.NoError(t, loop.Start(nil))

	const dt = 1.0 / 60
	for i := 0; i < 60*12; i++ {
		b.step(dt)
		loop.Tick(dt)
	}
	assert.Greater(t, loop.Bow().Fired(), 3)
	assert.Equal(t, loop.Attackers().Deaths(), loop.Attackers().Teardowns())
}
