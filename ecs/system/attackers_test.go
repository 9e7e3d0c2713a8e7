package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttackerKilledOverTwoHits(t *testing.T) {
	rig := newTestRig(t, testConfig())
	attackers := rig.loop.Attackers()
	state := rig.loop.State()

	def := goblinWave(1, 0)
	def.ScoreValue = 15
	a, err := attackers.Spawn(def, mgl64.Vec3{12, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 20, a.Health)

	attackers.ApplyHit(a.Handle, 10, rig.loop.Clock().Now())
	rig.loop.Tick(1.0 / 60)
	assert.False(t, a.IsDead())
	assert.Equal(t, 10, a.Health)
	assert.Equal(t, 1, attackers.Count())

	assert.True(t, attackers.ApplyHit(a.Handle, 12, rig.loop.Clock().Now()))
	assert.True(t, a.IsDead())
	assert.False(t, a.TornDown())
	assert.Equal(t, 1, attackers.Count())
	assert.Equal(t, 0, state.Score)

	rig.loop.Tick(1.0 / 60)
	assert.True(t, a.TornDown())
	assert.Equal(t, 0, attackers.Count())
	assert.Equal(t, 15, state.Score)
	assert.Equal(t, def.ResourceValue, state.Resources)
	assert.Nil(t, a.Body)
	assert.Equal(t, 1, rig.audio.count(entity.CueEnemyDie))
}

func TestAttackerTornDownAtMostOnce(t *testing.T) {
	rig := newTestRig(t, testConfig())
	attackers := rig.loop.Attackers()
	now := rig.loop.Clock().Now()

	var handles []ecs.Entity
	for i := 0; i < 4; i++ {
		a, err := attackers.Spawn(goblinWave(1, 0), mgl64.Vec3{10, 0, float64(i*3 - 5)})
		require.NoError(t, err)
		handles = append(handles, a.Handle)
	}
	for _, h := range handles[:3] {
		attackers.ApplyHit(h, 100, now)
		attackers.ApplyHit(h, 100, now)
	}
	assert.Equal(t, 3, attackers.PendingRemovals())

	attackers.Update(1.0/60, rig.loop.World().Structure().Position())
	assert.Equal(t, 3, attackers.PendingRemovals())

	assert.Equal(t, 3, attackers.Flush())
	assert.Equal(t, 0, attackers.Flush())
	assert.Equal(t, attackers.Deaths(), attackers.Teardowns())
	assert.Equal(t, 1, attackers.Count())
	assert.Equal(t, 30, rig.loop.State().Score)

	for _, h := range handles[:3] {
		assert.False(t, attackers.ApplyHit(h, 5, now))
	}
}

func TestAttackerAttacksStructureInRange(t *testing.T) {
	rig := newTestRig(t, testConfig())
	attackers := rig.loop.Attackers()
	state := rig.loop.State()

	def := goblinWave(1, 0)
	def.AttackDamage = 7
	def.AttackRate = 1
	a, err := attackers.Spawn(def, mgl64.Vec3{2, 0, 0})
	require.NoError(t, err)

	rig.loop.Tick(0.25)
	assert.Equal(t, entity.AttackerAttacking, a.State())
	assert.Equal(t, component.DefaultStructureHealth-7, state.StructureHealth)

	rig.run(0.5, 0.25)
	assert.Equal(t, component.DefaultStructureHealth-7, state.StructureHealth)

	rig.run(0.5, 0.25)
	assert.Equal(t, component.DefaultStructureHealth-14, state.StructureHealth)
	assert.Equal(t, 2, rig.audio.count(entity.CueTowerHit))
}

func TestAttackerSeeksStructure(t *testing.T) {
	rig := newTestRig(t, testConfig())
	def := goblinWave(1, 0)
	def.Speed = 3
	a, err := rig.loop.Attackers().Spawn(def, mgl64.Vec3{0, 0, 15})
	require.NoError(t, err)

	start := a.Body.Position().Z()
	rig.run(1, 1.0/60)
	assert.Equal(t, entity.AttackerSeeking, a.State())
	assert.Less(t, a.Body.Position().Z(), start)
	assert.InDelta(t, a.Body.HalfExtents().Y(), a.Body.Position().Y(), 1e-9)
}

func TestSpawnMissingTemplate(t *testing.T) {
	rig := newTestRig(t, testConfig())
	attackers := rig.loop.Attackers()
	bodies := rig.loop.World().BodyCount()

	def := goblinWave(1, 0)
	def.AttackerType = "dragon"
	_, err := attackers.Spawn(def, mgl64.Vec3{5, 0, 5})
	require.ErrorIs(t, err, ecs.ErrResourceMissing)
	assert.Equal(t, 0, attackers.Count())
	assert.Equal(t, bodies, rig.loop.World().BodyCount())
	assert.Equal(t, 0, rig.loop.Scene().Len())
}
