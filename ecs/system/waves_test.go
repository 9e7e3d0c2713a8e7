package system

import (
	"testing"

	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveSpawnsOverTime(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(5, 2.0)))
	waves := rig.loop.Waves()

	require.NoError(t, waves.StartWave(0))
	assert.True(t, waves.IsSpawning())
	assert.Equal(t, 1, rig.loop.State().CurrentWave)

	rig.run(10.0, 0.25)
	assert.Equal(t, 5, rig.loop.Attackers().Count())
	assert.False(t, waves.IsSpawning())
	assert.Equal(t, 0, waves.State().RemainingToSpawn)
}

func TestWaveSpawnsOnScheduleAtFrameRates(t *testing.T) {
	for _, hz := range []int{30, 60, 144} {
		rig := newTestRig(t, testConfig(goblinWave(5, 2.0)))
		waves := rig.loop.Waves()
		require.NoError(t, waves.StartWave(0))

		dt := 1.0 / float64(hz)
		for i := 0; i < 10*hz; i++ {
			rig.loop.Tick(dt)
		}
		assert.Equal(t, 5, rig.loop.Attackers().Count(), "hz=%d", hz)
		assert.False(t, waves.IsSpawning(), "hz=%d", hz)
		assert.Equal(t, 0, waves.State().RemainingToSpawn, "hz=%d", hz)
	}
}

func TestWaveResetClearsProgress(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(3, 0.25)))
	waves := rig.loop.Waves()
	require.NoError(t, waves.StartWave(0))
	rig.run(0.25, 0.25)
	require.Equal(t, 1, waves.Spawned())

	waves.Reset()
	assert.Equal(t, -1, waves.CurrentIndex())
	assert.False(t, waves.IsSpawning())
	assert.Equal(t, 0, waves.Spawned())
	assert.Equal(t, component.WaveDefinition{}, waves.Current())

	require.NoError(t, waves.StartWave(0))
	assert.True(t, waves.IsSpawning())
	assert.Equal(t, 3, waves.State().RemainingToSpawn)
}

func TestWaveSpawnCountMatchesDefinition(t *testing.T) {
	for _, count := range []int{1, 3, 7} {
		rig := newTestRig(t, testConfig(goblinWave(count, 0.5)))
		waves := rig.loop.Waves()
		require.NoError(t, waves.StartWave(0))

		for i := 0; i < 1000 && waves.IsSpawning(); i++ {
			rig.loop.Tick(0.25)
		}
		assert.False(t, waves.IsSpawning())
		assert.Equal(t, count, waves.Spawned())
		assert.Equal(t, count, rig.loop.Attackers().Count())
	}
}

func TestWaveSpawnsOnRing(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(4, 0.25)))
	waves := rig.loop.Waves()
	require.NoError(t, waves.StartWave(0))
	rig.run(1, 0.25)

	attackers := rig.loop.Attackers()
	require.Equal(t, 4, attackers.Count())
	for _, e := range attackers.Entities() {
		a, ok := attackers.Get(e)
		require.True(t, ok)
		p := a.Body.Position()
		r := p.X()*p.X() + p.Z()*p.Z()
		assert.InDelta(t, 25*25, r, 1e-3)
	}
}

func TestStartWaveIndexOutOfRange(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(1, 1)))
	waves := rig.loop.Waves()

	err := waves.StartWave(3)
	require.ErrorIs(t, err, ecs.ErrInvalidIndex)
	var idx *ecs.InvalidIndexError
	require.ErrorAs(t, err, &idx)
	assert.Equal(t, 3, idx.Index)
	assert.Equal(t, 1, idx.Count)
	assert.True(t, waves.IsLevelComplete())
	assert.False(t, waves.IsWaveComplete())

	assert.ErrorIs(t, waves.StartWave(-1), ecs.ErrInvalidIndex)
}

func TestStartWaveWhileSpawningIsIgnored(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(3, 1), goblinWave(9, 1)))
	waves := rig.loop.Waves()

	require.NoError(t, waves.StartWave(0))
	before := waves.State()
	require.NoError(t, waves.StartWave(1))
	assert.Equal(t, before, waves.State())
	assert.Equal(t, 1, rig.loop.State().CurrentWave)
}

func TestWaveAbortsOnMissingTemplate(t *testing.T) {
	def := goblinWave(4, 0.5)
	def.AttackerType = "dragon"
	rig := newTestRig(t, testConfig(def))
	waves := rig.loop.Waves()

	require.NoError(t, waves.StartWave(0))
	waves.Update(0.25)
	assert.True(t, waves.IsSpawning())
	waves.Update(0.25)
	assert.False(t, waves.IsSpawning())
	assert.Equal(t, 0, waves.State().RemainingToSpawn)
	assert.Equal(t, 0, rig.loop.Attackers().Count())
	assert.True(t, waves.IsWaveComplete())
}

func TestWaveCompletionStates(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(1, 0.25)))
	waves := rig.loop.Waves()

	assert.False(t, waves.IsWaveComplete())
	assert.False(t, waves.IsLevelComplete())

	require.NoError(t, waves.StartWave(0))
	assert.False(t, waves.IsWaveComplete())
	rig.loop.Tick(0.25)
	require.Equal(t, 1, rig.loop.Attackers().Count())
	assert.False(t, waves.IsWaveComplete())

	e := rig.loop.Attackers().Entities()[0]
	rig.loop.Attackers().ApplyHit(e, 100, 0)
	rig.loop.Attackers().Flush()
	assert.True(t, waves.IsWaveComplete())
	assert.False(t, waves.IsLevelComplete())
}

type doubleHealth struct{}

func (doubleHealth) Scale(n int, def component.WaveDefinition) (component.WaveDefinition, error) {
	def.Health *= 2 * n
	return def, nil
}

func TestWaveScalerApplied(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(1, 0.25), goblinWave(1, 0.25)))
	waves := rig.loop.Waves()
	waves.SetScaler(doubleHealth{})

	require.NoError(t, waves.StartWave(1))
	assert.Equal(t, 80, waves.Current().Health)
	rig.loop.Tick(0.25)
	a, ok := rig.loop.Attackers().Get(rig.loop.Attackers().Entities()[0])
	require.True(t, ok)
	assert.Equal(t, 80, a.Health)
}
