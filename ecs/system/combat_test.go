package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func killAll(t *testing.T, rig *testRig) {
	t.Helper()
	attackers := rig.loop.Attackers()
	for _, e := range attackers.Entities() {
		attackers.ApplyHit(e, 1000, rig.loop.Clock().Now())
	}
}

func TestNewCombatLoopRequiresAssets(t *testing.T) {
	cfg := testConfig()
	cfg.Assets = nil
	_, err := NewCombatLoop(cfg)
	assert.ErrorIs(t, err, ecs.ErrConfiguration)
}

func TestFlushTwiceIsNoOp(t *testing.T) {
	rig := newTestRig(t, testConfig())
	_, err := rig.loop.Attackers().Spawn(goblinWave(1, 0), mgl64.Vec3{10, 0, 0})
	require.NoError(t, err)
	killAll(t, rig)

	assert.Equal(t, 1, rig.loop.Attackers().Flush())
	assert.Equal(t, 0, rig.loop.Bow().Flush())
	state := rig.loop.State().Snapshot()
	bodies := rig.loop.World().BodyCount()

	assert.Equal(t, 0, rig.loop.Attackers().Flush())
	assert.Equal(t, 0, rig.loop.Bow().Flush())
	assert.Equal(t, state, rig.loop.State().Snapshot())
	assert.Equal(t, bodies, rig.loop.World().BodyCount())
}

func TestWaveProgressionSavesAndWins(t *testing.T) {
	cfg := testConfig(goblinWave(1, 0.25), goblinWave(1, 0.25))
	cfg.Arena.MessageSeconds = 0.5
	rig := newTestRig(t, cfg)
	require.NoError(t, rig.loop.Start(nil))
	assert.Equal(t, 1, rig.loop.State().CurrentWave)

	rig.loop.Tick(0.25)
	require.Equal(t, 1, rig.loop.Attackers().Count())
	killAll(t, rig)
	rig.loop.Tick(0.25)

	assert.True(t, rig.loop.Intermission())
	assert.Equal(t, []string{"Wave 2 Incoming!"}, rig.ui.messages)
	assert.Empty(t, rig.save.saves)

	rig.run(0.5, 0.25)
	assert.False(t, rig.loop.Intermission())
	assert.Equal(t, 2, rig.loop.State().CurrentWave)
	require.Len(t, rig.save.saves, 1)
	assert.Equal(t, 2, rig.save.saves[0].CurrentWave)
	assert.Equal(t, 10, rig.save.saves[0].Score)

	rig.loop.Tick(0.25)
	require.Equal(t, 1, rig.loop.Attackers().Count())
	killAll(t, rig)
	rig.loop.Tick(0.25)

	assert.True(t, rig.loop.Victory())
	assert.True(t, rig.loop.Waves().IsLevelComplete())
	assert.Equal(t, 1, rig.save.clears)
	assert.Equal(t, 20, rig.loop.State().Score)

	var kinds []GameEventKind
	for _, ev := range rig.loop.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []GameEventKind{EventWaveStarted, EventWaveCleared, EventWaveStarted, EventWaveCleared, EventVictory}, kinds)
	assert.Empty(t, rig.loop.Events())

	now := rig.loop.Clock().Now()
	rig.loop.Tick(0.25)
	assert.Equal(t, now, rig.loop.Clock().Now())
}

func TestGameOverWhenStructureFalls(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(1, 100)))
	require.NoError(t, rig.loop.Start(nil))

	def := goblinWave(1, 0)
	def.AttackDamage = component.DefaultStructureHealth + 50
	_, err := rig.loop.Attackers().Spawn(def, mgl64.Vec3{1.5, 0, 0})
	require.NoError(t, err)

	rig.loop.Tick(1.0 / 60)
	state := rig.loop.State()
	assert.Equal(t, 0, state.StructureHealth)
	assert.True(t, rig.loop.GameOver())
	require.Len(t, rig.ui.gameOver, 1)
	assert.Equal(t, "Game Over! You reached wave 1", rig.ui.gameOver[0])
	assert.Equal(t, 1, rig.save.clears)

	now := rig.loop.Clock().Now()
	rig.run(1, 1.0/60)
	assert.Equal(t, now, rig.loop.Clock().Now())
	assert.Len(t, rig.ui.gameOver, 1)
	assert.False(t, rig.loop.PurchaseUpgrade())
}

func TestGameOverWhenDefenderFalls(t *testing.T) {
	rig := newTestRig(t, testConfig())
	rig.loop.State().ApplyDefenderDamage(component.DefaultDefenderHealth)
	rig.loop.Tick(1.0 / 60)
	assert.True(t, rig.loop.GameOver())
	assert.Len(t, rig.ui.gameOver, 1)
}

func TestPurchaseUpgrade(t *testing.T) {
	rig := newTestRig(t, testConfig())
	state := rig.loop.State()

	state.ApplyReward(0, 40)
	assert.False(t, rig.loop.PurchaseUpgrade())
	assert.Equal(t, 40, state.Resources)

	state.ApplyStructureDamage(30)
	state.ApplyReward(0, 80)
	assert.True(t, rig.loop.PurchaseUpgrade())
	assert.Equal(t, 70, state.Resources)
	assert.Equal(t, 1, state.UpgradeLevel)
	assert.Equal(t, component.DefaultStructureHealth-30, state.StructureHealth)

	bow := rig.loop.Bow()
	bow.Press(0)
	require.True(t, bow.Release(testOrigin, testAim))
	p := onlyProjectile(t, bow)
	assert.Equal(t, 12, p.Damage)
}

func TestUpgradeStacksAndStopsAtGameOver(t *testing.T) {
	rig := newTestRig(t, testConfig())
	state := rig.loop.State()
	state.ApplyReward(0, 150)

	require.True(t, rig.loop.PurchaseUpgrade())
	require.True(t, rig.loop.PurchaseUpgrade())
	bow := rig.loop.Bow()
	bow.Press(0)
	require.True(t, bow.Release(testOrigin, testAim))
	assert.Equal(t, 14, onlyProjectile(t, bow).Damage)

	state.MarkGameOver()
	assert.False(t, rig.loop.PurchaseUpgrade())
	assert.Equal(t, 50, state.Resources)
	assert.Equal(t, 2, state.UpgradeLevel)
}

func TestUpgradeFromInputEdge(t *testing.T) {
	rig := newTestRig(t, testConfig())
	rig.loop.State().ApplyReward(0, 200)

	rig.input.state.UpgradePressed = true
	rig.run(0.5, 0.1)
	assert.Equal(t, 1, rig.loop.State().UpgradeLevel)

	rig.input.state.UpgradePressed = false
	rig.loop.Tick(0.1)
	rig.input.state.UpgradePressed = true
	rig.loop.Tick(0.1)
	assert.Equal(t, 2, rig.loop.State().UpgradeLevel)
}

func TestStartResumesSavedWave(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(1, 1), goblinWave(2, 1), goblinWave(3, 1)))
	saved := component.GameState{
		DefenderHealth:  100,
		StructureHealth: 60,
		Score:           120,
		Resources:       55,
		CurrentWave:     2,
		UpgradeLevel:    1,
	}
	require.NoError(t, rig.loop.Start(&saved))

	assert.Equal(t, 1, rig.loop.Waves().CurrentIndex())
	assert.Equal(t, 2, rig.loop.State().CurrentWave)
	assert.Equal(t, 60, rig.loop.State().StructureHealth)
	assert.Equal(t, 120, rig.loop.State().Score)
	assert.Equal(t, 2, rig.loop.Waves().State().RemainingToSpawn)

	bow := rig.loop.Bow()
	bow.Press(0)
	require.True(t, bow.Release(testOrigin, testAim))
	assert.Equal(t, 12, onlyProjectile(t, bow).Damage)
}

func TestRestartClearsRun(t *testing.T) {
	rig := newTestRig(t, testConfig(goblinWave(2, 0.25)))
	require.NoError(t, rig.loop.Start(nil))
	rig.run(0.5, 0.25)
	require.Equal(t, 2, rig.loop.Attackers().Count())
	rig.loop.State().ApplyStructureDamage(40)

	require.NoError(t, rig.loop.Restart())
	assert.Equal(t, 0, rig.loop.Attackers().Count())
	assert.Equal(t, component.DefaultStructureHealth, rig.loop.State().StructureHealth)
	assert.Equal(t, 0, rig.loop.Waves().CurrentIndex())
	assert.True(t, rig.loop.Waves().IsSpawning())
	assert.Equal(t, 1, rig.save.clears)
}
