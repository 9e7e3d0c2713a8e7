package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
	"github.com/milk9111/bastion/prefabs"
	"github.com/stretchr/testify/require"
)

type recordingAudio struct {
	cues []string
}

func (a *recordingAudio) Play(cue string) { a.cues = append(a.cues, cue) }

func (a *recordingAudio) count(cue string) int {
	n := 0
	for _, c := range a.cues {
		if c == cue {
			n++
		}
	}
	return n
}

type recordingUI struct {
	messages []string
	gameOver []string
}

func (u *recordingUI) ShowMessage(text string, _ time.Duration) {
	u.messages = append(u.messages, text)
}

func (u *recordingUI) GameOver(msg string, _ component.GameState) {
	u.gameOver = append(u.gameOver, msg)
}

type recordingSave struct {
	saves  []component.GameState
	clears int
}

func (s *recordingSave) Save(state component.GameState) error {
	s.saves = append(s.saves, state)
	return nil
}

func (s *recordingSave) Clear() error {
	s.clears++
	return nil
}

type scriptedInput struct {
	state InputState
}

func (i *scriptedInput) Poll() InputState { return i.state }

func testTemplate(kind string, half mgl64.Vec3, mass float64) component.ProxyTemplate {
	return component.ProxyTemplate{
		Kind:      kind,
		Footprint: half,
		Shape:     component.ShapeDef{HalfExtents: half},
		Mass:      mass,
	}
}

func testBowSpec() prefabs.BowSpec {
	return prefabs.BowSpec{
		MaxDrawTime:  1.5,
		MinVelocity:  20,
		MaxVelocity:  70,
		Cooldown:     0.5,
		ArrowMass:    0.1,
		SpawnOffset:  1,
		BaseDamage:   10,
		BonusFactor:  15,
		MaxFlightAge: 10,
		StuckAge:     15,
		MaxDistance:  500,
		Projectile:   "arrow",
	}
}

func goblinWave(count int, delay float64) component.WaveDefinition {
	return component.WaveDefinition{
		AttackerType:  "goblin",
		Count:         count,
		SpawnDelay:    delay,
		Health:        20,
		Speed:         0,
		ScoreValue:    10,
		ResourceValue: 5,
		AttackDamage:  5,
		AttackRate:    1,
		Scale:         1,
	}
}

type testRig struct {
	loop  *CombatLoop
	audio *recordingAudio
	ui    *recordingUI
	save  *recordingSave
	input *scriptedInput
}

func testConfig(waves ...component.WaveDefinition) CombatConfig {
	catalog := prefabs.NewCatalog()
	catalog.Put(testTemplate("goblin", mgl64.Vec3{0.4, 0.75, 0.4}, 5))
	catalog.Put(component.ProxyTemplate{
		Kind:      "arrow",
		Footprint: mgl64.Vec3{0.05, 0.05, 0.05},
		Shape:     component.ShapeDef{HalfExtents: mgl64.Vec3{0.05, 0.05, 0.05}, Radius: 0.05},
		Mass:      0.1,
	})
	return CombatConfig{
		Arena: prefabs.ArenaSpec{
			Physics:            physics.DefaultConfig(),
			SpawnRadius:        25,
			UpgradeCost:        50,
			UpgradeDamageBonus: 2,
		},
		Bow: testBowSpec(),
		Attackers: map[string]prefabs.AttackerSpec{
			"goblin": {AttackRange: 3},
		},
		Waves:  waves,
		Assets: catalog,
		Rand:   rand.New(rand.NewSource(7)),
	}
}

func newTestRig(t *testing.T, cfg CombatConfig) *testRig {
	t.Helper()
	r := &testRig{
		audio: &recordingAudio{},
		ui:    &recordingUI{},
		save:  &recordingSave{},
		input: &scriptedInput{},
	}
	cfg.Audio = r.audio
	cfg.UI = r.ui
	cfg.Persistence = r.save
	cfg.Input = r.input
	loop, err := NewCombatLoop(cfg)
	require.NoError(t, err)
	r.loop = loop
	return r
}

func (r *testRig) run(seconds, dt float64) {
	for n := int(seconds/dt + 0.5); n > 0; n-- {
		r.loop.Tick(dt)
	}
}
