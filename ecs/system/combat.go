package system

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/physics"
	"github.com/milk9111/bastion/prefabs"
)

type GameEventKind string

const (
	EventWaveStarted GameEventKind = "wave_started"
	EventWaveCleared GameEventKind = "wave_cleared"
	EventUpgrade     GameEventKind = "upgrade"
	EventGameOver    GameEventKind = "game_over"
	EventVictory     GameEventKind = "victory"
)

// GameEvent is published at run milestones for observers such as the HUD
// feed. State is a snapshot taken when the event fired.
type GameEvent struct {
	Kind    GameEventKind       `json:"kind"`
	Wave    int                 `json:"wave"`
	Message string              `json:"message,omitempty"`
	State   component.GameState `json:"state"`
}

// CombatConfig is everything a CombatLoop is built from. Nil collaborators
// fall back to no-ops.
type CombatConfig struct {
	Arena      prefabs.ArenaSpec
	Bow        prefabs.BowSpec
	Attackers  map[string]prefabs.AttackerSpec
	Waves      []component.WaveDefinition
	Decoration *prefabs.DecorationSpec

	Assets      Assets
	Scaler      WaveScaler
	Rand        *rand.Rand
	Audio       Audio
	UI          UI
	Persistence Persistence
	Input       Input
}

// LoadCombatConfig reads every spec from the prefabs directory.
func LoadCombatConfig(seed int64) (CombatConfig, error) {
	arena, err := prefabs.LoadArenaSpec()
	if err != nil {
		return CombatConfig{}, err
	}
	bow, err := prefabs.LoadBowSpec()
	if err != nil {
		return CombatConfig{}, err
	}
	attackers, err := prefabs.LoadAttackersSpec()
	if err != nil {
		return CombatConfig{}, err
	}
	waves, err := prefabs.LoadWavesSpec()
	if err != nil {
		return CombatConfig{}, err
	}
	decoration, err := prefabs.LoadDecorationSpec()
	if err != nil {
		return CombatConfig{}, err
	}
	catalog, err := prefabs.LoadCatalog()
	if err != nil {
		return CombatConfig{}, err
	}

	cfg := CombatConfig{
		Arena:      *arena,
		Bow:        *bow,
		Attackers:  attackers.Attackers,
		Waves:      waves.Waves,
		Decoration: decoration,
		Assets:     catalog,
		Rand:       rand.New(rand.NewSource(seed)),
	}
	if waves.Script != "" {
		src, err := prefabs.LoadScript(waves.Script)
		if err != nil {
			return CombatConfig{}, fmt.Errorf("system: load wave script: %w", err)
		}
		script, err := NewWaveScript(waves.Script, src)
		if err != nil {
			return CombatConfig{}, err
		}
		cfg.Scaler = script
	}
	return cfg, nil
}

// CombatLoop is the per-frame driver. Tick runs every phase in a fixed order
// and is the only place entities are torn down.
type CombatLoop struct {
	world      *physics.World
	scene      *component.Scene
	clock      *Clock
	state      *component.GameState
	bow        *BowSystem
	attackers  *AttackerSystem
	waves      *WaveDirector
	decoration *DecorationSystem

	ui    UI
	save  Persistence
	input Input

	events ecs.EventQueue[GameEvent]

	message      time.Duration
	upgradeCost  int
	upgradeBonus int
	pendingWave  int
	intermission float64
	victory      bool
	prevUpgrade  bool
	started      bool
}

// NewCombatLoop initializes the physics world and every subsystem. A world
// that fails to initialize is the only fatal error.
func NewCombatLoop(cfg CombatConfig) (*CombatLoop, error) {
	if cfg.Assets == nil {
		return nil, &ecs.ConfigurationError{Name: "combat", Reason: "no asset catalog"}
	}
	world := physics.NewWorld(cfg.Arena.Physics)
	if err := world.Init(); err != nil {
		return nil, fmt.Errorf("system: init physics: %w", err)
	}
	if cfg.UI == nil {
		cfg.UI = nopUI{}
	}
	if cfg.Persistence == nil {
		cfg.Persistence = nopPersistence{}
	}
	if cfg.Audio == nil {
		cfg.Audio = nopAudio{}
	}
	radius := cfg.Arena.SpawnRadius
	if radius <= 0 {
		radius = 25
	}

	l := &CombatLoop{
		world:        world,
		scene:        component.NewScene(),
		clock:        &Clock{},
		state:        component.NewGameState(),
		ui:           cfg.UI,
		save:         cfg.Persistence,
		input:        cfg.Input,
		message:      time.Duration(cfg.Arena.MessageSeconds * float64(time.Second)),
		upgradeCost:  cfg.Arena.UpgradeCost,
		upgradeBonus: cfg.Arena.UpgradeDamageBonus,
		pendingWave:  -1,
	}
	l.attackers = NewAttackerSystem(world, l.scene, cfg.Assets, cfg.Audio, l.clock, l.state, cfg.Attackers)
	l.bow = NewBowSystem(cfg.Bow, world, l.scene, cfg.Assets, cfg.Audio, l.clock, l.attackers)
	l.waves = NewWaveDirector(cfg.Waves, l.attackers, l.state, cfg.Rand, cfg.Arena.CenterVec(), radius)
	if cfg.Scaler != nil {
		l.waves.SetScaler(cfg.Scaler)
	}
	if cfg.Decoration != nil {
		l.decoration = NewDecorationSystem(*cfg.Decoration, world, l.scene, l.clock)
	}
	return l, nil
}

func (l *CombatLoop) World() *physics.World         { return l.world }
func (l *CombatLoop) Scene() *component.Scene       { return l.scene }
func (l *CombatLoop) Clock() *Clock                 { return l.clock }
func (l *CombatLoop) Bow() *BowSystem               { return l.bow }
func (l *CombatLoop) Attackers() *AttackerSystem    { return l.attackers }
func (l *CombatLoop) Waves() *WaveDirector          { return l.waves }
func (l *CombatLoop) Decoration() *DecorationSystem { return l.decoration }
func (l *CombatLoop) State() *component.GameState   { return l.state }
func (l *CombatLoop) Victory() bool                 { return l.victory }
func (l *CombatLoop) Intermission() bool            { return l.pendingWave >= 0 }
func (l *CombatLoop) Events() []GameEvent           { return l.events.Drain() }
func (l *CombatLoop) GameOver() bool                { return l.state.GameOver }

// Start begins the run. A saved state resumes at its wave; otherwise the
// first wave starts.
func (l *CombatLoop) Start(saved *component.GameState) error {
	if l.started {
		return nil
	}
	l.started = true
	first := 0
	if saved != nil {
		l.state.Restore(*saved)
		first = max(0, saved.CurrentWave-1)
		log.Printf("CombatLoop: resuming at wave %d", first+1)
	}
	l.bow.SetBonusDamage(l.upgradeBonus * l.state.UpgradeLevel)
	if l.decoration != nil {
		if err := l.decoration.Begin(); err != nil {
			log.Printf("CombatLoop: %v", err)
		}
	}
	return l.startWave(first)
}

// Restart tears everything down and begins a fresh run.
func (l *CombatLoop) Restart() error {
	l.attackers.Clear()
	l.bow.Clear()
	if l.decoration != nil {
		l.decoration.Clear()
	}
	l.events.Drain()
	*l.state = *component.NewGameState()
	l.waves.Reset()
	l.pendingWave = -1
	l.victory = false
	l.started = false
	if err := l.save.Clear(); err != nil {
		log.Printf("CombatLoop: clear save: %v", err)
	}
	return l.Start(nil)
}

// Tick advances the simulation by dt seconds.
func (l *CombatLoop) Tick(dt float64) {
	if l == nil || l.state.GameOver || l.victory || dt <= 0 {
		return
	}
	l.clock.Advance(dt)
	var in InputState
	if l.input != nil {
		in = l.input.Poll()
	}

	l.world.Step(dt)
	l.bow.Update(dt, in)
	l.waves.Update(dt)
	l.attackers.Update(dt, l.world.Structure().Position())
	l.attackers.Flush()
	l.bow.Flush()

	if l.checkGameOver() {
		return
	}
	l.checkWaves(dt)
	if l.decoration != nil {
		l.decoration.Update()
	}

	if in.UpgradePressed && !l.prevUpgrade {
		l.PurchaseUpgrade()
	}
	l.prevUpgrade = in.UpgradePressed
}

func (l *CombatLoop) checkGameOver() bool {
	if !l.state.Defeated() || !l.state.MarkGameOver() {
		return false
	}
	msg := fmt.Sprintf("Game Over! You reached wave %d", l.state.CurrentWave)
	log.Printf("CombatLoop: %s (score %d)", msg, l.state.Score)
	l.ui.GameOver(msg, l.state.Snapshot())
	if err := l.save.Clear(); err != nil {
		log.Printf("CombatLoop: clear save: %v", err)
	}
	l.publish(EventGameOver, msg)
	return true
}

func (l *CombatLoop) checkWaves(dt float64) {
	if l.pendingWave >= 0 {
		l.intermission -= dt
		if l.intermission > 0 {
			return
		}
		next := l.pendingWave
		l.pendingWave = -1
		if err := l.startWave(next); err == nil {
			if err := l.save.Save(l.state.Snapshot()); err != nil {
				log.Printf("CombatLoop: save: %v", err)
			}
		}
		return
	}
	if !l.waves.IsWaveComplete() {
		return
	}
	cleared := l.waves.CurrentIndex()
	l.publish(EventWaveCleared, "")
	next := cleared + 1
	if next >= l.waves.WaveCount() {
		l.startWave(next)
		return
	}
	l.ui.ShowMessage(fmt.Sprintf("Wave %d Incoming!", next+1), l.message)
	l.pendingWave = next
	l.intermission = l.message.Seconds()
}

func (l *CombatLoop) startWave(i int) error {
	err := l.waves.StartWave(i)
	switch {
	case err == nil:
		l.publish(EventWaveStarted, "")
		return nil
	case errors.Is(err, ecs.ErrInvalidIndex) && i >= l.waves.WaveCount():
		if l.waves.IsLevelComplete() && !l.victory {
			l.victory = true
			msg := "Victory! All waves defeated"
			l.ui.ShowMessage(msg, l.message)
			if err := l.save.Clear(); err != nil {
				log.Printf("CombatLoop: clear save: %v", err)
			}
			l.publish(EventVictory, msg)
		}
		return err
	default:
		log.Printf("CombatLoop: start wave %d: %v", i+1, err)
		return err
	}
}

// PurchaseUpgrade spends resources on a bow damage upgrade. It reports
// whether the purchase went through.
func (l *CombatLoop) PurchaseUpgrade() bool {
	if l == nil || l.state.GameOver || !l.state.SpendResources(l.upgradeCost) {
		return false
	}
	l.state.Upgrade()
	l.bow.SetBonusDamage(l.upgradeBonus * l.state.UpgradeLevel)
	l.publish(EventUpgrade, fmt.Sprintf("Upgrade level %d", l.state.UpgradeLevel))
	return true
}

func (l *CombatLoop) publish(kind GameEventKind, msg string) {
	l.events.Push(GameEvent{
		Kind:    kind,
		Wave:    l.state.CurrentWave,
		Message: msg,
		State:   l.state.Snapshot(),
	})
}

// ApplyBowSpec swaps in reloaded bow tuning and its arrow template.
func (l *CombatLoop) ApplyBowSpec(spec prefabs.BowSpec, catalog *prefabs.Catalog) {
	l.bow.SetSpec(spec)
	if catalog != nil {
		catalog.Put(spec.Arrow.Template(spec.Projectile))
	}
}

// ApplyAttackers swaps in reloaded attacker kinds. Live attackers keep the
// stats they spawned with.
func (l *CombatLoop) ApplyAttackers(kinds map[string]prefabs.AttackerSpec, catalog *prefabs.Catalog) {
	l.attackers.kinds = kinds
	if catalog != nil {
		for name, a := range kinds {
			catalog.Put(a.Template(name))
		}
	}
}

// ApplyWaves swaps in reloaded wave definitions and scaling script.
func (l *CombatLoop) ApplyWaves(waves []component.WaveDefinition, scaler WaveScaler) {
	l.waves.SetWaves(waves)
	if scaler != nil {
		l.waves.SetScaler(scaler)
	}
}
