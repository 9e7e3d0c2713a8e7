package system

import (
	"log"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/entity"
)

// Spawner creates one attacker and reports the live population.
type Spawner interface {
	Spawn(def component.WaveDefinition, at mgl64.Vec3) (*entity.Attacker, error)
	Count() int
}

// WaveScaler adjusts a wave's stats before it starts.
type WaveScaler interface {
	Scale(waveNumber int, def component.WaveDefinition) (component.WaveDefinition, error)
}

// WaveDirector sequences wave definitions into timed spawns.
type WaveDirector struct {
	waves   []component.WaveDefinition
	state   component.WaveDirectorState
	current component.WaveDefinition

	spawner Spawner
	game    *component.GameState
	scaler  WaveScaler
	rng     *rand.Rand
	center  mgl64.Vec3
	radius  float64

	spawned int
}

func NewWaveDirector(waves []component.WaveDefinition, spawner Spawner, game *component.GameState, rng *rand.Rand, center mgl64.Vec3, radius float64) *WaveDirector {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &WaveDirector{
		waves:   append([]component.WaveDefinition(nil), waves...),
		state:   component.WaveDirectorState{CurrentIndex: -1},
		spawner: spawner,
		game:    game,
		rng:     rng,
		center:  center,
		radius:  radius,
	}
}

func (d *WaveDirector) SetScaler(s WaveScaler) {
	if d == nil {
		return
	}
	d.scaler = s
}

// SetWaves replaces the definitions. The running wave keeps its copy.
func (d *WaveDirector) SetWaves(waves []component.WaveDefinition) {
	if d == nil {
		return
	}
	d.waves = append([]component.WaveDefinition(nil), waves...)
}

func (d *WaveDirector) WaveCount() int {
	if d == nil {
		return 0
	}
	return len(d.waves)
}

func (d *WaveDirector) State() component.WaveDirectorState {
	if d == nil {
		return component.WaveDirectorState{CurrentIndex: -1}
	}
	return d.state
}

func (d *WaveDirector) CurrentIndex() int {
	return d.State().CurrentIndex
}

func (d *WaveDirector) IsSpawning() bool {
	return d != nil && d.state.Spawning
}

// SpawnRadius is the distance from the arena center attackers appear at.
func (d *WaveDirector) SpawnRadius() float64 {
	if d == nil {
		return 0
	}
	return d.radius
}

// Spawned counts successful spawns in the current wave.
func (d *WaveDirector) Spawned() int {
	if d == nil {
		return 0
	}
	return d.spawned
}

// Current is the definition the running wave spawns with, after scaling.
func (d *WaveDirector) Current() component.WaveDefinition {
	if d == nil {
		return component.WaveDefinition{}
	}
	return d.current
}

// StartWave begins wave i. An index past the last wave records that every
// wave has run and fails with an InvalidIndexError. Starting while a wave
// is still spawning is logged and ignored.
func (d *WaveDirector) StartWave(i int) error {
	if d == nil {
		return &ecs.ConfigurationError{Name: "waves", Reason: "no wave director"}
	}
	if i < 0 || i >= len(d.waves) {
		if i >= len(d.waves) {
			d.state.CurrentIndex = i
		}
		return &ecs.InvalidIndexError{Index: i, Count: len(d.waves)}
	}
	if d.state.Spawning {
		log.Printf("WaveDirector: wave %d still spawning, ignoring start of wave %d", d.state.CurrentIndex+1, i+1)
		return nil
	}

	def := d.waves[i]
	if d.scaler != nil {
		scaled, err := d.scaler.Scale(i+1, def)
		if err != nil {
			log.Printf("WaveDirector: scale wave %d: %v", i+1, err)
		} else {
			def = scaled
		}
	}

	d.current = def
	d.spawned = 0
	d.state = component.WaveDirectorState{
		CurrentIndex:     i,
		RemainingToSpawn: def.Count,
		SpawnTimer:       def.SpawnDelay,
		Spawning:         def.Count > 0,
	}
	d.game.SetWave(i + 1)
	log.Printf("WaveDirector: starting wave %d (%d x %s)", i+1, def.Count, def.AttackerType)
	return nil
}

// spawnEpsilon absorbs the rounding left by subtracting non-binary tick
// lengths such as 1/60.
const spawnEpsilon = 1e-9

// Update counts down the spawn timer and spawns at most one attacker per
// expiry. Overshoot carries into the next delay so spawns stay on the
// SpawnDelay grid at any tick rate. A failed spawn abandons the rest of the
// wave.
func (d *WaveDirector) Update(dt float64) {
	if d == nil || !d.state.Spawning {
		return
	}
	d.state.SpawnTimer -= dt
	if d.state.SpawnTimer > spawnEpsilon || d.state.RemainingToSpawn <= 0 {
		return
	}

	if _, err := d.spawner.Spawn(d.current, d.spawnPoint()); err != nil {
		log.Printf("WaveDirector: spawn failed in wave %d, abandoning %d remaining: %v", d.state.CurrentIndex+1, d.state.RemainingToSpawn, err)
		d.state.RemainingToSpawn = 0
		d.state.Spawning = false
		return
	}
	d.spawned++
	d.state.RemainingToSpawn--
	if d.state.RemainingToSpawn <= 0 {
		d.state.Spawning = false
		log.Printf("WaveDirector: wave %d spawning complete", d.state.CurrentIndex+1)
		return
	}
	d.state.SpawnTimer += d.current.SpawnDelay
}

// Reset returns the director to its pre-start state: no wave selected and
// nothing pending.
func (d *WaveDirector) Reset() {
	if d == nil {
		return
	}
	d.state = component.WaveDirectorState{CurrentIndex: -1}
	d.current = component.WaveDefinition{}
	d.spawned = 0
}

func (d *WaveDirector) spawnPoint() mgl64.Vec3 {
	angle := d.rng.Float64() * 2 * math.Pi
	return mgl64.Vec3{
		d.center.X() + math.Cos(angle)*d.radius,
		0,
		d.center.Z() + math.Sin(angle)*d.radius,
	}
}

func (d *WaveDirector) population() int {
	if d.spawner == nil {
		return 0
	}
	return d.spawner.Count()
}

// IsWaveComplete reports that the current wave is done and another index
// may still be started.
func (d *WaveDirector) IsWaveComplete() bool {
	if d == nil {
		return false
	}
	i := d.state.CurrentIndex
	return !d.state.Spawning && d.population() == 0 && i >= 0 && i < len(d.waves)
}

// IsLevelComplete reports that every wave has run and been cleared.
func (d *WaveDirector) IsLevelComplete() bool {
	if d == nil {
		return false
	}
	return d.state.CurrentIndex >= len(d.waves) && d.population() == 0 && !d.state.Spawning
}
