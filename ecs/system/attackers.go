package system

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/entity"
	"github.com/milk9111/bastion/physics"
	"github.com/milk9111/bastion/prefabs"
)

// AttackerSystem owns the live attacker collection and its removal queue.
type AttackerSystem struct {
	world  *physics.World
	scene  *component.Scene
	assets Assets
	audio  Audio
	clock  *Clock
	state  *component.GameState
	kinds  map[string]prefabs.AttackerSpec

	live     *ecs.Arena[*entity.Attacker]
	removals ecs.RemovalQueue

	deaths    int
	teardowns int
}

func NewAttackerSystem(world *physics.World, scene *component.Scene, assets Assets, audio Audio, clock *Clock, state *component.GameState, kinds map[string]prefabs.AttackerSpec) *AttackerSystem {
	if audio == nil {
		audio = nopAudio{}
	}
	return &AttackerSystem{
		world:  world,
		scene:  scene,
		assets: assets,
		audio:  audio,
		clock:  clock,
		state:  state,
		kinds:  kinds,
		live:   ecs.NewArena[*entity.Attacker](),
	}
}

// Spawn creates one attacker for a wave at a ground position. A missing
// template fails with a ResourceMissingError and leaves nothing behind.
func (s *AttackerSystem) Spawn(def component.WaveDefinition, at mgl64.Vec3) (*entity.Attacker, error) {
	if s == nil {
		return nil, &ecs.ConfigurationError{Name: def.AttackerType, Reason: "no attacker system"}
	}
	tmpl, ok := s.assets.Template(def.AttackerType)
	if !ok {
		return nil, &ecs.ResourceMissingError{Kind: def.AttackerType}
	}
	kind := s.kinds[def.AttackerType]
	attackRange := kind.AttackRange
	if attackRange <= 0 {
		attackRange = 3
	}
	a, err := entity.NewAttacker(s.live, s.world, s.scene, s.audio, entity.AttackerDef{
		Template:      tmpl,
		Stats:         def,
		Position:      at,
		AttackRange:   attackRange,
		LinearDamping: kind.LinearDamping,
	})
	if err != nil {
		return nil, fmt.Errorf("attackers: spawn %s: %w", def.AttackerType, err)
	}
	return a, nil
}

// Count is the number of attackers not yet torn down.
func (s *AttackerSystem) Count() int {
	if s == nil {
		return 0
	}
	return s.live.Len()
}

func (s *AttackerSystem) Get(e ecs.Entity) (*entity.Attacker, bool) {
	if s == nil {
		return nil, false
	}
	return s.live.Get(e)
}

func (s *AttackerSystem) Entities() []ecs.Entity {
	if s == nil {
		return nil
	}
	return s.live.Entities()
}

// Deaths counts isDead transitions; Teardowns counts Die calls that did
// work. They match once every death has been flushed.
func (s *AttackerSystem) Deaths() int {
	if s == nil {
		return 0
	}
	return s.deaths
}

func (s *AttackerSystem) Teardowns() int {
	if s == nil {
		return 0
	}
	return s.teardowns
}

func (s *AttackerSystem) PendingRemovals() int {
	if s == nil {
		return 0
	}
	return s.removals.Len()
}

// ApplyHit damages the attacker behind target. It runs inside the physics
// step, so a kill only marks and queues.
func (s *AttackerSystem) ApplyHit(target ecs.Entity, amount int, now float64) bool {
	if s == nil {
		return false
	}
	a, ok := s.live.Get(target)
	if !ok {
		return false
	}
	killed := a.TakeDamage(amount, now)
	if killed {
		s.deaths++
	}
	if a.IsDead() {
		s.removals.Push(target)
	}
	return killed
}

// Update runs every live attacker's AI against target. Attackers found dead
// before or after their update are queued for the flush.
func (s *AttackerSystem) Update(dt float64, target mgl64.Vec3) {
	if s == nil {
		return
	}
	for _, e := range s.live.Entities() {
		a, ok := s.live.Get(e)
		if !ok {
			continue
		}
		if a.IsDead() {
			s.removals.Push(e)
			continue
		}
		a.Update(dt, target, s.state)
		if a.IsDead() {
			s.removals.Push(e)
		}
	}
}

// Flush tears down every queued attacker, credits its reward and drops it
// from the live collection. An empty queue is a no-op.
func (s *AttackerSystem) Flush() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.removals.Drain() {
		a, ok := s.live.Get(e)
		if !ok {
			continue
		}
		if a.Die() {
			s.teardowns++
			n++
			s.state.ApplyReward(a.ScoreValue, a.ResourceValue)
		} else {
			log.Printf("Attackers: %v already torn down", e)
		}
		s.live.Remove(e)
	}
	return n
}

// Clear removes every attacker without rewards, used when a run restarts.
func (s *AttackerSystem) Clear() {
	if s == nil {
		return
	}
	s.removals.Drain()
	for _, e := range s.live.Entities() {
		if a, ok := s.live.Get(e); ok {
			a.Die()
		}
		s.live.Remove(e)
	}
}
