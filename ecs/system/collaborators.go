package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/bastion/ecs/component"
)

// Assets supplies proxy templates by visual kind.
type Assets interface {
	Template(kind string) (component.ProxyTemplate, bool)
}

// Audio plays fire-and-forget cues.
type Audio interface {
	Play(cue string)
}

// InputState is one tick's worth of input.
type InputState struct {
	TriggerHeld    bool
	HoldDuration   float64
	AimOrigin      mgl64.Vec3
	AimDirection   mgl64.Vec3
	UpgradePressed bool
}

// Input is polled once per tick.
type Input interface {
	Poll() InputState
}

// UI receives wave messages and the end-of-game notification.
type UI interface {
	ShowMessage(text string, d time.Duration)
	GameOver(message string, state component.GameState)
}

// Persistence stores progress at wave boundaries.
type Persistence interface {
	Save(state component.GameState) error
	Clear() error
}

type nopAudio struct{}

func (nopAudio) Play(string) {}

type nopUI struct{}

func (nopUI) ShowMessage(string, time.Duration)    {}
func (nopUI) GameOver(string, component.GameState) {}

type nopPersistence struct{}

func (nopPersistence) Save(component.GameState) error { return nil }
func (nopPersistence) Clear() error                   { return nil }

const (
	CueBowDraw    = "bowDraw"
	CueBowRelease = "bowRelease"
	CueArrowHit   = "arrowHit"
	CueWaveStart  = "waveStart"
)

// Clock is the simulation time every timer reads. It advances by the frame's
// wall-clock delta.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64 {
	if c == nil {
		return 0
	}
	return c.now
}

func (c *Clock) Advance(dt float64) {
	if c == nil || dt <= 0 {
		return
	}
	c.now += dt
}
