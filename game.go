package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/system"
	"github.com/milk9111/bastion/hudfeed"
	"github.com/milk9111/bastion/prefabs"
	"github.com/milk9111/bastion/save"
)

// maxFrameDelta bounds the wall-clock step after a stall, such as a window
// drag.
const maxFrameDelta = 0.25

type GameOptions struct {
	Debug bool
	Seed  int64
	Store *save.Store
	Fresh bool
	Watch bool
	Audio system.Audio
	Feed  *hudfeed.Hub
}

type Game struct {
	frames int
	paused bool
	debug  bool

	loop    *system.CombatLoop
	catalog *prefabs.Catalog
	input   *Input
	hud     *HUD
	watcher *prefabs.Watcher
	feed    *hudfeed.Hub
	store   *save.Store
	audio   system.Audio

	last time.Time
}

func NewGame(opts GameOptions) (*Game, error) {
	cfg, err := system.LoadCombatConfig(opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("load prefabs: %w", err)
	}
	catalog, ok := cfg.Assets.(*prefabs.Catalog)
	if !ok {
		return nil, errors.New("asset catalog has unexpected type")
	}

	g := &Game{
		debug:   opts.Debug,
		catalog: catalog,
		feed:    opts.Feed,
		store:   opts.Store,
		audio:   opts.Audio,
	}
	g.input = NewInput(cfg.Arena.AimOriginVec())
	g.hud = NewHUD(g)

	cfg.Audio = opts.Audio
	cfg.UI = g.hud
	cfg.Input = g.input
	if opts.Store != nil {
		cfg.Persistence = opts.Store
	}
	loop, err := system.NewCombatLoop(cfg)
	if err != nil {
		return nil, err
	}
	g.loop = loop

	var saved *component.GameState
	if opts.Store != nil && !opts.Fresh {
		s, err := opts.Store.Load()
		if err != nil {
			log.Printf("ignoring save: %v", err)
		}
		saved = s
	}
	if err := loop.Start(saved); err != nil {
		log.Printf("start: %v", err)
	}

	if opts.Watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("prefab watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) Update() error {
	g.frames++
	now := time.Now()
	dt := 0.0
	if !g.last.IsZero() {
		dt = min(now.Sub(g.last).Seconds(), maxFrameDelta)
	}
	g.last = now

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && !g.loop.GameOver() {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if (g.loop.GameOver() || g.loop.Victory()) && inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}

	g.applyReloads()
	g.input.Update()
	if !g.paused {
		g.loop.Tick(dt)
	}
	g.publish()
	g.hud.Update(g.loop, dt, g.paused)
	return nil
}

func (g *Game) restart() {
	g.paused = false
	g.hud.Reset()
	if err := g.loop.Restart(); err != nil {
		log.Printf("restart: %v", err)
	}
}

// applyReloads drains pending prefab changes without blocking.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if err := g.loop.Reload(change.Name, g.catalog); err != nil {
				log.Printf("reload %s: %v", change.Name, err)
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("prefab watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) publish() {
	for _, ev := range g.loop.Events() {
		if ev.Kind == system.EventWaveStarted && g.audio != nil {
			g.audio.Play(system.CueWaveStart)
		}
		g.feed.Publish(hudfeed.TypeEvent, ev)
	}
	if g.frames%15 == 0 {
		g.feed.Publish(hudfeed.TypeState, g.loop.State().Snapshot())
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawArena(screen, g.loop, g.input)
	if g.debug {
		drawDebug(screen, g.loop)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.1f  bodies: %d  arrows: %d  attackers: %d",
			ebiten.ActualFPS(), g.loop.World().BodyCount(), g.loop.Bow().ProjectileCount(), g.loop.Attackers().Count()), 8, common.BaseHeight-20)
	}
	g.hud.Draw(screen)
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
