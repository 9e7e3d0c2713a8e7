package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/milk9111/bastion/ecs/system"
	"github.com/milk9111/bastion/hudfeed"
	"github.com/milk9111/bastion/save"
)

func main() {
	duration := flag.Duration("duration", 5*time.Minute, "simulated time to run")
	seed := flag.Int64("seed", 1, "spawn position seed")
	tps := flag.Int("tps", 60, "simulation ticks per second")
	draw := flag.Float64("draw", 1.5, "seconds the bot holds each draw")
	upgrades := flag.Bool("upgrades", true, "let the bot buy bow upgrades")
	savePath := flag.String("save", "", "write wave-boundary saves to this file")
	hudAddr := flag.String("hud-addr", "", "serve the HUD websocket feed on this address")
	realtime := flag.Bool("realtime", false, "pace ticks at wall-clock speed")
	flag.Parse()

	cfg, err := system.LoadCombatConfig(*seed)
	if err != nil {
		log.Fatalf("sim: %v", err)
	}
	cost := 0
	if *upgrades {
		cost = cfg.Arena.UpgradeCost
	}
	b := newBot(cfg.Arena.AimOriginVec(), cfg.Arena.Physics.Gravity, *draw, cost)
	cfg.Input = b
	if *savePath != "" {
		cfg.Persistence = save.NewStore(*savePath)
	}

	var server *hudfeed.Server
	if *hudAddr != "" {
		server = hudfeed.NewServer(*hudAddr, hudfeed.NewHub())
		server.Start()
	}

	loop, err := system.NewCombatLoop(cfg)
	if err != nil {
		log.Fatalf("sim: %v", err)
	}
	b.loop = loop
	if err := loop.Start(nil); err != nil {
		log.Fatalf("sim: start: %v", err)
	}

	var feed *hudfeed.Hub
	if server != nil {
		feed = server.Hub
	}
	dt := 1 / float64(*tps)
	ticks := int(duration.Seconds() * float64(*tps))
	for i := 0; i < ticks && !loop.GameOver() && !loop.Victory(); i++ {
		b.step(dt)
		loop.Tick(dt)
		for _, ev := range loop.Events() {
			log.Printf("sim: t=%.1fs %s wave=%d score=%d tower=%d", loop.Clock().Now(), ev.Kind, ev.Wave, ev.State.Score, ev.State.StructureHealth)
			feed.Publish(hudfeed.TypeEvent, ev)
		}
		if i%*tps == 0 {
			feed.Publish(hudfeed.TypeState, loop.State().Snapshot())
		}
		if *realtime {
			time.Sleep(time.Duration(dt * float64(time.Second)))
		}
	}

	s := loop.State()
	log.Printf("sim: finished at t=%.1fs wave=%d score=%d resources=%d tower=%d fired=%d victory=%v gameOver=%v",
		loop.Clock().Now(), s.CurrentWave, s.Score, s.Resources, s.StructureHealth, loop.Bow().Fired(), loop.Victory(), s.GameOver)

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
