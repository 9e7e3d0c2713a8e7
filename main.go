package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/hudfeed"
	"github.com/milk9111/bastion/save"
	"github.com/milk9111/bastion/sfx"
)

func main() {
	debug := flag.Bool("debug", false, "draw physics bodies and timing info")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	savePath := flag.String("save", save.DefaultPath, "progress file")
	fresh := flag.Bool("fresh", false, "ignore saved progress")
	hudAddr := flag.String("hud-addr", "", "serve the HUD websocket feed on this address, e.g. :8089")
	seed := flag.Int64("seed", time.Now().UnixNano(), "spawn position seed")
	watch := flag.Bool("watch", true, "reload prefabs/ when files change")
	volume := flag.Float64("volume", 0.6, "sound effect volume, 0 to 1")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("bastion")

	player := sfx.NewPlayer(audio.NewContext(int(sfx.SampleRate)), sfx.NewBank(sfx.SampleRate, sfx.DefaultCues()))
	player.SetVolume(*volume)

	var server *hudfeed.Server
	if *hudAddr != "" {
		server = hudfeed.NewServer(*hudAddr, hudfeed.NewHub())
		server.Start()
	}

	opts := GameOptions{
		Debug: *debug,
		Seed:  *seed,
		Store: save.NewStore(*savePath),
		Fresh: *fresh,
		Watch: *watch,
		Audio: player,
	}
	if server != nil {
		opts.Feed = server.Hub
	}
	game, err := NewGame(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("hud feed shutdown: %v", err)
		}
	}
}
