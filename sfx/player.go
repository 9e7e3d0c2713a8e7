package sfx

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Player plays bank cues through an ebiten audio context. Unknown cues are
// logged once and ignored.
type Player struct {
	ctx     *audio.Context
	bank    *Bank
	volume  float64
	missing map[string]bool
}

func NewPlayer(ctx *audio.Context, bank *Bank) *Player {
	return &Player{ctx: ctx, bank: bank, volume: 1, missing: make(map[string]bool)}
}

func (p *Player) SetVolume(v float64) {
	if p == nil {
		return
	}
	p.volume = v
}

func (p *Player) Play(cue string) {
	if p == nil || p.ctx == nil {
		return
	}
	data, ok := p.bank.PCM(cue)
	if !ok {
		if !p.missing[cue] {
			p.missing[cue] = true
			log.Printf("Audio: no sound for cue %q", cue)
		}
		return
	}
	player := p.ctx.NewPlayerFromBytes(data)
	player.SetVolume(p.volume)
	player.Play()
}
