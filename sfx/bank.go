package sfx

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gopxl/beep"
)

// DefaultCues maps every cue the simulation plays to a synthesized sound.
func DefaultCues() map[string]Cue {
	ms := time.Millisecond
	return map[string]Cue{
		"bowDraw":     {Gain: 0.25, Voices: []Voice{{From: 220, To: 330, Duration: 140 * ms, Wave: Saw}}},
		"bowRelease":  {Gain: 0.35, Voices: []Voice{{From: 900, To: 300, Duration: 60 * ms, Wave: Noise}, {From: 420, To: 180, Duration: 90 * ms, Wave: Sine}}},
		"arrowHit":    {Gain: 0.4, Voices: []Voice{{From: 180, To: 120, Duration: 70 * ms, Wave: Square}}},
		"enemyAttack": {Gain: 0.3, Voices: []Voice{{From: 140, To: 90, Duration: 110 * ms, Wave: Saw}}},
		"enemyHit":    {Gain: 0.3, Voices: []Voice{{From: 520, To: 380, Duration: 50 * ms, Wave: Square}}},
		"enemyDie":    {Gain: 0.35, Voices: []Voice{{From: 400, To: 80, Duration: 260 * ms, Wave: Saw}}},
		"towerHit":    {Gain: 0.4, Voices: []Voice{{From: 90, To: 60, Duration: 150 * ms, Wave: Noise}}},
		"waveStart": {Gain: 0.3, Voices: []Voice{
			{From: 330, To: 330, Duration: 120 * ms, Wave: Sine},
			{From: 440, To: 440, Duration: 120 * ms, Wave: Sine},
			{From: 660, To: 660, Duration: 200 * ms, Wave: Sine},
		}},
	}
}

// Bank holds every cue pre-rendered as 16-bit little-endian stereo PCM.
type Bank struct {
	rate beep.SampleRate
	pcm  map[string][]byte
}

func NewBank(rate beep.SampleRate, cues map[string]Cue) *Bank {
	b := &Bank{rate: rate, pcm: make(map[string][]byte, len(cues))}
	for name, c := range cues {
		b.pcm[name] = Render(c.Streamer(rate))
	}
	return b
}

func (b *Bank) SampleRate() beep.SampleRate {
	if b == nil {
		return 0
	}
	return b.rate
}

// PCM returns the rendered bytes of a cue.
func (b *Bank) PCM(name string) ([]byte, bool) {
	if b == nil {
		return nil, false
	}
	data, ok := b.pcm[name]
	return data, ok
}

func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.pcm)
}

// Render drains s into 16-bit little-endian stereo PCM.
func Render(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			for _, v := range frame {
				out = binary.LittleEndian.AppendUint16(out, uint16(int16(math.Max(-1, math.Min(1, v))*math.MaxInt16)))
			}
		}
		if !ok {
			return out
		}
	}
}
