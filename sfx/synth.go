package sfx

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const SampleRate = beep.SampleRate(48000)

type Wave int

const (
	Sine Wave = iota
	Square
	Saw
	Noise
)

// tone sweeps linearly from `from` to `to` Hz over its duration.
type tone struct {
	from, to float64
	wave     Wave
	rate     beep.SampleRate
	phase    float64
	pos, n   int
	rng      *rand.Rand
}

func newTone(from, to float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &tone{
		from: from,
		to:   to,
		wave: wave,
		rate: rate,
		n:    rate.N(d),
		rng:  rand.New(rand.NewSource(int64(from*1000 + to))),
	}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.pos >= t.n {
			return i, i > 0
		}
		var v float64
		switch t.wave {
		case Sine:
			v = math.Sin(2 * math.Pi * t.phase)
		case Square:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case Saw:
			v = 2*t.phase - 1
		case Noise:
			v = t.rng.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		freq := t.from + (t.to-t.from)*float64(t.pos)/float64(t.n)
		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// fade applies a linear attack and release over a streamer of known length.
type fade struct {
	s                  beep.Streamer
	attack, release, n int
	pos                int
}

func newFade(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &fade{s: s, attack: rate.N(attack), release: rate.N(release), n: rate.N(d)}
}

func (f *fade) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if f.attack > 0 && f.pos < f.attack {
			vol = float64(f.pos) / float64(f.attack)
		}
		if left := f.n - f.pos; f.release > 0 && left < f.release {
			vol = math.Max(0, float64(left)/float64(f.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.s.Err() }

// Voice is one segment of a cue.
type Voice struct {
	From, To float64
	Duration time.Duration
	Wave     Wave
}

// Cue is a named sound made of voices played back to back.
type Cue struct {
	Voices []Voice
	Gain   float64
}

// Streamer builds a fresh streamer for c.
func (c Cue) Streamer(rate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(c.Voices))
	for _, v := range c.Voices {
		edge := v.Duration / 8
		parts = append(parts, newFade(newTone(v.From, v.To, v.Duration, v.Wave, rate), v.Duration, edge, edge*2, rate))
	}
	return &effects.Gain{Streamer: beep.Seq(parts...), Gain: c.Gain - 1}
}

// Duration is the total length of c.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, v := range c.Voices {
		d += v.Duration
	}
	return d
}
