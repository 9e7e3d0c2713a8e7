package component

// DrawState is the bow's draw/release state. Times are simulation seconds.
type DrawState struct {
	Drawing           bool
	DrawStart         float64
	Strength          float64
	CooldownRemaining float64
}

// Begin starts a draw at now.
func (d *DrawState) Begin(now float64) {
	if d == nil {
		return
	}
	d.Drawing = true
	d.DrawStart = now
	d.Strength = 0
}

// Advance recomputes the strength from the elapsed draw time.
func (d *DrawState) Advance(now, maxDrawTime float64) float64 {
	if d == nil || !d.Drawing {
		return 0
	}
	if maxDrawTime <= 0 {
		d.Strength = 1
		return d.Strength
	}
	s := (now - d.DrawStart) / maxDrawTime
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	if s > d.Strength {
		d.Strength = s
	}
	return d.Strength
}

// Reset returns to Idle without touching the cooldown.
func (d *DrawState) Reset() {
	if d == nil {
		return
	}
	d.Drawing = false
	d.DrawStart = 0
	d.Strength = 0
}

// Tick decrements the cooldown, clamped at zero.
func (d *DrawState) Tick(dt float64) {
	if d == nil || d.CooldownRemaining <= 0 {
		return
	}
	d.CooldownRemaining -= dt
	if d.CooldownRemaining < 0 {
		d.CooldownRemaining = 0
	}
}
