package vis

import "time"

// Playback manages replay timing over the experiment's simulated time span.
type Playback struct {
	CurrentTime float64
	MaxTime     float64
	Speed       float64
	Playing     bool
	lastUpdate  time.Time
}

// NewPlayback returns a paused playback over [0, maxTime].
func NewPlayback(maxTime float64) *Playback {
	return &Playback{MaxTime: maxTime, Speed: 1.0, lastUpdate: time.Now()}
}

// TogglePlay toggles playback, restarting from zero when at the end.
func (p *Playback) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Reset rewinds and pauses.
func (p *Playback) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves the clock by the real time elapsed since the last update,
// scaled by Speed.
func (p *Playback) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	p.CurrentTime += now.Sub(p.lastUpdate).Seconds() * p.Speed
	p.lastUpdate = now
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime clamps and sets the clock.
func (p *Playback) SetTime(t float64) {
	if t < 0 {
		t = 0
	}
	if t > p.MaxTime {
		t = p.MaxTime
	}
	p.CurrentTime = t
}

// StepForward pauses and advances by 1% of the span.
func (p *Playback) StepForward() {
	p.Playing = false
	p.SetTime(p.CurrentTime + p.step())
}

// StepBack pauses and rewinds by 1% of the span.
func (p *Playback) StepBack() {
	p.Playing = false
	p.SetTime(p.CurrentTime - p.step())
}

func (p *Playback) step() float64 {
	step := p.MaxTime / 100
	if step < 0.1 {
		step = 0.1
	}
	return step
}
