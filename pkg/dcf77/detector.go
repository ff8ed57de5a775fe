package dcf77

// Detector measures the pulse width within one symbol window.
//
// The window is split in three zones:
//
//	[0, ShortZone)         a pulse votes for short and long, silence for gap
//	[ShortZone, LongZone)  a pulse votes for long, silence for short and gap
//	[LongZone, Window)     silence increments the quiet counter
//
// When the window is complete the best hypothesis plus the quiet count gives the quality score.
type Detector struct {
	// tick is the position in the current window. It is negative or beyond the window
	// while a phase offset is carried into the next window.
	tick int
	// votes holds the short, long and gap votes of the current window.
	votes [3]int
	// quiet counts the silent ticks after the decision zones.
	quiet int
	// done is set once the current window is decided, until the detector re-arms.
	done bool

	// ready is true for the one call that completed a window.
	ready   bool
	symbol  Symbol
	quality int

	window     int
	shortZone  int
	longZone   int
	minQuality int
}

// NewDetector returns a detector for the window layout of c.
func NewDetector(c Config) Detector {
	return Detector{
		window:     c.Window,
		shortZone:  c.ShortZone,
		longZone:   c.LongZone,
		minQuality: c.MinQuality,
	}
}

// Reset restarts the window at the given phase offset. The last decision is kept.
func (d *Detector) Reset(offset int) {
	d.tick = offset
	d.votes = [3]int{}
	d.quiet = 0
	d.done = false
	d.ready = false
}

// Shift moves the phase of the detector by n ticks.
func (d *Detector) Shift(n int) {
	d.tick += n
}

// Step consumes one sample. It must be called exactly once per tick.
func (d *Detector) Step(sample bool) {
	d.ready = false

	if d.tick >= d.window {
		d.tick -= d.window
		d.votes = [3]int{}
		d.quiet = 0
		d.done = false
	}

	switch t := d.tick; {
	case t < 0:
		// tail of a phase correction, not part of this window
	case t < d.shortZone:
		if sample {
			d.votes[short]++
			d.votes[long]++
		} else {
			d.votes[gap]++
		}
	case t < d.longZone:
		if sample {
			d.votes[long]++
		} else {
			d.votes[short]++
			d.votes[gap]++
		}
	default:
		if !sample {
			d.quiet++
		}
	}

	d.tick++
	if d.tick >= d.window && !d.done {
		d.decide()
	}
}

func (d *Detector) decide() {
	h, n := Vote(d.votes[short], d.votes[long], d.votes[gap])
	d.quality = d.quiet + n
	if d.quality >= d.minQuality {
		d.symbol = hypotheses[h]
	} else {
		d.symbol = Invalid
	}
	d.ready = true
	d.done = true
}

// Ready reports whether the last Step completed a window.
func (d *Detector) Ready() bool { return d.ready }

// Symbol returns the decision of the last completed window.
func (d *Detector) Symbol() Symbol { return d.symbol }

// Quality returns the quality score of the last completed window, 0..Window.
func (d *Detector) Quality() int { return d.quality }

// Tick returns the position in the current window.
func (d *Detector) Tick() int { return d.tick }
