package dcf77

// State is the synchronization state of a Receiver.
type State int

const (
	// Coarse searches for a symbol boundary, no phase lock.
	Coarse State = iota
	// Fine is locked and corrects small phase drift.
	Fine
	// HoldOver has lost the signal and flywheels on the last known phase.
	HoldOver
)

func (s State) String() string {
	switch s {
	case Coarse:
		return "coarse"
	case Fine:
		return "fine"
	case HoldOver:
		return "holdover"
	default:
		return "unknown"
	}
}

// indexes of the three phase shifted detectors
const (
	early = iota
	onTime
	late
)

// Clock receives the time corrections of a Receiver.
// SetTime is called from within OnTick and must not block.
type Clock interface {
	SetTime(Time)
}

// Receiver is the synchronization controller. It runs three detectors spaced by
// FineOffset ticks, acquires the symbol boundary, tracks its drift and feeds the
// on-time symbols into the minute frame.
//
// A Receiver is not safe for concurrent use; all calls belong to the tick loop.
type Receiver struct {
	cfg   Config
	clock Clock

	det     [3]Detector
	offsets [3]int

	state State
	// fineTune integrates early (negative) and late (positive) phase votes.
	fineTune int
	// hold counts the bad windows in hold-over.
	hold int
	// prev is the sample of the previous tick, for edge detection.
	prev bool
	// armed is set while the early detector runs a window anchored to an edge.
	armed bool

	frame Frame

	symbolReady bool
	symbol      Symbol
	quality     int

	decoded  uint64
	rejected uint64
	lastTime Time
	lastErr  error
	lastFrm  Frame
}

// Status is a snapshot of the diagnostic values of a Receiver.
type Status struct {
	State    State
	Ready    bool
	Symbol   Symbol
	Quality  int
	FineTune int
	Hold     int
	Cursor   int
	Decoded  uint64
	Rejected uint64
	LastTime Time
	LastErr  error
}

// NewReceiver returns a receiver in the coarse state. clock may be nil.
func NewReceiver(cfg Config, clock Clock) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Receiver{
		cfg:     cfg,
		clock:   clock,
		offsets: [3]int{cfg.FineOffset, 0, -cfg.FineOffset},
	}
	for i := range r.det {
		r.det[i] = NewDetector(cfg)
	}
	r.anchor()
	return r, nil
}

// OnTick advances the receiver by one sample. sample is true while the carrier is reduced.
func (r *Receiver) OnTick(sample bool) {
	rising := sample && !r.prev
	r.prev = sample

	// one edge per window; later edges are ignored until the early detector decided
	if r.state == Coarse && rising && !r.armed {
		r.anchor()
		r.armed = true
	}

	for i := range r.det {
		r.det[i].Step(sample)
	}

	r.symbolReady = false

	switch r.state {
	case Coarse:
		// an edge alone may be noise; lock only after a data symbol was decoded from it
		if d := &r.det[early]; d.Ready() {
			r.armed = false
			if d.Symbol().IsData() {
				r.state = Fine
				r.fineTune = 0
			}
		}

	case Fine:
		if d := &r.det[onTime]; d.Ready() {
			r.accept(d)
			if d.Symbol() == Invalid {
				r.state = HoldOver
				r.hold = 0
			}
		}
		if r.state == Fine && r.det[late].Ready() {
			r.tune()
		}

	case HoldOver:
		if d := &r.det[onTime]; d.Ready() {
			r.accept(d)
			if r.resumes(d.Symbol()) {
				r.state = Fine
				break
			}
			r.hold++
			if r.hold > r.cfg.HoldOverLimit {
				r.state = Coarse
				r.fineTune = 0
				r.hold = 0
				r.armed = false
				r.frame.Reset()
			}
		}
	}
}

// anchor restarts all detectors at their phase offsets relative to the current tick.
func (r *Receiver) anchor() {
	for i := range r.det {
		r.det[i].Reset(r.offsets[i])
	}
}

// tune compares the quality of the three detectors of the window just completed.
func (r *Receiver) tune() {
	// on-time first: Vote keeps the lowest index on a tie, so a tie never moves the phase
	best, _ := Vote(r.det[onTime].Quality(), r.det[early].Quality(), r.det[late].Quality())

	switch best {
	case 1:
		r.fineTune--
		if r.fineTune < -r.cfg.FineTuneThreshold {
			r.shift(r.cfg.FineTuneShift)
		}
	case 2:
		r.fineTune++
		if r.fineTune > r.cfg.FineTuneThreshold {
			r.shift(-r.cfg.FineTuneShift)
		}
	}
}

// shift moves the phase of all detectors by n ticks and clears the fine tune counter.
// A positive n moves the window boundary earlier.
func (r *Receiver) shift(n int) {
	for i := range r.det {
		r.det[i].Shift(n)
	}
	r.fineTune = 0
}

func (r *Receiver) resumes(s Symbol) bool {
	if r.cfg.HoldOverPolicy == HoldOverLenient {
		return s != Invalid
	}
	return s.IsData()
}

// accept publishes the on-time symbol and records it in the minute frame.
func (r *Receiver) accept(d *Detector) {
	r.symbolReady = true
	r.symbol = d.Symbol()
	r.quality = d.Quality()

	if f, ok := r.frame.Record(r.symbol); ok {
		r.decode(f)
	}
}

func (r *Receiver) decode(f Frame) {
	r.lastFrm = f

	t, err := Decode(f, r.cfg.CheckParity)
	if err != nil {
		r.rejected++
		r.lastErr = err
		return
	}

	r.decoded++
	r.lastTime = t
	r.lastErr = nil
	if r.clock != nil {
		r.clock.SetTime(t)
	}
}

// State returns the synchronization state.
func (r *Receiver) State() State { return r.state }

// SymbolReady reports whether the last OnTick produced an on-time symbol.
func (r *Receiver) SymbolReady() bool { return r.symbolReady }

// Symbol returns the last on-time symbol.
func (r *Receiver) Symbol() Symbol { return r.symbol }

// Quality returns the quality score of the last on-time symbol.
func (r *Receiver) Quality() int { return r.quality }

// FineTune returns the fine tune counter.
func (r *Receiver) FineTune() int { return r.fineTune }

// Phases returns the window positions of the early, on-time and late detectors.
func (r *Receiver) Phases() [3]int {
	return [3]int{r.det[early].Tick(), r.det[onTime].Tick(), r.det[late].Tick()}
}

// LastFrame returns the last frame handed to the decoder and the decode result.
func (r *Receiver) LastFrame() (Frame, error) { return r.lastFrm, r.lastErr }

// Status returns a snapshot of the diagnostic values.
func (r *Receiver) Status() Status {
	return Status{
		State:    r.state,
		Ready:    r.symbolReady,
		Symbol:   r.symbol,
		Quality:  r.quality,
		FineTune: r.fineTune,
		Hold:     r.hold,
		Cursor:   r.frame.Cursor(),
		Decoded:  r.decoded,
		Rejected: r.rejected,
		LastTime: r.lastTime,
		LastErr:  r.lastErr,
	}
}
