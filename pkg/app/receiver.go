package app

import (
	"sync"
	"time"

	"dcf77rx/pkg/dcf77"
	"dcf77rx/pkg/metrics"
	"dcf77rx/pkg/rtc"

	"github.com/womat/debug"
	"gonum.org/v1/gonum/stat"
)

// qualityWindow is the number of symbols of the quality summary.
const qualityWindow = 60

// Correction is a decoded minute frame as published.
type Correction struct {
	Time      string
	DayOfWeek int
	Date      string `json:",omitempty"`
	CEST      bool
	CET       bool
	Frame     string
	// Tick is the sample the frame was decoded at.
	Tick int64
	// Received is the system time of the decode, zero when replayed.
	Received time.Time

	decoded dcf77.Time
}

// Decoded returns the decoded time of day.
func (c Correction) Decoded() dcf77.Time { return c.decoded }

// Snapshot is the receiver state shown by the web services.
type Snapshot struct {
	State         string
	Symbol        string
	Quality       int
	QualityMean   float64
	QualityStdDev float64
	FineTune      int
	HoldOver      int
	Cursor        int
	Decoded       uint64
	Rejected      uint64
	LastError     string `json:",omitempty"`
	LastTime      string `json:",omitempty"`
	Clock         string
	Synced        bool
	Ticks         int64
	Last          *Correction `json:",omitempty"`
}

// sampleWriter records the raw samples.
type sampleWriter interface {
	WriteSample(bool) error
}

// Loop is the tick handler. It drives the software clock and the receiver,
// and turns the receiver diagnostics into log lines, metrics and corrections.
// OnTick belongs to the sampler goroutine, Snapshot may be called from any goroutine.
type Loop struct {
	rx      *dcf77.Receiver
	clock   *rtc.Clock
	metrics *metrics.Metrics
	rec     sampleWriter
	// found is called for every decoded minute frame
	found func(Correction)
	// wallClock stamps the corrections, nil when replaying
	wallClock func() time.Time

	ticks    int64
	state    dcf77.State
	decoded  uint64
	rejected uint64

	quality [qualityWindow]float64
	qn      int
	qpos    int

	sync.RWMutex
	snapshot Snapshot
	status   dcf77.Status
}

// NewLoop returns a loop for the decoder constants cfg.
func NewLoop(cfg dcf77.Config, found func(Correction)) (*Loop, error) {
	clock := rtc.New(cfg.SamplingRate)
	rx, err := dcf77.NewReceiver(cfg, clock)
	if err != nil {
		return nil, err
	}

	l := &Loop{rx: rx, clock: clock, found: found}
	l.status = rx.Status()
	l.snapshot = l.build(l.status)
	return l, nil
}

// OnTick handles one sample.
func (l *Loop) OnTick(sample bool) {
	if l.rec != nil {
		if err := l.rec.WriteSample(sample); err != nil {
			debug.ErrorLog.Printf("recording stopped: %v", err)
			l.rec = nil
		}
	}

	l.clock.Tick()
	l.rx.OnTick(sample)
	l.ticks++

	st := l.rx.Status()
	if l.metrics != nil {
		l.metrics.Observe(st)
	}

	changed := st.State != l.state
	if changed {
		debug.InfoLog.Printf("sync state %v -> %v", l.state, st.State)
		l.state = st.State
	}

	if !st.Ready {
		if changed {
			l.publishSnapshot(st, nil)
		}
		return
	}

	debug.DebugLog.Printf("symbol %v quality %d finetune %d cursor %d", st.Symbol, st.Quality, st.FineTune, st.Cursor)
	l.addQuality(st.Quality)

	var c *Correction
	if st.Decoded != l.decoded {
		l.decoded = st.Decoded
		c = l.correction(st)
		debug.InfoLog.Printf("decoded %v %v", c.Time, c.Date)
	}
	if st.Rejected != l.rejected {
		l.rejected = st.Rejected
		f, err := l.rx.LastFrame()
		debug.InfoLog.Printf("minute frame rejected: %v", err)
		debug.DebugLog.Printf("frame %v", f)
	}

	l.publishSnapshot(st, c)
	if c != nil && l.found != nil {
		l.found(*c)
	}
}

func (l *Loop) correction(st dcf77.Status) *Correction {
	f, _ := l.rx.LastFrame()
	c := &Correction{
		Time:      st.LastTime.String(),
		DayOfWeek: st.LastTime.DayOfWeek,
		Frame:     f.String(),
		Tick:      l.ticks - 1,
		decoded:   st.LastTime,
	}
	if d, err := dcf77.DecodeDate(f); err == nil {
		c.Date = d.String()
		c.CEST, c.CET = d.CEST, d.CET
	}
	if l.wallClock != nil {
		c.Received = l.wallClock()
	}
	return c
}

func (l *Loop) addQuality(q int) {
	l.quality[l.qpos] = float64(q)
	l.qpos = (l.qpos + 1) % qualityWindow
	if l.qn < qualityWindow {
		l.qn++
	}
}

// qualitySummary returns mean and standard deviation of the recent symbol qualities.
func (l *Loop) qualitySummary() (mean, stddev float64) {
	switch l.qn {
	case 0:
		return 0, 0
	case 1:
		return l.quality[0], 0
	}
	return stat.MeanStdDev(l.quality[:l.qn], nil)
}

func (l *Loop) publishSnapshot(st dcf77.Status, c *Correction) {
	s := l.build(st)

	l.Lock()
	defer l.Unlock()
	if c == nil {
		c = l.snapshot.Last
	}
	s.Last = c
	l.snapshot = s
	l.status = st
}

func (l *Loop) build(st dcf77.Status) Snapshot {
	mean, stddev := l.qualitySummary()
	if l.metrics != nil && st.Ready {
		l.metrics.ObserveQuality(mean, stddev)
	}

	s := Snapshot{
		State:         st.State.String(),
		Symbol:        st.Symbol.String(),
		Quality:       st.Quality,
		QualityMean:   mean,
		QualityStdDev: stddev,
		FineTune:      st.FineTune,
		HoldOver:      st.Hold,
		Cursor:        st.Cursor,
		Decoded:       st.Decoded,
		Rejected:      st.Rejected,
		Clock:         l.clock.Now().String(),
		Synced:        l.clock.Synced(),
		Ticks:         l.ticks,
	}
	if st.LastErr != nil {
		s.LastError = st.LastErr.Error()
	}
	if st.Decoded > 0 {
		s.LastTime = st.LastTime.String()
	}
	return s
}

// Snapshot returns the state as of the last symbol or state change.
func (l *Loop) Snapshot() Snapshot {
	l.RLock()
	defer l.RUnlock()
	return l.snapshot
}

// Console returns the values of the serial status line.
func (l *Loop) Console() (dcf77.Time, bool, dcf77.Status) {
	l.RLock()
	defer l.RUnlock()
	return l.clock.Now(), l.clock.Synced(), l.status
}
