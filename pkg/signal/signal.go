// Package signal generates the sampled DCF77 broadcast for a given wall clock time.
// It feeds the emulated GPIO line, the simulate command and the end to end tests.
package signal

import (
	"math/rand"
	"time"

	"dcf77rx/pkg/dcf77"
)

// Generator produces the sample of every tick after start.
// A sample is true while the carrier is reduced.
type Generator struct {
	rate  int
	start time.Time

	// Noise is the probability a sample is inverted.
	Noise float64
	// Outages lists tick ranges during which the carrier is lost and the line stays reduced.
	Outages []Outage

	rnd *rand.Rand

	// frame caches the encoded minute.
	minute time.Time
	frame  dcf77.Frame
}

// Outage is a range of ticks [From, To).
type Outage struct {
	From, To int64
}

// New returns a generator for rate ticks per second. start is truncated to the second.
func New(rate int, start time.Time, seed int64) *Generator {
	return &Generator{
		rate:  rate,
		start: start.Truncate(time.Second),
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

// Start returns the time of tick 0.
func (g *Generator) Start() time.Time { return g.start }

// Time returns the wall clock time of tick n.
func (g *Generator) Time(n int64) time.Time {
	return g.start.Add(time.Duration(n) * time.Second / time.Duration(g.rate))
}

// Sample returns the line level of tick n.
func (g *Generator) Sample(n int64) bool {
	for _, o := range g.Outages {
		if n >= o.From && n < o.To {
			return true
		}
	}

	s := g.clean(n)
	if g.Noise > 0 && g.rnd.Float64() < g.Noise {
		s = !s
	}
	return s
}

func (g *Generator) clean(n int64) bool {
	sec := n / int64(g.rate)
	sub := int(n % int64(g.rate))
	t := g.start.Add(time.Duration(sec) * time.Second)

	if t.Second() == 59 {
		return false
	}

	width := g.rate / 10
	if f := g.frameOf(t); f.Bit(t.Second()) {
		width = 2 * g.rate / 10
	}
	return sub < width
}

// frameOf returns the frame broadcast during the minute of t, which announces the next minute.
func (g *Generator) frameOf(t time.Time) dcf77.Frame {
	m := t.Truncate(time.Minute)
	if !m.Equal(g.minute) || g.minute.IsZero() {
		g.minute = m
		g.frame = Frame(m.Add(time.Minute))
	}
	return g.frame
}

// Frame encodes the minute frame announcing t.
func Frame(t time.Time) dcf77.Frame {
	cest := t.IsDST()
	return dcf77.Encode(Time(t), dcf77.Date{
		Day:   t.Day(),
		Month: int(t.Month()),
		Year:  t.Year(),
		CEST:  cest,
		CET:   !cest,
	})
}

// Time converts t to the decoded time of day, Monday = 0.
func Time(t time.Time) dcf77.Time {
	return dcf77.Time{
		Second:    t.Second(),
		Minute:    t.Minute(),
		Hour:      t.Hour(),
		DayOfWeek: (int(t.Weekday()) + 6) % 7,
	}
}
