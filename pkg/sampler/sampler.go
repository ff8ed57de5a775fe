// Package sampler is the tick source of the receiver.
// It reads a line at a fixed sampling rate and hands every sample to a handler.
package sampler

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"dcf77rx/pkg/port"

	"github.com/womat/debug"
)

// Handler consumes one sample per tick.
type Handler func(sample bool)

// Sampler polls a line from its own goroutine.
type Sampler struct {
	line    port.Reader
	rate    int
	handler Handler

	ticks    atomic.Int64
	overruns atomic.Int64

	quit chan struct{}
	done chan struct{}
}

// New starts sampling line rate times per second.
func New(line port.Reader, rate int, handler Handler) *Sampler {
	s := &Sampler{
		line:    line,
		rate:    rate,
		handler: handler,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go s.run()
	return s
}

// run calls the handler for every tick. Ticks missed by a late timer are caught up with
// the current level, so the tick count always follows the wall clock.
func (s *Sampler) run() {
	defer close(s.done)

	period := time.Second / time.Duration(s.rate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-s.quit:
			return
		case now := <-ticker.C:
			due := int64(now.Sub(start)/period) + 1
			sample := s.line.Read()

			n := due - s.ticks.Load()
			if n > 1 {
				s.overruns.Add(n - 1)
				debug.TraceLog.Printf("sampler overrun, %d ticks caught up", n-1)
			}
			for ; n > 0; n-- {
				s.handler(sample)
				s.ticks.Add(1)
			}
		}
	}
}

// Ticks returns the number of handled ticks.
func (s *Sampler) Ticks() int64 { return s.ticks.Load() }

// Overruns returns the number of ticks that were caught up.
func (s *Sampler) Overruns() int64 { return s.overruns.Load() }

// Close stops sampling and waits for the running handler to return.
func (s *Sampler) Close() error {
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	<-s.done
	return nil
}

// Source delivers recorded samples. Next returns io.EOF after the last sample.
type Source interface {
	Next() (bool, error)
}

// Replay hands all samples of src to handler as fast as possible.
// It returns the number of samples replayed.
func Replay(src Source, handler Handler) (int64, error) {
	var n int64
	for {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		handler(s)
		n++
	}
}

// Generated adapts a sample generator to a Source of n samples.
type Generated struct {
	Sample func(n int64) bool
	N      int64
	next   int64
}

func (g *Generated) Next() (bool, error) {
	if g.next >= g.N {
		return false, io.EOF
	}
	s := g.Sample(g.next)
	g.next++
	return s, nil
}
