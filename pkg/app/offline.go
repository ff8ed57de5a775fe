package app

import (
	"dcf77rx/pkg/dcf77"
	"dcf77rx/pkg/sampler"

	"github.com/womat/debug"
)

// Offline decodes all samples of src as fast as possible and calls found for every
// decoded minute frame. It returns the final receiver state.
func Offline(cfg dcf77.Config, src sampler.Source, found func(Correction)) (Snapshot, error) {
	l, err := NewLoop(cfg, found)
	if err != nil {
		return Snapshot{}, err
	}

	n, err := sampler.Replay(src, l.OnTick)
	debug.InfoLog.Printf("%d samples (%d s) decoded", n, n/int64(cfg.SamplingRate))

	// the final state is published even if the last tick was not a symbol
	l.publishSnapshot(l.rx.Status(), nil)
	return l.Snapshot(), err
}
