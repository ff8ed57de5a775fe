// Package metrics exports the receiver diagnostics to prometheus.
package metrics

import (
	"errors"

	"dcf77rx/pkg/dcf77"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the receiver collectors.
type Metrics struct {
	state       prometheus.Gauge
	quality     prometheus.Gauge
	fineTune    prometheus.Gauge
	hold        prometheus.Gauge
	symbols     *prometheus.CounterVec
	frames      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	corrections prometheus.Counter
	overruns    prometheus.Gauge
	qualityMean prometheus.Gauge
	qualityDev  prometheus.Gauge

	// last counter values seen in a status, to derive increments
	decoded  uint64
	rejected uint64
	prev     dcf77.State
}

// New registers the collectors at reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		state: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_sync_state",
			Help: "Synchronization state (0=coarse, 1=fine, 2=holdover)",
		}),
		quality: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_symbol_quality",
			Help: "Quality score of the last on-time symbol in ticks",
		}),
		fineTune: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_fine_tune",
			Help: "Fine tune counter, negative while the signal arrives early",
		}),
		hold: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_holdover_windows",
			Help: "Bad windows counted in hold-over",
		}),
		symbols: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dcf77_symbols_total",
			Help: "On-time symbols by value",
		}, []string{"symbol"}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dcf77_frames_total",
			Help: "Minute frames by decode result",
		}, []string{"result"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dcf77_state_transitions_total",
			Help: "Synchronization state transitions by new state",
		}, []string{"state"}),
		corrections: f.NewCounter(prometheus.CounterOpts{
			Name: "dcf77_clock_corrections_total",
			Help: "Time corrections applied to the clock",
		}),
		overruns: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_sampler_overruns",
			Help: "Ticks caught up by the sampler after a late timer",
		}),
		qualityMean: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_symbol_quality_mean",
			Help: "Mean symbol quality over the last minute",
		}),
		qualityDev: f.NewGauge(prometheus.GaugeOpts{
			Name: "dcf77_symbol_quality_stddev",
			Help: "Standard deviation of the symbol quality over the last minute",
		}),
	}
}

// Observe updates the collectors from a receiver status taken after a tick.
func (m *Metrics) Observe(st dcf77.Status) {
	if st.State != m.prev {
		m.transitions.WithLabelValues(st.State.String()).Inc()
		m.prev = st.State
	}
	m.state.Set(float64(st.State))
	m.fineTune.Set(float64(st.FineTune))
	m.hold.Set(float64(st.Hold))

	if st.Ready {
		m.quality.Set(float64(st.Quality))
		m.symbols.WithLabelValues(st.Symbol.String()).Inc()
	}

	if st.Decoded > m.decoded {
		m.frames.WithLabelValues("ok").Add(float64(st.Decoded - m.decoded))
		m.corrections.Add(float64(st.Decoded - m.decoded))
		m.decoded = st.Decoded
	}
	if st.Rejected > m.rejected {
		m.frames.WithLabelValues(Reason(st.LastErr)).Add(float64(st.Rejected - m.rejected))
		m.rejected = st.Rejected
	}
}

// ObserveQuality sets the quality summary.
func (m *Metrics) ObserveQuality(mean, stddev float64) {
	m.qualityMean.Set(mean)
	m.qualityDev.Set(stddev)
}

// ObserveOverruns sets the sampler overrun count.
func (m *Metrics) ObserveOverruns(n int64) {
	m.overruns.Set(float64(n))
}

// Reason maps a decode error to a short label.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dcf77.ErrInvalidBits):
		return "invalid_bits"
	case errors.Is(err, dcf77.ErrBCD):
		return "bcd"
	case errors.Is(err, dcf77.ErrRange):
		return "range"
	case errors.Is(err, dcf77.ErrParity):
		return "parity"
	case errors.Is(err, dcf77.ErrMarker):
		return "marker"
	default:
		return "other"
	}
}
