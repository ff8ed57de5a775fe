package dcf77

import (
	"errors"
	"fmt"
)

// DefaultSamplingRate is the tick rate of the line sampler in Hz.
const DefaultSamplingRate = 512

// ErrConfig is returned by Config.Validate for inconsistent decoder settings.
var ErrConfig = errors.New("invalid decoder configuration")

// HoldOverPolicy decides which symbols end the hold-over state.
type HoldOverPolicy int

const (
	// HoldOverStrict resumes tracking only on a data symbol (Zero or One).
	// Minute marks and invalid windows are both counted against the hold-over limit.
	HoldOverStrict HoldOverPolicy = iota
	// HoldOverLenient resumes tracking on any valid symbol, minute marks included.
	// Only invalid windows are counted.
	HoldOverLenient
)

func (p HoldOverPolicy) String() string {
	switch p {
	case HoldOverStrict:
		return "strict"
	case HoldOverLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseHoldOverPolicy converts the config file notation of a policy.
func ParseHoldOverPolicy(s string) (HoldOverPolicy, error) {
	switch s {
	case "", "strict":
		return HoldOverStrict, nil
	case "lenient":
		return HoldOverLenient, nil
	default:
		return HoldOverStrict, fmt.Errorf("%w: unknown hold-over policy %q", ErrConfig, s)
	}
}

// Config holds the decoder constants. All values are in sampling ticks unless noted.
type Config struct {
	// SamplingRate is the tick rate in Hz.
	SamplingRate int
	// Window is the length of one symbol window (one second).
	Window int
	// ShortZone ends the short pulse decision zone [0, ShortZone).
	ShortZone int
	// LongZone ends the long pulse decision zone [ShortZone, LongZone).
	LongZone int
	// MinQuality is the minimum quality score for a valid symbol.
	MinQuality int
	// FineOffset is the phase distance of the early and late detectors.
	FineOffset int
	// FineTuneThreshold is the magnitude the fine tune counter has to exceed before the phase is shifted.
	FineTuneThreshold int
	// FineTuneShift is the phase correction applied when the threshold is exceeded.
	FineTuneShift int
	// HoldOverLimit is the number of bad windows tolerated in hold-over.
	HoldOverLimit int
	// CheckParity enables the parity and static marker bit checks of a minute frame.
	CheckParity bool
	// HoldOverPolicy selects the symbols that end the hold-over state.
	HoldOverPolicy HoldOverPolicy
}

// NewConfig returns the nominal configuration for the given sampling rate:
// the window covers one second, the decision zones end at 10% and 20% of the window
// and a symbol needs 90% of the window to be valid.
func NewConfig(rate int) Config {
	c := Config{
		SamplingRate:      rate,
		Window:            rate,
		FineOffset:        max(rate/64, 1),
		FineTuneThreshold: 8,
		FineTuneShift:     1,
		HoldOverLimit:     300,
	}
	c.SetZones(10, 20, 90)
	return c
}

// SetZones derives the decision zones and the quality threshold from percentages of the window.
func (c *Config) SetZones(shortPct, longPct, qualityPct int) {
	c.ShortZone = c.Window * shortPct / 100
	c.LongZone = c.Window * longPct / 100
	c.MinQuality = c.Window * qualityPct / 100
}

// Validate checks the relations between the decoder constants.
func (c Config) Validate() error {
	switch {
	case c.SamplingRate <= 0:
		return fmt.Errorf("%w: sampling rate %d", ErrConfig, c.SamplingRate)
	case c.Window <= 0:
		return fmt.Errorf("%w: window %d", ErrConfig, c.Window)
	case c.ShortZone <= 0 || c.ShortZone >= c.LongZone || c.LongZone >= c.Window:
		return fmt.Errorf("%w: zones 0 < %d < %d < %d", ErrConfig, c.ShortZone, c.LongZone, c.Window)
	case c.MinQuality <= 0 || c.MinQuality > c.Window:
		return fmt.Errorf("%w: minimum quality %d of %d", ErrConfig, c.MinQuality, c.Window)
	case c.FineOffset < 0 || c.FineOffset >= c.ShortZone:
		return fmt.Errorf("%w: fine offset %d", ErrConfig, c.FineOffset)
	case c.FineTuneThreshold <= 0 || c.FineTuneShift <= 0:
		return fmt.Errorf("%w: fine tune %d/%d", ErrConfig, c.FineTuneThreshold, c.FineTuneShift)
	case c.HoldOverLimit < 0:
		return fmt.Errorf("%w: hold-over limit %d", ErrConfig, c.HoldOverLimit)
	}
	return nil
}
