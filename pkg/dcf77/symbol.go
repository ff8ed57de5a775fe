// Package dcf77 decodes the DCF77 longwave time signal from a stream of line samples.
//
// The decoder is driven by one call to Receiver.OnTick per sampling tick. Every call
// runs in constant time and does not allocate, so it can be called from a timer loop
// that must not miss samples.
package dcf77

// Symbol is the decision taken at the end of one detector window.
type Symbol int

const (
	// Invalid means the window did not reach the minimum quality.
	Invalid Symbol = iota
	// Zero is a 100 ms carrier reduction.
	Zero
	// One is a 200 ms carrier reduction.
	One
	// MinuteMark is a second without carrier reduction (second 59).
	MinuteMark
)

// hypotheses maps the index returned by Vote over (short, long, gap) to a symbol.
var hypotheses = [3]Symbol{Zero, One, MinuteMark}

const (
	short = iota
	long
	gap
)

func (s Symbol) String() string {
	switch s {
	case Zero:
		return "0"
	case One:
		return "1"
	case MinuteMark:
		return "M"
	default:
		return "?"
	}
}

// IsData reports whether s carries a bit value.
func (s Symbol) IsData() bool {
	return s == Zero || s == One
}
