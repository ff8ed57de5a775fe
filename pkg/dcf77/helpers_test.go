package dcf77

import "math/rand"

// symbolWindow returns the samples of one clean window carrying s.
func symbolWindow(cfg Config, s Symbol) []bool {
	w := make([]bool, cfg.Window)
	width := 0
	switch s {
	case Zero:
		width = cfg.ShortZone
	case One:
		width = cfg.LongZone
	case Invalid:
		width = cfg.Window
	}
	for i := 0; i < width; i++ {
		w[i] = true
	}
	return w
}

// symbolStream concatenates the windows of the given symbols.
func symbolStream(cfg Config, symbols ...Symbol) []bool {
	var out []bool
	for _, s := range symbols {
		out = append(out, symbolWindow(cfg, s)...)
	}
	return out
}

// minuteStream returns the 60 windows of a broadcast minute carrying f, ending with the minute mark.
func minuteStream(cfg Config, f Frame) []bool {
	symbols := make([]Symbol, 0, FrameBits)
	for i := 0; i < FrameBits-1; i++ {
		if f.Bit(i) {
			symbols = append(symbols, One)
		} else {
			symbols = append(symbols, Zero)
		}
	}
	symbols = append(symbols, MinuteMark)
	return symbolStream(cfg, symbols...)
}

// noise returns n random samples.
func noise(seed int64, n int) []bool {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]bool, n)
	for i := range out {
		out[i] = rnd.Intn(2) == 1
	}
	return out
}

// fakeClock records the corrections without allocating.
type fakeClock struct {
	calls int
	last  Time
}

func (c *fakeClock) SetTime(t Time) {
	c.calls++
	c.last = t
}

// flip inverts samples with a probability of permille/1000. The xorshift sequence makes the
// noise independent of the math/rand implementation.
func flip(samples []bool, seed, permille uint64) []bool {
	out := make([]bool, len(samples))
	x := seed
	for i, s := range samples {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		out[i] = s != (x%1000 < permille)
	}
	return out
}
