package signal

import (
	"testing"
	"time"

	"dcf77rx/pkg/dcf77"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = dcf77.DefaultSamplingRate

func TestTime(t *testing.T) {
	// 2026-10-13 is a Tuesday
	tm := time.Date(2026, 10, 13, 22, 33, 0, 0, time.UTC)
	assert.Equal(t, dcf77.Time{Minute: 33, Hour: 22, DayOfWeek: 1}, Time(tm))

	sunday := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, Time(sunday).DayOfWeek)
}

func TestFrame(t *testing.T) {
	tm := time.Date(2026, 10, 14, 22, 33, 0, 0, time.UTC)
	f := Frame(tm)

	got, err := dcf77.Decode(f, true)
	require.NoError(t, err)
	assert.Equal(t, dcf77.Time{Minute: 33, Hour: 22, DayOfWeek: 2}, got)

	d, err := dcf77.DecodeDate(f)
	require.NoError(t, err)
	assert.Equal(t, dcf77.Date{Day: 14, Month: 10, Year: 2026, CET: true}, d)
}

// symbols measures the pulse width of every second of the stream.
func symbols(g *Generator, seconds int) []dcf77.Symbol {
	out := make([]dcf77.Symbol, seconds)
	for s := 0; s < seconds; s++ {
		width := 0
		for i := 0; i < rate; i++ {
			if g.Sample(int64(s*rate + i)) {
				width++
			}
		}
		switch width {
		case 0:
			out[s] = dcf77.MinuteMark
		case rate / 10:
			out[s] = dcf77.Zero
		case 2 * rate / 10:
			out[s] = dcf77.One
		}
	}
	return out
}

func TestGeneratorMinute(t *testing.T) {
	start := time.Date(2026, 10, 14, 22, 32, 0, 0, time.UTC)
	g := New(rate, start, 1)

	got := symbols(g, 60)
	want := Frame(start.Add(time.Minute))

	for i := 0; i < 59; i++ {
		if want.Bit(i) {
			assert.Equal(t, dcf77.One, got[i], "second %d", i)
		} else {
			assert.Equal(t, dcf77.Zero, got[i], "second %d", i)
		}
	}
	assert.Equal(t, dcf77.MinuteMark, got[59])
}

func TestGeneratorStartMidMinute(t *testing.T) {
	start := time.Date(2026, 10, 14, 22, 32, 57, 300, time.UTC)
	g := New(rate, start, 1)

	assert.Equal(t, start.Truncate(time.Second), g.Start())
	got := symbols(g, 3)
	assert.Equal(t, dcf77.MinuteMark, got[2])
	assert.Equal(t, time.Date(2026, 10, 14, 22, 33, 0, 0, time.UTC), g.Time(3*rate))
}

func TestGeneratorOutage(t *testing.T) {
	g := New(rate, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	g.Outages = []Outage{{From: rate, To: 2 * rate}}

	for i := int64(rate); i < 2*rate; i++ {
		require.True(t, g.Sample(i))
	}
	assert.False(t, g.Sample(2*rate+rate/2))
}

func TestGeneratorNoise(t *testing.T) {
	g := New(rate, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1)
	g.Noise = 0.05

	flipped := 0
	for i := int64(0); i < 100*rate; i++ {
		if g.Sample(i) != g.clean(i) {
			flipped++
		}
	}
	assert.InDelta(t, 0.05*100*rate, float64(flipped), 0.01*100*rate)
}

func TestGeneratorNextMinute(t *testing.T) {
	start := time.Date(2026, 10, 14, 22, 32, 0, 0, time.UTC)
	g := New(rate, start, 1)

	got := symbols(g, 120)
	want := Frame(start.Add(2 * time.Minute))

	for i := 0; i < 59; i++ {
		if want.Bit(i) {
			assert.Equal(t, dcf77.One, got[60+i], "second %d", i)
		} else {
			assert.Equal(t, dcf77.Zero, got[60+i], "second %d", i)
		}
	}
	assert.Equal(t, dcf77.MinuteMark, got[119])
}
