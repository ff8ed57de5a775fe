package dcf77

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = Date{Day: 16, Month: 10, Year: 2026, CEST: true}

// assemble records the symbols of f followed by the minute mark and returns the completed frame.
func assemble(t *testing.T, f Frame) Frame {
	t.Helper()

	var a Frame
	for i := 0; i < FrameBits-1; i++ {
		s := Zero
		if f.Bit(i) {
			s = One
		}
		_, ok := a.Record(s)
		require.False(t, ok)
	}
	done, ok := a.Record(MinuteMark)
	require.True(t, ok)
	return done
}

func TestDecodeRoundTrip(t *testing.T) {
	want := Time{Second: 0, Minute: 33, Hour: 22, DayOfWeek: 2}
	f := assemble(t, Encode(want, testDate))

	assert.Equal(t, 3, f.field(bitDayOfWeek, 3))

	for _, parity := range []bool{false, true} {
		got, err := Decode(f, parity)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeAllTimes(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			want := Time{Minute: minute, Hour: hour, DayOfWeek: (hour + minute) % 7}
			got, err := Decode(Encode(want, testDate), true)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}
}

func TestDecodeRejectsInvalidBit(t *testing.T) {
	f := Encode(Time{Minute: 33, Hour: 22, DayOfWeek: 2}, testDate)

	for i := 0; i < FrameBits; i++ {
		g := f
		g.Invalid[i/wordBits] |= 1 << (i % wordBits)

		_, err := Decode(g, false)
		assert.ErrorIs(t, err, ErrInvalidBits, "bit %d", i)
		_, err = Decode(g, true)
		assert.ErrorIs(t, err, ErrInvalidBits, "bit %d", i)
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode(Time{Minute: 33, Hour: 22, DayOfWeek: 2}, testDate)

	tests := []struct {
		name   string
		modify func(f *Frame)
		parity bool
		err    error
	}{
		{"minute not bcd", func(f *Frame) { f.setField(bitMinute, 7, 0x1a) }, false, ErrBCD},
		{"minute range", func(f *Frame) { f.setField(bitMinute, 7, 0x60) }, false, ErrRange},
		{"hour not bcd", func(f *Frame) { f.setField(bitHour, 6, 0x0f) }, false, ErrBCD},
		{"hour range", func(f *Frame) { f.setField(bitHour, 6, 0x24) }, false, ErrRange},
		{"day of week zero", func(f *Frame) { f.setField(bitDayOfWeek, 3, 0) }, false, ErrRange},
		{"minute parity", func(f *Frame) { f.SetBit(bitMinuteParity, !f.Bit(bitMinuteParity)) }, true, ErrParity},
		{"hour parity", func(f *Frame) { f.SetBit(bitHourParity, !f.Bit(bitHourParity)) }, true, ErrParity},
		{"date parity", func(f *Frame) { f.SetBit(bitYear, !f.Bit(bitYear)) }, true, ErrParity},
		{"start bit", func(f *Frame) { f.SetBit(bitStart, true) }, true, ErrMarker},
		{"time start bit", func(f *Frame) { f.SetBit(bitTimeStart, false) }, true, ErrMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.modify(&f)
			_, err := Decode(f, tt.parity)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecodeParityDisabled(t *testing.T) {
	f := Encode(Time{Minute: 5, Hour: 7, DayOfWeek: 6}, testDate)
	f.SetBit(bitMinuteParity, !f.Bit(bitMinuteParity))
	f.SetBit(bitTimeStart, false)

	got, err := Decode(f, false)
	require.NoError(t, err)
	assert.Equal(t, Time{Minute: 5, Hour: 7, DayOfWeek: 6}, got)
}

func TestDecodeDate(t *testing.T) {
	f := Encode(Time{Minute: 1, Hour: 2, DayOfWeek: 3}, testDate)

	got, err := DecodeDate(f)
	require.NoError(t, err)
	assert.Equal(t, testDate, got)
	assert.Equal(t, "2026-10-16", got.String())

	f.setField(bitMonth, 5, 0x13)
	_, err = DecodeDate(f)
	assert.ErrorIs(t, err, ErrRange)

	f.Invalid[3] = 1
	_, err = DecodeDate(f)
	assert.ErrorIs(t, err, ErrInvalidBits)
}

func TestTimeString(t *testing.T) {
	assert.Equal(t, "22:33:00/2", Time{Minute: 33, Hour: 22, DayOfWeek: 2}.String())
}
