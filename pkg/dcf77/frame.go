package dcf77

// FrameBits is the number of symbols in one minute frame.
const FrameBits = 60

const wordBits = 16

// Frame collects the symbols of one minute.
// Data holds the bit values, Invalid marks symbols that were not decodable.
type Frame struct {
	Data    [4]uint16
	Invalid [4]uint16
	// cursor is the position of the next symbol, 0..59.
	cursor int
}

// Cursor returns the position the next symbol is recorded at.
func (f *Frame) Cursor() int { return f.cursor }

// Reset clears the frame and moves the cursor to the first bit.
func (f *Frame) Reset() { *f = Frame{} }

// Bit returns the data bit at position n.
func (f *Frame) Bit(n int) bool {
	return f.Data[n/wordBits]&(1<<(n%wordBits)) != 0
}

// SetBit sets or clears the data bit at position n.
func (f *Frame) SetBit(n int, v bool) {
	if v {
		f.Data[n/wordBits] |= 1 << (n % wordBits)
	} else {
		f.Data[n/wordBits] &^= 1 << (n % wordBits)
	}
}

// IsInvalid reports whether the symbol at position n was not decodable.
func (f *Frame) IsInvalid(n int) bool {
	return f.Invalid[n/wordBits]&(1<<(n%wordBits)) != 0
}

// Valid reports whether every recorded symbol was decodable.
func (f *Frame) Valid() bool {
	return f.Invalid == [4]uint16{}
}

// Record stores s at the cursor and advances it.
//
// A minute mark always restarts the frame. When the cursor reaches the end of the frame
// the frame is restarted too; if the last symbol was a minute mark or an invalid window
// the completed frame is returned with ok set, so it can be decoded.
func (f *Frame) Record(s Symbol) (complete Frame, ok bool) {
	w, m := f.cursor/wordBits, uint16(1)<<(f.cursor%wordBits)
	switch s {
	case One:
		f.Data[w] |= m
	case Invalid:
		f.Invalid[w] |= m
	}

	f.cursor++
	if f.cursor >= FrameBits {
		complete, ok = *f, s == MinuteMark || s == Invalid
		f.Reset()
		return complete, ok
	}

	if s == MinuteMark {
		f.Reset()
	}
	return complete, false
}

// String returns the frame as a sequence of symbols, "?" for invalid positions.
func (f Frame) String() string {
	b := make([]byte, FrameBits)
	for i := range b {
		switch {
		case f.IsInvalid(i):
			b[i] = '?'
		case f.Bit(i):
			b[i] = '1'
		default:
			b[i] = '0'
		}
	}
	return string(b)
}
