package dcf77

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBits = errors.New("frame contains undecodable symbols")
	ErrBCD         = errors.New("field is not binary coded decimal")
	ErrRange       = errors.New("field out of range")
	ErrParity      = errors.New("parity mismatch")
	ErrMarker      = errors.New("static marker bit mismatch")
)

// bit positions of the DCF77 minute frame
const (
	bitStart        = 0  // start of minute, always 0
	bitCEST         = 17 // summer time in effect
	bitCET          = 18 // standard time in effect
	bitTimeStart    = 20 // start of encoded time, always 1
	bitMinute       = 21 // 7 bit BCD
	bitMinuteParity = 28
	bitHour         = 29 // 6 bit BCD
	bitHourParity   = 35
	bitDay          = 36 // 6 bit BCD, day of month
	bitDayOfWeek    = 42 // 3 bit, Monday = 1
	bitMonth        = 45 // 5 bit BCD
	bitYear         = 50 // 8 bit BCD, year of century
	bitDateParity   = 58
)

// Time is a decoded time of day. It is valid at the end of the minute mark.
type Time struct {
	Second    int // always 0 for a decoded frame
	Minute    int // 0..59
	Hour      int // 0..23
	DayOfWeek int // 0..6, Monday = 0
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d/%d", t.Hour, t.Minute, t.Second, t.DayOfWeek)
}

// Date holds the calendar fields of a minute frame.
// CEST and CET are raw copies of the time zone bits.
type Date struct {
	Day   int // 1..31
	Month int // 1..12
	Year  int // 2000..2099
	CEST  bool
	CET   bool
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// field returns n bits starting at position start, least significant bit first.
func (f *Frame) field(start, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		if f.Bit(start + i) {
			v |= 1 << i
		}
	}
	return v
}

func (f *Frame) setField(start, n, v int) {
	for i := 0; i < n; i++ {
		f.SetBit(start+i, v&(1<<i) != 0)
	}
}

// evenParity reports whether the bits [start, start+n) contain an even number of ones.
func (f *Frame) evenParity(start, n int) bool {
	ones := 0
	for i := start; i < start+n; i++ {
		if f.Bit(i) {
			ones++
		}
	}
	return ones%2 == 0
}

func fromBCD(v int) (int, error) {
	ones, tens := v&0x0f, v>>4
	if ones > 9 || tens > 9 {
		return 0, ErrBCD
	}
	return tens*10 + ones, nil
}

func toBCD(v int) int {
	return (v/10)<<4 | v%10
}

// Decode extracts the time of day from a complete minute frame.
// A frame with any undecodable symbol is rejected. With checkParity the parity bits
// of the minute, hour and date fields and the static marker bits are verified too.
func Decode(f Frame, checkParity bool) (Time, error) {
	if !f.Valid() {
		return Time{}, ErrInvalidBits
	}

	if checkParity {
		if f.Bit(bitStart) || !f.Bit(bitTimeStart) {
			return Time{}, ErrMarker
		}
		if !f.evenParity(bitMinute, bitMinuteParity-bitMinute+1) ||
			!f.evenParity(bitHour, bitHourParity-bitHour+1) ||
			!f.evenParity(bitDay, bitDateParity-bitDay+1) {
			return Time{}, ErrParity
		}
	}

	minute, err := fromBCD(f.field(bitMinute, 7))
	if err != nil {
		return Time{}, err
	}
	if minute > 59 {
		return Time{}, ErrRange
	}

	hour, err := fromBCD(f.field(bitHour, 6))
	if err != nil {
		return Time{}, err
	}
	if hour > 23 {
		return Time{}, ErrRange
	}

	dow := f.field(bitDayOfWeek, 3) - 1
	if dow < 0 || dow > 6 {
		return Time{}, ErrRange
	}

	return Time{Second: 0, Minute: minute, Hour: hour, DayOfWeek: dow}, nil
}

// DecodeDate extracts the calendar fields from a complete minute frame.
func DecodeDate(f Frame) (Date, error) {
	if !f.Valid() {
		return Date{}, ErrInvalidBits
	}

	day, err := fromBCD(f.field(bitDay, 6))
	if err != nil {
		return Date{}, err
	}
	month, err := fromBCD(f.field(bitMonth, 5))
	if err != nil {
		return Date{}, err
	}
	year, err := fromBCD(f.field(bitYear, 8))
	if err != nil {
		return Date{}, err
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return Date{}, ErrRange
	}

	return Date{
		Day:   day,
		Month: month,
		Year:  2000 + year,
		CEST:  f.Bit(bitCEST),
		CET:   f.Bit(bitCET),
	}, nil
}

// Encode builds the minute frame announcing t and d, including marker and parity bits.
func Encode(t Time, d Date) Frame {
	var f Frame
	f.SetBit(bitCEST, d.CEST)
	f.SetBit(bitCET, d.CET)
	f.SetBit(bitTimeStart, true)

	f.setField(bitMinute, 7, toBCD(t.Minute))
	f.SetBit(bitMinuteParity, !f.evenParity(bitMinute, 7))

	f.setField(bitHour, 6, toBCD(t.Hour))
	f.SetBit(bitHourParity, !f.evenParity(bitHour, 6))

	f.setField(bitDay, 6, toBCD(d.Day))
	f.setField(bitDayOfWeek, 3, t.DayOfWeek+1)
	f.setField(bitMonth, 5, toBCD(d.Month))
	f.setField(bitYear, 8, toBCD(d.Year%100))
	f.SetBit(bitDateParity, !f.evenParity(bitDay, bitDateParity-bitDay))

	return f
}
