package raspberry

import (
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
	offset    int
	// lastValue is returned when the line can't be read
	lastValue bool
}

// openGpiod opens the GPIO character device.
func openGpiod() (*Chip, error) {
	c, err := gpiod.NewChip("gpiochip0")
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewPin requests control of a single line on a chip.
// If granted, control is maintained until the Line is closed.
func (c *Chip) NewPin(gpio int, terminator string) (Pin, error) {
	var err error
	line := &Line{offset: gpio}

	switch terminator {
	case PullUp:
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.AsInput, gpiod.WithPullUp)
	case PullDown:
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.AsInput, gpiod.WithPullDown)
	case PullNone:
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.AsInput)
	default:
		return nil, checkTerminator(terminator)
	}
	if err != nil {
		return nil, err
	}

	return line, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Pin returns the line offset.
func (l *Line) Pin() int { return l.offset }

// Read returns the line value. On a read error the previous value is repeated.
func (l *Line) Read() bool {
	v, err := l.gpiodLine.Value()
	if err != nil {
		debug.TraceLog.Printf("read line %d: %v", l.offset, err)
		return l.lastValue
	}
	l.lastValue = v == 1
	return l.lastValue
}

// Close releases all resources held by the requested line.
func (l *Line) Close() error {
	return l.gpiodLine.Close()
}
