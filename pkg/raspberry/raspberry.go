// Package raspberry gives access to the gpio line of the receiver module
package raspberry

import (
	"errors"
	"fmt"

	"dcf77rx/pkg/port"
)

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrNotSupported = errors.New("gpio driver not supported on this platform")
)

// drivers
const (
	// Gpiomem maps the gpio registers from /dev/gpiomem.
	Gpiomem = "gpiomem"
	// Gpiod uses the gpio character device /dev/gpiochip0.
	Gpiod = "gpiod"
	// Emulated generates the broadcast in software.
	Emulated = "emulated"
)

// terminators
const (
	PullUp   = "pullup"
	PullDown = "pulldown"
	PullNone = "none"
)

// GPIO is an opened gpio driver.
type GPIO interface {
	// NewPin configures the BCM gpio p as input with the given terminator.
	NewPin(p int, terminator string) (Pin, error)
	Close() error
}

// Pin is a single input line.
type Pin interface {
	port.Reader
	// Pin returns the BCM gpio number.
	Pin() int
	Close() error
}

// Open opens the hardware gpio driver. The emulated driver is created with NewEmulated.
func Open(driver string) (GPIO, error) {
	switch driver {
	case Gpiomem:
		g, err := openGpiomem()
		if err != nil {
			return nil, err
		}
		return g, nil
	case Gpiod:
		c, err := openGpiod()
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: driver %q", ErrInvalidParam, driver)
	}
}

func checkTerminator(terminator string) error {
	switch terminator {
	case PullUp, PullDown, PullNone:
		return nil
	default:
		return fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}
}
