package raspberry

import (
	"fmt"

	"github.com/warthog618/gpio"
)

type RpiPin struct {
	gpioPin *gpio.Pin
	owner   *RpiGPIO
}

type RpiGPIO struct {
	pins map[int]*RpiPin
}

// openGpiomem maps the GPIO memory range from /dev/gpiomem.
func openGpiomem() (*RpiGPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &RpiGPIO{pins: map[int]*RpiPin{}}, nil
}

// Close unmaps GPIO memory
func (c *RpiGPIO) Close() error {
	return gpio.Close()
}

// NewPin creates a new input pin.
// The pin number provided is the BCM GPIO number.
func (c *RpiGPIO) NewPin(p int, terminator string) (Pin, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}
	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	l := &RpiPin{gpioPin: gpio.NewPin(p), owner: c}
	l.gpioPin.Input()
	switch terminator {
	case PullUp:
		l.gpioPin.PullUp()
	case PullDown:
		l.gpioPin.PullDown()
	default:
		l.gpioPin.PullNone()
	}

	c.pins[p] = l
	return l, nil
}

// Pin returns the pin number that this Pin represents.
func (p *RpiPin) Pin() int {
	return p.gpioPin.Pin()
}

// Read pin state (high/low)
func (p *RpiPin) Read() bool {
	return bool(p.gpioPin.Read())
}

// Close releases the pin, the pull state is left as configured.
func (p *RpiPin) Close() error {
	delete(p.owner.pins, p.Pin())
	return nil
}
