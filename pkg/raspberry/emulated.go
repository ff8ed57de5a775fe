package raspberry

import (
	"fmt"
	"sync"
	"time"
)

// Source returns the level of tick n.
type Source interface {
	Sample(n int64) bool
}

// EmuGPIO emulates the receiver module on systems without gpio.
// The level of a pin is taken from the source at the tick elapsed since the pin was created.
type EmuGPIO struct {
	sync.Mutex
	src  Source
	rate int
	pins map[int]*EmuPin
}

type EmuPin struct {
	gpioPin int
	owner   *EmuGPIO
	epoch   time.Time
}

// NewEmulated returns an emulated gpio driver reading rate ticks per second from src.
func NewEmulated(src Source, rate int) *EmuGPIO {
	return &EmuGPIO{src: src, rate: rate, pins: map[int]*EmuPin{}}
}

// Close removes all pins.
func (c *EmuGPIO) Close() error {
	c.Lock()
	defer c.Unlock()
	c.pins = map[int]*EmuPin{}
	return nil
}

// NewPin creates a new emulated pin.
func (c *EmuGPIO) NewPin(p int, terminator string) (Pin, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	c.Lock()
	defer c.Unlock()
	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	l := &EmuPin{gpioPin: p, owner: c, epoch: time.Now()}
	c.pins[p] = l
	return l, nil
}

// Pin returns the pin number that this Pin represents.
func (p *EmuPin) Pin() int {
	return p.gpioPin
}

// Read returns the level of the source at the current tick.
func (p *EmuPin) Read() bool {
	n := int64(time.Since(p.epoch)) * int64(p.owner.rate) / int64(time.Second)
	return p.owner.src.Sample(n)
}

// Close releases the pin.
func (p *EmuPin) Close() error {
	p.owner.Lock()
	defer p.owner.Unlock()
	delete(p.owner.pins, p.gpioPin)
	return nil
}
