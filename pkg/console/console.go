// Package console answers status requests on a serial line.
// Every '?' received is answered with one status line, other input is ignored.
package console

import (
	"fmt"
	"io"

	"dcf77rx/pkg/dcf77"

	"github.com/womat/debug"
	"go.bug.st/serial"
)

// StatusFunc returns the values shown on the status line.
type StatusFunc func() (now dcf77.Time, synced bool, st dcf77.Status)

// Console serves a serial port.
type Console struct {
	port   io.ReadWriteCloser
	status StatusFunc
	done   chan struct{}
}

// Open opens the serial port name with baud 8N1 and starts serving it.
func Open(name string, baud int, status StatusFunc) (*Console, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	return New(p, status), nil
}

// New starts serving rw.
func New(rw io.ReadWriteCloser, status StatusFunc) *Console {
	c := &Console{port: rw, status: status, done: make(chan struct{})}
	go c.run()
	return c
}

func (c *Console) run() {
	defer close(c.done)

	if err := Serve(c.port, c.status); err != nil {
		debug.DebugLog.Printf("console closed: %v", err)
	}
}

// Close closes the port and waits for the console to stop.
func (c *Console) Close() error {
	err := c.port.Close()
	<-c.done
	return err
}

// Serve reads rw until it fails and answers every '?'.
func Serve(rw io.ReadWriter, status StatusFunc) error {
	buf := make([]byte, 64)
	for {
		n, err := rw.Read(buf)
		for _, b := range buf[:n] {
			if b != '?' {
				continue
			}
			if _, werr := io.WriteString(rw, Line(status())+"\r\n"); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}

// Line formats the status line "HH:MM:SS D state symbol Q".
// The time is replaced by dashes until the clock was synchronized once.
func Line(now dcf77.Time, synced bool, st dcf77.Status) string {
	clock := "--:--:-- -"
	if synced {
		clock = fmt.Sprintf("%02d:%02d:%02d %d", now.Hour, now.Minute, now.Second, now.DayOfWeek)
	}
	return fmt.Sprintf("%s %s %s %d", clock, st.State, st.Symbol, st.Quality)
}
