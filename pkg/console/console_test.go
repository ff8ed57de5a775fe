package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"dcf77rx/pkg/dcf77"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func status() (dcf77.Time, bool, dcf77.Status) {
	return dcf77.Time{Second: 5, Minute: 33, Hour: 22, DayOfWeek: 2}, true,
		dcf77.Status{State: dcf77.Fine, Symbol: dcf77.One, Quality: 498}
}

func TestLine(t *testing.T) {
	assert.Equal(t, "22:33:05 2 fine 1 498", Line(status()))
	assert.Equal(t, "--:--:-- - coarse ? 0", Line(dcf77.Time{}, false, dcf77.Status{}))
}

type loop struct {
	in  *strings.Reader
	out bytes.Buffer
}

func (l *loop) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loop) Write(p []byte) (int, error) { return l.out.Write(p) }

func TestServe(t *testing.T) {
	l := &loop{in: strings.NewReader("x?\r\n??")}

	err := Serve(l, status)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, strings.Repeat("22:33:05 2 fine 1 498\r\n", 3), l.out.String())
}

type pipe struct {
	r *io.PipeReader
	w *io.PipeWriter
	bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *pipe) Close() error               { return p.r.Close() }

func TestConsoleClose(t *testing.T) {
	r, w := io.Pipe()
	p := &pipe{r: r, w: w}
	c := New(p, status)

	require.NoError(t, c.Close())
	_, err := w.Write([]byte("?"))
	assert.Error(t, err)
}
