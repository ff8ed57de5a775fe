// Package recording stores sampled receiver lines.
//
// A recording starts with the magic "DCF1" and the sampling rate as little endian uint32.
// The samples follow packed eight per byte, least significant bit first. The stream ends
// with the last, possibly partial, data byte and one byte holding its number of valid bits.
// Recordings may be zstd compressed as a whole; readers detect that by the zstd magic.
package recording

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var ErrFormat = errors.New("not a sample recording")

var (
	magic     = []byte("DCF1")
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Writer packs samples into an io.Writer.
type Writer struct {
	w    *bufio.Writer
	acc  byte
	bits int
	n    int64
}

// NewWriter writes the header for rate and returns a writer for the samples.
func NewWriter(w io.Writer, rate int) (*Writer, error) {
	bw := bufio.NewWriter(w)
	hdr := make([]byte, 8)
	copy(hdr, magic)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(rate))
	if _, err := bw.Write(hdr); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

// WriteSample appends one sample.
func (w *Writer) WriteSample(sample bool) error {
	if sample {
		w.acc |= 1 << w.bits
	}
	w.bits++
	w.n++
	if w.bits < 8 {
		return nil
	}

	err := w.w.WriteByte(w.acc)
	w.acc, w.bits = 0, 0
	return err
}

// Count returns the number of samples written.
func (w *Writer) Count() int64 { return w.n }

// Flush writes the trailer. The writer must not be used afterwards.
func (w *Writer) Flush() error {
	if _, err := w.w.Write([]byte{w.acc, byte(w.bits)}); err != nil {
		return err
	}
	return w.w.Flush()
}

// Reader unpacks samples.
type Reader struct {
	r    *bufio.Reader
	dec  *zstd.Decoder
	rate int
	cur  byte
	// left is the number of unread samples in cur
	left int
	last bool
}

// NewReader reads the header of a plain or zstd compressed recording.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{r: bufio.NewReader(r)}

	if p, _ := rd.r.Peek(len(zstdMagic)); bytes.Equal(p, zstdMagic) {
		d, err := zstd.NewReader(rd.r)
		if err != nil {
			return nil, err
		}
		rd.dec = d
		rd.r = bufio.NewReader(d)
	}

	hdr := make([]byte, 8)
	if _, err := io.ReadFull(rd.r, hdr); err != nil {
		_ = rd.Close()
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !bytes.Equal(hdr[:4], magic) {
		_ = rd.Close()
		return nil, ErrFormat
	}

	rd.rate = int(binary.LittleEndian.Uint32(hdr[4:]))
	if rd.rate <= 0 || rd.rate > 1<<20 {
		_ = rd.Close()
		return nil, fmt.Errorf("%w: sampling rate %d", ErrFormat, rd.rate)
	}
	return rd, nil
}

// Rate returns the sampling rate of the recording.
func (r *Reader) Rate() int { return r.rate }

// Next returns the next sample. It returns io.EOF after the last sample.
func (r *Reader) Next() (bool, error) {
	if r.left == 0 {
		if err := r.load(); err != nil {
			return false, err
		}
	}

	s := r.cur&1 == 1
	r.cur >>= 1
	r.left--
	return s, nil
}

func (r *Reader) load() error {
	if r.last {
		return io.EOF
	}

	b, err := r.r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: missing trailer", ErrFormat)
	}

	p, _ := r.r.Peek(2)
	switch len(p) {
	case 2:
		r.cur, r.left = b, 8
		return nil
	case 1:
		// b is the last data byte, p[0] its number of valid bits
		n := p[0]
		_, _ = r.r.ReadByte()
		if n > 7 {
			return fmt.Errorf("%w: trailer %d", ErrFormat, n)
		}
		r.cur, r.left, r.last = b, int(n), true
		if r.left == 0 {
			return io.EOF
		}
		return nil
	default:
		return fmt.Errorf("%w: missing trailer", ErrFormat)
	}
}

// Close releases the decompressor of a compressed recording.
func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return nil
}

// File is a recording written to disk.
type File struct {
	*Writer
	f   *os.File
	enc *zstd.Encoder
}

// Create creates the recording file name. Names ending in ".zst" are compressed.
func Create(name string, rate int) (*File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	rf := &File{f: f}
	var w io.Writer = f
	if strings.HasSuffix(name, ".zst") {
		if rf.enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
			_ = f.Close()
			return nil, err
		}
		w = rf.enc
	}

	if rf.Writer, err = NewWriter(w, rate); err != nil {
		_ = f.Close()
		return nil, err
	}
	return rf, nil
}

// Close writes the trailer and closes the file.
func (f *File) Close() error {
	err := f.Writer.Flush()
	if f.enc != nil {
		if e := f.enc.Close(); err == nil {
			err = e
		}
	}
	if e := f.f.Close(); err == nil {
		err = e
	}
	return err
}

// OpenFile is a recording read from disk.
type OpenFile struct {
	*Reader
	f *os.File
}

// Open opens the recording file name.
func Open(name string) (*OpenFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &OpenFile{Reader: r, f: f}, nil
}

// Close closes the file.
func (f *OpenFile) Close() error {
	_ = f.Reader.Close()
	return f.f.Close()
}
