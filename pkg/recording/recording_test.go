package recording

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = i%3 == 0 || i%7 == 0
	}
	return out
}

func readAll(t *testing.T, r *Reader) []bool {
	t.Helper()
	var out []bool
	for {
		s, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, s)
	}
}

func TestWriterReader(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 16, 1000} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, 512)
		require.NoError(t, err)

		samples := pattern(n)
		for _, s := range samples {
			require.NoError(t, w.WriteSample(s))
		}
		require.NoError(t, w.Flush())
		assert.Equal(t, int64(n), w.Count())
		assert.Equal(t, 8+(n/8)+2, buf.Len(), "%d samples", n)

		r, err := NewReader(&buf)
		require.NoError(t, err)
		assert.Equal(t, 512, r.Rate())

		got := readAll(t, r)
		if n == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, samples, got, "%d samples", n)
		}

		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestReaderFormat(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("RIFF0000")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewReader(bytes.NewReader([]byte("DC")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewReader(bytes.NewReader([]byte{'D', 'C', 'F', '1', 0, 0, 0, 0}))
	assert.ErrorIs(t, err, ErrFormat)

	// header and one data byte without trailer
	r, err := NewReader(bytes.NewReader([]byte{'D', 'C', 'F', '1', 0, 2, 0, 0, 0xff}))
	require.NoError(t, err)
	assert.Equal(t, 512, r.Rate())
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCompressedStream(t *testing.T) {
	var plain bytes.Buffer
	w, err := NewWriter(&plain, 100)
	require.NoError(t, err)
	samples := pattern(123)
	for _, s := range samples {
		require.NoError(t, w.WriteSample(s))
	}
	require.NoError(t, w.Flush())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(plain.Bytes(), nil)
	require.NoError(t, enc.Close())

	r, err := NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.Equal(t, 100, r.Rate())
	assert.Equal(t, samples, readAll(t, r))
}

func TestFiles(t *testing.T) {
	for _, name := range []string{"line.rec", "line.rec.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			samples := pattern(4099)

			f, err := Create(path, 512)
			require.NoError(t, err)
			for _, s := range samples {
				require.NoError(t, f.WriteSample(s))
			}
			require.NoError(t, f.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			assert.Equal(t, 512, r.Rate())
			assert.Equal(t, samples, readAll(t, r.Reader))
		})
	}

	_, err := Open(filepath.Join(t.TempDir(), "missing.rec"))
	assert.Error(t, err)
}
