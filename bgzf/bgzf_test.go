package bgzf

import (
	"bytes"
	"compress/gzip"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecDefaults(t *testing.T) {
	t.Parallel()

	c := Codec{}
	assert.Equal(t, 65280, c.BlockSize())
	assert.Equal(t, DefaultCompressionLevel, c.DefaultLevel())
}

func TestValidateLevel(t *testing.T) {
	t.Parallel()

	c := Codec{}
	for _, level := range []int{0, 1, 5, 9} {
		got, err := c.ValidateLevel(level)
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}
	for _, level := range []int{-1, 10, 100} {
		_, err := c.ValidateLevel(level)
		assert.Error(t, err)
	}
}

func TestCompressSingleBlockRoundTrips(t *testing.T) {
	t.Parallel()

	c := Codec{}.New(6)

	var out bytes.Buffer
	require.NoError(t, c.Compress([]byte("hello, bgzf"), &out, true))

	r, err := gzip.NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello, bgzf", string(got))
}

func TestCompressMultipleBlocksConcatenate(t *testing.T) {
	t.Parallel()

	comp := Codec{}.New(3)

	var out bytes.Buffer
	require.NoError(t, comp.Compress([]byte("first "), &out, false))
	require.NoError(t, comp.Compress([]byte("second "), &out, false))
	require.NoError(t, comp.Compress([]byte("third"), &out, true))

	r, err := gzip.NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	r.Multistream(true)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "first second third", string(got))
}

func TestEmptyCloseIsJustEOFBlock(t *testing.T) {
	t.Parallel()

	comp := Codec{}.New(DefaultCompressionLevel)

	var out bytes.Buffer
	require.NoError(t, comp.Compress(nil, &out, true))
	assert.Equal(t, 28, out.Len())
	assert.Equal(t, eofBlock, out.Bytes())
}

func TestFlushEmptyIsNotTerminal(t *testing.T) {
	t.Parallel()

	comp := Codec{}.New(DefaultCompressionLevel)

	var out bytes.Buffer
	require.NoError(t, comp.Compress(nil, &out, false))
	assert.Equal(t, 0, out.Len())
}

func TestRoundTripRandomData(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	comp := Codec{}.New(1)

	var out bytes.Buffer
	var want bytes.Buffer
	for i := 0; i < 5; i++ {
		chunk := make([]byte, 1000+i*37)
		_, _ = rng.Read(chunk)
		want.Write(chunk)
		require.NoError(t, comp.Compress(chunk, &out, i == 4))
	}

	r, err := gzip.NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	r.Multistream(true)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)
}
