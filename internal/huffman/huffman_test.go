package huffman_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/retrocompressor/internal/bitio"
	"github.com/dargueta/retrocompressor/internal/huffman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test works from the outside, without unexported field access: an
// encoder tree and a decoder tree are put through the same long symbol
// sequence, and every decoded symbol must equal the encoded one, which only
// holds while both trees update identically.
func TestEncodeDecode__RoundTripsLongSymbolSequence(t *testing.T) {
	enc := huffman.NewTree()
	dec := huffman.NewTree()

	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	symbols := make([]int, 0, 2000)
	for i := 0; i < 2000; i++ {
		symbols = append(symbols, (i*37+i%13)%256)
	}

	for _, s := range symbols {
		require.NoError(t, enc.EncodeChar(w, s))
	}
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes())
	for _, want := range symbols {
		got := dec.DecodeChar(r)
		assert.Equal(t, want, got)
	}
}

func TestEncodeDecode__EOSSymbolRoundTrips(t *testing.T) {
	enc := huffman.NewTree()
	dec := huffman.NewTree()

	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	require.NoError(t, enc.EncodeChar(w, 65))
	require.NoError(t, enc.EncodeChar(w, huffman.EOS))
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes())
	assert.Equal(t, 65, dec.DecodeChar(r))
	assert.Equal(t, huffman.EOS, dec.DecodeChar(r))
}

func TestEncodeDecode__RescaleTriggersAndStaysConsistent(t *testing.T) {
	enc := huffman.NewTree()
	dec := huffman.NewTree()

	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	// Hammer a single symbol enough times to push its frequency (and the
	// root's) past MaxFreq at least once, forcing rebuild().
	const repeats = huffman.MaxFreq + 500
	for i := 0; i < repeats; i++ {
		require.NoError(t, enc.EncodeChar(w, 0x41))
	}
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes())
	for i := 0; i < repeats; i++ {
		require.Equal(t, 0x41, dec.DecodeChar(r))
	}
}

func TestEncodePosition_DecodePosition__RoundTripsSampleDistances(t *testing.T) {
	enc := huffman.NewTree()

	for _, distance := range []uint16{0, 1, 63, 64, 1000, 4000, 4095} {
		buf := &bytes.Buffer{}
		w := bitio.NewWriter(buf)
		require.NoError(t, enc.EncodePosition(w, distance))
		require.NoError(t, w.Flush())

		r := bitio.NewReader(buf.Bytes())
		dec := huffman.NewTree()
		got := dec.DecodePosition(r)
		assert.Equal(t, distance, got, "distance %d did not round trip", distance)
	}
}
