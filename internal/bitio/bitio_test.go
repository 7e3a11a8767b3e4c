package bitio_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/retrocompressor/internal/bitio"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader__RoundTripsArbitraryBitWidths(t *testing.T) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	require.NoError(t, w.PutBits(3, 0x5))
	require.NoError(t, w.PutBits(9, 0x1A3))
	require.NoError(t, w.PutBit(1))
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes())
	assert.EqualValues(t, 0x5, r.GetBits(3))
	assert.EqualValues(t, 0x1A3, r.GetBits(9))
	assert.EqualValues(t, 1, r.GetBit())
}

func TestWriter__FlushPadsPartialByteWithZeros(t *testing.T) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	require.NoError(t, w.PutBits(3, 0x7)) // 111
	require.NoError(t, w.Flush())

	require.Len(t, buf.Bytes(), 1)
	assert.Equal(t, byte(0xE0), buf.Bytes()[0]) // 111 followed by five zero pad bits
}

func TestReader__PastEndOfStreamReturnsZeroBits(t *testing.T) {
	r := bitio.NewReader([]byte{0xFF})
	for i := 0; i < 8; i++ {
		r.GetBit()
	}
	// The real data is exhausted; further reads must return 0, not panic or
	// wrap around, matching the legacy decoder's one-symbol-of-slack.
	assert.EqualValues(t, 0, r.GetBit())
	assert.EqualValues(t, 0, r.GetBits(16))
}

func TestWriter__PutCodeWritesLeftJustifiedBits(t *testing.T) {
	buf := &bytes.Buffer{}
	w := bitio.NewWriter(buf)

	// PutCode interprets its argument as left-justified against bit 15, the
	// same convention the adaptive Huffman tables use.
	require.NoError(t, w.PutCode(4, 0xA000))
	require.NoError(t, w.Flush())

	r := bitio.NewReader(buf.Bytes())
	assert.EqualValues(t, 0xA, r.GetBits(4))
}

func TestWriter__OverflowsFixedCapacitySinkReturnError(t *testing.T) {
	backing := make([]byte, 1)
	bw := bytewriter.New(backing)
	w := bitio.NewWriter(bw)

	require.NoError(t, w.PutByte(0x42))
	err := w.PutByte(0x43)
	assert.Error(t, err, "writing a second byte into a 1-byte fixed sink must fail")
}

func TestGetByte__ReadsEightBitsMSBFirst(t *testing.T) {
	r := bitio.NewReader([]byte{0b10110010})
	assert.EqualValues(t, 0b10110010, r.GetByte())
}
