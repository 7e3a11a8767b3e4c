package lzsshuff

import (
	"io"
	"testing"

	fixtures "github.com/dargueta/retrocompressor/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This is a white-box test (package lzsshuff, not lzsshuff_test) because
// compressStream/expandStream are unexported: the wire format has no
// framing that benefits from incremental I/O, so they're plumbing behind
// the slice-based Compress/Expand, not a second public surface. It exercises
// them through the same kind of fixed-capacity io.ReadWriteSeeker td0 uses
// for in-place header patching.
func TestStreamRoundTrip(t *testing.T) {
	original := fixtures.HamletAct1()

	inSeeker := fixtures.NewSeekableBuffer(append([]byte{}, original...))
	// LZHUF output (4-byte header included) is never larger than 2x the
	// plaintext for real prose; size the backing buffer generously so Write
	// never overflows it.
	compressedBacking := make([]byte, len(original)*2)
	outSeeker := fixtures.NewSeekableBuffer(compressedBacking)

	inN, outN, err := compressStream(inSeeker, outSeeker, Options{Header: Lzhuf})
	require.NoError(t, err)
	assert.EqualValues(t, len(original), inN)
	require.True(t, outN > 0)

	_, err = outSeeker.Seek(0, io.SeekStart)
	require.NoError(t, err)
	compressed := make([]byte, outN)
	_, err = io.ReadFull(outSeeker, compressed)
	require.NoError(t, err)

	expandIn := fixtures.NewSeekableBuffer(compressed)
	expandedBacking := make([]byte, len(original)*2)
	expandOut := fixtures.NewSeekableBuffer(expandedBacking)

	_, expOutN, err := expandStream(expandIn, expandOut, Options{Header: Lzhuf})
	require.NoError(t, err)
	assert.EqualValues(t, len(original), expOutN)

	_, err = expandOut.Seek(0, io.SeekStart)
	require.NoError(t, err)
	roundTripped := make([]byte, expOutN)
	_, err = io.ReadFull(expandOut, roundTripped)
	require.NoError(t, err)

	assert.Equal(t, original, roundTripped)
}
