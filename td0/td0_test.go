package td0_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	cerrors "github.com/dargueta/retrocompressor/errors"
	"github.com/dargueta/retrocompressor/td0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crc16 mirrors the package's unexported implementation so tests can build
// well-formed headers without reaching into internals.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0xA097
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func buildHeader(sig string, version byte) []byte {
	h := make([]byte, td0.HeaderSize)
	copy(h[0:2], sig)
	h[2] = 1 // sequence
	h[3] = 0 // check
	h[4] = version
	h[5] = 2 // data rate
	h[6] = 1 // drive type
	h[7] = 0 // stepping
	h[8] = 0 // dos flag
	h[9] = 2 // sides
	binary.LittleEndian.PutUint16(h[10:12], crc16(h[:10]))
	return h
}

func TestTransform__CompressThenExpandRoundTrips(t *testing.T) {
	payload := bytes.Repeat([]byte("retro floppy image bytes "), 100)

	normal := append(buildHeader("TD", 21), payload...)

	advanced, err := td0.Transform(normal, td0.Compress, td0.Options{})
	require.NoError(t, err)
	assert.Equal(t, "td", string(advanced[0:2]))

	roundTripped, err := td0.Transform(advanced, td0.Expand, td0.Options{})
	require.NoError(t, err)
	assert.Equal(t, "TD", string(roundTripped[0:2]))
	assert.Equal(t, normal, roundTripped)
}

func TestTransform__LZWVersionRoundTrips(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA, 0xBB, 0xCC}, 200)
	normal := append(buildHeader("TD", 11), payload...)

	advanced, err := td0.Transform(normal, td0.Compress, td0.Options{})
	require.NoError(t, err)

	roundTripped, err := td0.Transform(advanced, td0.Expand, td0.Options{})
	require.NoError(t, err)
	assert.Equal(t, normal, roundTripped)
}

func TestTransform__BadCRCRejected(t *testing.T) {
	header := buildHeader("TD", 21)
	header[2] ^= 0xFF // corrupt a byte covered by the CRC without fixing it up

	_, err := td0.Transform(header, td0.Compress, td0.Options{})
	require.Error(t, err)
	var ce cerrors.CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, cerrors.BadHeader, ce.Kind())
}

func TestTransform__AlreadyInFormOnCompress(t *testing.T) {
	header := buildHeader("td", 21)

	_, err := td0.Transform(header, td0.Compress, td0.Options{})
	require.ErrorIs(t, err, cerrors.ErrAlreadyInForm)
}

func TestTransform__AlreadyInFormOnExpand(t *testing.T) {
	header := buildHeader("TD", 21)

	_, err := td0.Transform(header, td0.Expand, td0.Options{})
	require.ErrorIs(t, err, cerrors.ErrAlreadyInForm)
}

func TestTransform__HeaderCRCPatchedAfterTransform(t *testing.T) {
	normal := append(buildHeader("TD", 21), []byte("x")...)

	advanced, err := td0.Transform(normal, td0.Compress, td0.Options{})
	require.NoError(t, err)

	storedCRC := binary.LittleEndian.Uint16(advanced[10:12])
	assert.Equal(t, crc16(advanced[:10]), storedCRC)
}

func TestParseHeader(t *testing.T) {
	header := buildHeader("TD", 15)
	fields, err := td0.ParseHeader(header)
	require.NoError(t, err)
	assert.Equal(t, "TD", fields.Signature)
	assert.EqualValues(t, 15, fields.Version)
	assert.EqualValues(t, 2, fields.Sides)
}

func TestParseHeader__TooShort(t *testing.T) {
	_, err := td0.ParseHeader([]byte{1, 2, 3})
	require.Error(t, err)
}
