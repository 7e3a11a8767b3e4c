// Package testing holds fixture-loading helpers shared by this module's
// _test.go files: embedded golden plaintext, and a seekable in-memory byte
// buffer for exercising the streaming entry points. It mirrors the
// teacher's own testing/images.go, which wraps compressed disk-image
// fixtures in a github.com/xaionaro-go/bytesextra seeker; here the fixtures
// are plaintext (compressed on demand by the caller, not the helper) since
// there's no disk image format to unpack first.
package testing

import (
	_ "embed"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

//go:embed testdata/hamlet_act_1.txt
var hamletAct1 []byte

//go:embed testdata/tempest_act_5.txt
var tempestAct5 []byte

// HamletAct1 returns the text of Hamlet act 1 scene 1, a mid-size prose
// fixture with plenty of repeated words and phrases for exercising the LZSS
// match finder.
func HamletAct1() []byte {
	return append([]byte{}, hamletAct1...)
}

// TempestAct5 returns the text of The Tempest act 5 scene 1, used as a
// second, independent golden fixture so round-trip tests aren't all
// exercising the same byte distribution.
func TempestAct5() []byte {
	return append([]byte{}, tempestAct5...)
}

// NewSeekableBuffer wraps data in a fixed-size io.ReadWriteSeeker, the same
// way the teacher's LoadDiskImage hands decompressed disk image bytes to a
// driver under test. The returned seeker's capacity is fixed to len(data);
// writing past that fails.
func NewSeekableBuffer(data []byte) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(data)
}

// RequireRoundTrip compresses original with compress, expands the result
// with expand, and fails the test immediately if either step errors or the
// round trip doesn't reproduce original exactly.
func RequireRoundTrip(
	t *testing.T,
	original []byte,
	compress func([]byte) ([]byte, error),
	expand func([]byte) ([]byte, error),
) {
	t.Helper()

	compressed, err := compress(original)
	require.NoError(t, err, "compression failed")

	expanded, err := expand(compressed)
	require.NoError(t, err, "expansion failed")

	require.Equal(t, original, expanded, "round trip did not reproduce the original bytes")
}
