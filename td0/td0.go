// Package td0 implements the Teledisk image header: parsing and patching the
// fixed 12-byte header, verifying and recomputing its CRC, and dispatching
// the payload to the LZW or LZSS+Huffman codec the version byte selects.
package td0

import (
	"encoding/binary"
	"io"
	"log"
	"os"

	cerrors "github.com/dargueta/retrocompressor/errors"
	"github.com/dargueta/retrocompressor/lzsshuff"
	"github.com/dargueta/retrocompressor/lzw"
)

// HeaderSize is the fixed size of the Teledisk header in bytes.
const HeaderSize = 12

const defaultMaxExpanded = 3 << 20 // 3 MiB, per the TD0-specific default

// Direction selects which way a Transform call toggles the image.
type Direction int

const (
	Compress Direction = iota
	Expand
)

// Options configures one Transform call.
type Options struct {
	// MaxExpanded caps the size of the expanded payload. Zero means use the
	// TD0-specific default (3 MiB).
	MaxExpanded int
	// Logger receives non-fatal warnings (e.g. the v2.x truncation hazard
	// notice). Defaults to a logger writing to stderr.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(os.Stderr, "", 0)
}

func (o Options) maxExpanded() int {
	if o.MaxExpanded > 0 {
		return o.MaxExpanded
	}
	return defaultMaxExpanded
}

// crc16 computes the Teledisk header checksum: polynomial 0xA097, init 0,
// non-reflected, no final XOR, processed byte-at-a-time MSB first.
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

func isLzwVersion(v byte) bool {
	return v == 10 || v == 11 || v == 12
}

// allSame reports whether every byte in b equals the first.
func allSame(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

// Transform toggles a Teledisk image between its normal (`TD`) and advanced
// (`td`) form. It verifies the stored header CRC, patches the signature and
// CRC for the new form, and dispatches the remainder of the image to the LZW
// codec (versions 10-12) or the LZSS+Huffman codec in its headerless framing
// (versions 15, 20, 21).
//
// If the image is already in the form the caller asked for (e.g. Transform
// is asked to Compress a `td` image), it returns errors.ErrAlreadyInForm:
// this is a non-fatal condition the caller decides how to report.
func Transform(input []byte, dir Direction, opts Options) ([]byte, error) {
	if len(input) < HeaderSize {
		return nil, cerrors.NewWithMessage(cerrors.BadHeader, "input shorter than td0 header")
	}

	header := make([]byte, HeaderSize)
	copy(header, input[:HeaderSize])

	storedCRC := binary.LittleEndian.Uint16(header[10:12])
	if crc16(header[:10]) != storedCRC {
		return nil, cerrors.NewWithMessage(cerrors.BadHeader, "header crc mismatch")
	}

	sig := string(header[0:2])
	if sig != "TD" && sig != "td" {
		return nil, cerrors.NewWithMessage(cerrors.BadHeader, "unrecognized td0 signature")
	}

	switch dir {
	case Compress:
		if sig != "TD" {
			return nil, cerrors.ErrAlreadyInForm
		}
		header[0], header[1] = 't', 'd'
	case Expand:
		if sig != "td" {
			return nil, cerrors.ErrAlreadyInForm
		}
		header[0], header[1] = 'T', 'D'
	}

	version := header[4]
	body := input[HeaderSize:]

	var out []byte
	var err error

	switch dir {
	case Compress:
		if len(body) >= 4 && !allSame(body[len(body)-4:]) {
			opts.logger().Printf("warning: td0: last 4 bytes of image vary; v2.x advanced images have no true end marker and may truncate silently on expand")
		}
		if isLzwVersion(version) {
			lzwOpts := lzw.TD0Options
			lzwOpts.MaxExpanded = opts.maxExpanded()
			out, _, _, err = lzw.Compress(body, lzwOpts)
		} else {
			// Track/sector data compresses to somewhere under its own size in
			// the overwhelming common case, so len(body) is a safe, generous
			// presizing hint; hintedSink spills to a growable buffer on the
			// rare image where it doesn't hold.
			out, _, _, err = lzsshuff.Compress(body, lzsshuff.Options{
				Header:      lzsshuff.None,
				MaxExpanded: opts.maxExpanded(),
				OutputHint:  len(body),
			})
		}
	case Expand:
		if isLzwVersion(version) {
			lzwOpts := lzw.TD0Options
			lzwOpts.MaxExpanded = opts.maxExpanded()
			out, _, _, err = lzw.Expand(body, lzwOpts)
		} else {
			out, _, _, err = lzsshuff.Expand(body, lzsshuff.Options{Header: lzsshuff.None, MaxExpanded: opts.maxExpanded()})
		}
	}
	if err != nil {
		return nil, err
	}

	binary.LittleEndian.PutUint16(header[10:12], crc16(header[:10]))

	result := make([]byte, 0, HeaderSize+len(out))
	result = append(result, header...)
	result = append(result, out...)
	return result, nil
}

// TransformStream runs Transform against an in-place io.ReadWriteSeeker
// (a mounted file, or a github.com/xaionaro-go/bytesextra seeker wrapping a
// byte slice in tests) instead of a plain slice, rewinding and overwriting
// it with the result.
func TransformStream(rw io.ReadWriteSeeker, dir Direction, opts Options) error {
	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		return cerrors.NewFromError(cerrors.Io, err)
	}
	data, err := io.ReadAll(rw)
	if err != nil {
		return cerrors.NewFromError(cerrors.Io, err)
	}

	result, err := Transform(data, dir, opts)
	if err != nil {
		return err
	}

	if _, err := rw.Seek(0, io.SeekStart); err != nil {
		return cerrors.NewFromError(cerrors.Io, err)
	}
	if _, err := rw.Write(result); err != nil {
		return cerrors.NewFromError(cerrors.Io, err)
	}
	return nil
}

// HeaderFields unpacks the parsed (but not CRC-validated) fixed fields of a
// 12-byte Teledisk header, for callers that want to inspect it without
// performing a transform (e.g. a CLI's --info mode).
type HeaderFields struct {
	Signature string
	Sequence  byte
	Check     byte
	Version   byte
	DataRate  byte
	DriveType byte
	Stepping  byte
	DosFlag   byte
	Sides     byte
	CRC       uint16
}

// ParseHeader reads the fixed fields out of the first 12 bytes of input
// without verifying the CRC.
func ParseHeader(input []byte) (HeaderFields, error) {
	if len(input) < HeaderSize {
		return HeaderFields{}, cerrors.NewWithMessage(cerrors.BadHeader, "input shorter than td0 header")
	}
	return HeaderFields{
		Signature: string(input[0:2]),
		Sequence:  input[2],
		Check:     input[3],
		Version:   input[4],
		DataRate:  input[5],
		DriveType: input[6],
		Stepping:  input[7],
		DosFlag:   input[8],
		Sides:     input[9],
		CRC:       binary.LittleEndian.Uint16(input[10:12]),
	}, nil
}
