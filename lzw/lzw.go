// Package lzw implements the fixed-code-width LZW codec used by Teledisk
// v1.x images. Unlike GIF-LZW the code width never grows past its initial
// value; dictionary growth freezes once the table saturates (or, in the
// Teledisk v1 flavor, the encoder re-emits CLEAR and starts over). Bit
// packing is least-significant-bit-first, matching the original Teledisk
// LZW framing.
package lzw

import (
	cerrors "github.com/dargueta/retrocompressor/errors"
)

const (
	// CodeWidth is fixed for the whole stream; this package does not
	// implement variable-width code growth.
	CodeWidth = 12
	maxCode   = 1 << CodeWidth

	Clear = 256
	Stop  = 257

	firstFreeCode = 258
)

// Mode distinguishes the generic framing (STOP-terminated, table freezes on
// saturation) from the Teledisk v1.x framing (no STOP; CLEAR is re-emitted
// whenever the table fills, and decoding runs until input is exhausted).
type Mode int

const (
	Standard Mode = iota
	TD0V1
)

const defaultMaxExpanded = 1 << 30

// TD0Options is the Teledisk v1.x framing: the table rebuilds itself by
// re-emitting CLEAR when it saturates, and there is no STOP code, matching
// the td0 package's dispatch for version 10/11/12 images.
var TD0Options = Options{Mode: TD0V1}

// Options configures one compress or expand call.
type Options struct {
	Mode        Mode
	InOffset    int
	OutOffset   int
	MaxExpanded int
}

func (o Options) maxExpanded() int {
	if o.MaxExpanded > 0 {
		return o.MaxExpanded
	}
	return defaultMaxExpanded
}

// lsbWriter packs codes least-significant-bit-first, the framing Teledisk
// LZW uses (distinct from the MSB-first bit I/O the LZSS+Huffman codec
// uses).
type lsbWriter struct {
	out     []byte
	cur     uint32
	nbits   uint
}

func (w *lsbWriter) putCode(code int, width int) {
	w.cur |= uint32(code) << w.nbits
	w.nbits += uint(width)
	for w.nbits >= 8 {
		w.out = append(w.out, byte(w.cur))
		w.cur >>= 8
		w.nbits -= 8
	}
}

func (w *lsbWriter) flush() {
	if w.nbits > 0 {
		w.out = append(w.out, byte(w.cur))
		w.cur = 0
		w.nbits = 0
	}
}

type lsbReader struct {
	in    []byte
	pos   int // bit position
	total int // total bits available
}

func newLsbReader(in []byte) *lsbReader {
	return &lsbReader{in: in, total: len(in) * 8}
}

func (r *lsbReader) getCode(width int) int {
	var v uint32
	for i := 0; i < width; i++ {
		bit := uint32(0)
		byteIdx := r.pos >> 3
		if byteIdx < len(r.in) {
			shift := uint(r.pos & 7)
			bit = uint32(r.in[byteIdx]>>shift) & 1
		}
		v |= bit << uint(i)
		r.pos++
	}
	return int(v)
}

// exhausted reports whether fewer bits remain than one full code needs; the
// zero bits that pad the final byte are never read as a code.
func (r *lsbReader) exhausted() bool {
	return r.total-r.pos < CodeWidth
}

type dictEntry struct {
	prefix int // -1 for a root (single-byte) entry
	suffix byte
}

// entryString reconstructs the full byte string for a dictionary code by
// walking prefix links back to a root.
func entryString(table []dictEntry, code int, scratch []byte) []byte {
	scratch = scratch[:0]
	for code != -1 {
		e := table[code]
		scratch = append(scratch, e.suffix)
		code = e.prefix
	}
	// reverse in place
	for i, j := 0, len(scratch)-1; i < j; i, j = i+1, j-1 {
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return scratch
}

// Compress encodes input (after InOffset bytes) into an LZW bit stream.
func Compress(input []byte, opts Options) ([]byte, uint64, uint64, error) {
	payload := input[opts.InOffset:]
	if len(payload) > opts.maxExpanded() {
		return nil, 0, 0, cerrors.NewWithMessage(cerrors.SizeExceeded, "input exceeds max_expanded")
	}

	w := &lsbWriter{}
	for i := 0; i < opts.OutOffset; i++ {
		w.out = append(w.out, 0)
	}

	type key struct {
		prefix int
		suffix byte
	}
	dict := make(map[key]int, 4096)
	resetDict := func() {
		for k := range dict {
			delete(dict, k)
		}
	}
	nextCode := firstFreeCode

	w.putCode(Clear, CodeWidth)

	if len(payload) == 0 {
		if opts.Mode == Standard {
			w.putCode(Stop, CodeWidth)
		}
		w.flush()
		return w.out, uint64(len(payload)), uint64(len(w.out)), nil
	}

	prefix := int(payload[0])
	for i := 1; i < len(payload); i++ {
		c := payload[i]
		k := key{prefix, c}
		if code, ok := dict[k]; ok {
			prefix = code
			continue
		}
		w.putCode(prefix, CodeWidth)
		if nextCode < maxCode {
			dict[k] = nextCode
			nextCode++
		} else if opts.Mode == TD0V1 {
			resetDict()
			nextCode = firstFreeCode
			w.putCode(Clear, CodeWidth)
		}
		prefix = int(c)
	}
	w.putCode(prefix, CodeWidth)

	if opts.Mode == Standard {
		w.putCode(Stop, CodeWidth)
	}
	w.flush()
	return w.out, uint64(len(payload)), uint64(len(w.out)), nil
}

// Expand decodes an LZW bit stream back to the original bytes.
func Expand(input []byte, opts Options) ([]byte, uint64, uint64, error) {
	payload := input[opts.InOffset:]
	r := newLsbReader(payload)

	out := make([]byte, opts.OutOffset)
	table := make([]dictEntry, maxCode)
	resetTable := func() int {
		for i := 0; i < 256; i++ {
			table[i] = dictEntry{prefix: -1, suffix: byte(i)}
		}
		return firstFreeCode
	}
	nextCode := resetTable()

	var scratch []byte
	var prevCode = -1

	emit := func(s []byte) error {
		if len(out)-opts.OutOffset+len(s) > opts.maxExpanded() {
			return cerrors.NewWithMessage(cerrors.SizeExceeded, "output exceeds max_expanded")
		}
		out = append(out, s...)
		return nil
	}

	firstCode := true
	for {
		if opts.Mode == Standard {
			if r.exhausted() {
				return nil, 0, 0, cerrors.NewWithMessage(cerrors.UnexpectedEof, "missing stop code")
			}
		} else if r.exhausted() {
			break
		}

		code := r.getCode(CodeWidth)

		if code == Clear {
			nextCode = resetTable()
			prevCode = -1
			firstCode = true
			continue
		}
		if opts.Mode == Standard && code == Stop {
			break
		}

		if firstCode {
			if code >= 256 {
				return nil, 0, 0, cerrors.NewWithMessage(cerrors.InvalidCode, "first code after clear must be a root code")
			}
			scratch = entryString(table, code, scratch)
			if err := emit(scratch); err != nil {
				return nil, 0, 0, err
			}
			prevCode = code
			firstCode = false
			continue
		}

		var str []byte
		switch {
		case code < 256 || (code >= firstFreeCode && code < nextCode):
			str = entryString(table, code, scratch)
			scratch = str
		case code == nextCode:
			// KwKwK: the encoder used a code it had just decided to insert.
			prev := entryString(table, prevCode, nil)
			str = append(append([]byte{}, prev...), prev[0])
			scratch = str
		default:
			return nil, 0, 0, cerrors.NewWithMessage(cerrors.InvalidCode, "code exceeds dictionary size")
		}

		if err := emit(str); err != nil {
			return nil, 0, 0, err
		}

		if nextCode < maxCode {
			table[nextCode] = dictEntry{prefix: prevCode, suffix: str[0]}
			nextCode++
		}
		// else: table is full. In TD0V1 mode the encoder will emit CLEAR
		// before its next code; in Standard mode the table just stays frozen.

		prevCode = code
	}

	return out, uint64(len(payload)), uint64(len(out)), nil
}
