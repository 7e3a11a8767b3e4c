// Package lzsshuff implements the LZSS + adaptive Huffman codec compatible
// with the 1980s LZHUF program and Teledisk v2.x "advanced" compression. It
// combines the sliding-window match finder (internal/window), the adaptive
// Huffman tree (internal/huffman), and MSB-first bit packing
// (internal/bitio) exactly the way the original program does, down to the
// dictionary priming sequence and distance encoding tables.
package lzsshuff

import (
	"bytes"
	"encoding/binary"
	"io"

	cerrors "github.com/dargueta/retrocompressor/errors"
	"github.com/dargueta/retrocompressor/internal/bitio"
	"github.com/dargueta/retrocompressor/internal/huffman"
	"github.com/dargueta/retrocompressor/internal/window"
	"github.com/noxer/bytewriter"
)

// HeaderPolicy selects whether a 4-byte little-endian expanded-size prefix
// is present on the compressed stream.
type HeaderPolicy int

const (
	// Lzhuf: 4-byte little-endian expanded-size header, consumed/emitted
	// around the bit stream. Decoding stops once the declared size of
	// output has been produced.
	Lzhuf HeaderPolicy = iota
	// None: no size prefix; decoding runs until the compressed input is
	// exhausted. The legacy format has no true end-of-stream marker in this
	// mode, so the last output byte may be garbage.
	None
)

const defaultMaxExpanded = 1 << 30 // 1 GiB, per options default for non-TD0 callers

// Options configures one compress or expand call.
type Options struct {
	Header HeaderPolicy
	// InOffset bytes are skipped at the start of the input before decoding
	// begins (and are not counted against MaxExpanded).
	InOffset int
	// OutOffset bytes of zero padding are reserved at the start of the
	// output buffer for the caller to fill in separately.
	OutOffset int
	// MaxExpanded caps the size of the expanded payload. Zero means use the
	// package default (1 GiB).
	MaxExpanded int
	// OutputHint, if positive, presizes the output buffer to
	// OutOffset+4+OutputHint bytes using a fixed-capacity writer; exceeding
	// it falls back to a growable buffer.
	OutputHint int
}

func (o Options) maxExpanded() int {
	if o.MaxExpanded > 0 {
		return o.MaxExpanded
	}
	return defaultMaxExpanded
}

// Compress encodes input (after skipping InOffset bytes, which are not
// compressed) into the LZSS+Huffman bit stream. Returns the output buffer
// (with OutOffset leading zero bytes reserved), the number of input bytes
// consumed and the number of output bytes produced.
func Compress(input []byte, opts Options) ([]byte, uint64, uint64, error) {
	payload := input[opts.InOffset:]
	if len(payload) > opts.maxExpanded() {
		return nil, 0, 0, cerrors.NewWithMessage(cerrors.SizeExceeded, "input exceeds max_expanded")
	}

	out := newOutputBuffer(opts)
	out.Write(make([]byte, opts.OutOffset))

	if opts.Header == Lzhuf {
		var lenHdr [4]byte
		binary.LittleEndian.PutUint32(lenHdr[:], uint32(len(payload)))
		out.Write(lenHdr[:])
	}

	bw := bitio.NewWriter(out)
	huff := huffman.NewTree()
	win := window.New()

	startPos := window.Size - window.Lookahead
	for i := 0; i < startPos; i++ {
		win.Dictionary[i] = ' '
	}

	s := 0
	r := startPos
	length := 0
	for length < window.Lookahead && length < len(payload) {
		win.Dictionary[r+length] = payload[length]
		length++
	}

	for i := 1; i <= window.Lookahead; i++ {
		win.InsertNode(r - i)
	}
	win.InsertNode(r)

	bytePtr := length
	for {
		if win.MatchLength > length {
			win.MatchLength = length
		}
		if win.MatchLength <= window.Threshold {
			win.MatchLength = 1
			if err := huff.EncodeChar(bw, int(win.Dictionary[r])); err != nil {
				return nil, 0, 0, cerrors.NewFromError(cerrors.Io, err)
			}
		} else {
			if err := huff.EncodeChar(bw, 255-window.Threshold+win.MatchLength); err != nil {
				return nil, 0, 0, cerrors.NewFromError(cerrors.Io, err)
			}
			if err := huff.EncodePosition(bw, uint16(win.MatchPosition)); err != nil {
				return nil, 0, 0, cerrors.NewFromError(cerrors.Io, err)
			}
		}

		lastMatchLength := win.MatchLength
		i := 0
		for i < lastMatchLength {
			if bytePtr >= len(payload) {
				break
			}
			c := payload[bytePtr]
			bytePtr++
			win.DeleteNode(s)
			win.Dictionary[s] = c
			if s < window.Lookahead-1 {
				// Mirror into the padding past the ring buffer proper so
				// insert_node can read LOOKAHEAD bytes ahead of any window
				// position without wrapping.
				win.Dictionary[s+window.Size] = c
			}
			s = (s + 1) & (window.Size - 1)
			r = (r + 1) & (window.Size - 1)
			win.InsertNode(r)
			i++
		}
		for i < lastMatchLength {
			win.DeleteNode(s)
			s = (s + 1) & (window.Size - 1)
			r = (r + 1) & (window.Size - 1)
			length--
			if length > 0 {
				win.InsertNode(r)
			}
			i++
		}
		if length <= 0 {
			break
		}
	}

	if opts.Header == Lzhuf {
		if err := huff.EncodeChar(bw, huffman.EOS); err != nil {
			return nil, 0, 0, cerrors.NewFromError(cerrors.Io, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}

	outBytes := out.Bytes()
	return outBytes, uint64(len(payload)), uint64(len(outBytes)), nil
}

// Expand decodes an LZSS+Huffman bit stream back to the original bytes.
func Expand(input []byte, opts Options) ([]byte, uint64, uint64, error) {
	payload := input[opts.InOffset:]

	var declaredSize uint32
	headerLen := 0
	if opts.Header == Lzhuf {
		if len(payload) < 4 {
			return nil, 0, 0, cerrors.NewWithMessage(cerrors.UnexpectedEof, "truncated lzhuf header")
		}
		declaredSize = binary.LittleEndian.Uint32(payload[:4])
		headerLen = 4
		if int(declaredSize) > opts.maxExpanded() {
			return nil, 0, 0, cerrors.NewWithMessage(cerrors.SizeExceeded, "declared size exceeds max_expanded")
		}
	}

	body := payload[headerLen:]
	totalBits := len(body) * 8

	out := make([]byte, opts.OutOffset)
	br := bitio.NewReader(body)
	huff := huffman.NewTree()
	win := window.New()

	startPos := window.Size - window.Lookahead
	for i := 0; i < startPos; i++ {
		win.Dictionary[i] = ' '
	}
	rpos := startPos

	emit := func(b byte) error {
		if len(out)-opts.OutOffset >= opts.maxExpanded() {
			return cerrors.NewWithMessage(cerrors.SizeExceeded, "output exceeds max_expanded")
		}
		out = append(out, b)
		win.Dictionary[rpos] = b
		rpos = (rpos + 1) & (window.Size - 1)
		return nil
	}

	if opts.Header == Lzhuf {
		for uint32(len(out)-opts.OutOffset) < declaredSize {
			c := huff.DecodeChar(br)
			if c == huffman.EOS {
				break
			}
			if c < 256 {
				if err := emit(byte(c)); err != nil {
					return nil, 0, 0, err
				}
				continue
			}
			if c >= huffman.NChar-1 {
				return nil, 0, 0, cerrors.NewWithMessage(cerrors.InvalidData, "symbol out of range")
			}
			strPos := ((rpos - int(huff.DecodePosition(br)) - 1) & (window.Size - 1))
			strLen := c + window.Threshold - 255
			for k := 0; k < strLen; k++ {
				c8 := win.Dictionary[(strPos+k)&(window.Size-1)]
				if err := emit(c8); err != nil {
					return nil, 0, 0, err
				}
			}
		}
	} else {
		for br.BitsConsumed() < totalBits {
			c := huff.DecodeChar(br)
			if c < 256 {
				if err := emit(byte(c)); err != nil {
					return nil, 0, 0, err
				}
				continue
			}
			if c >= huffman.NChar-1 {
				return nil, 0, 0, cerrors.NewWithMessage(cerrors.InvalidData, "symbol out of range")
			}
			strPos := ((rpos - int(huff.DecodePosition(br)) - 1) & (window.Size - 1))
			strLen := c + window.Threshold - 255
			for k := 0; k < strLen; k++ {
				c8 := win.Dictionary[(strPos+k)&(window.Size-1)]
				if err := emit(c8); err != nil {
					return nil, 0, 0, err
				}
			}
		}
	}

	return out, uint64(len(payload)), uint64(len(out)), nil
}

// compressStream and expandStream are unexported streaming wrappers around
// the slice-based API above. The wire format has no framing that benefits
// from incremental I/O, so these just buffer the whole stream and delegate;
// they exist so callers holding an io.ReadSeeker/io.WriteSeeker (a mapped
// file, a bytesextra in-memory seeker) don't have to read it out by hand.
func compressStream(r io.ReadSeeker, w io.WriteSeeker, opts Options) (uint64, uint64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	out, inN, outN, err := Compress(data, opts)
	if err != nil {
		return 0, 0, err
	}
	if _, err := w.Write(out); err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	return inN, outN, nil
}

func expandStream(r io.ReadSeeker, w io.WriteSeeker, opts Options) (uint64, uint64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	out, inN, outN, err := Expand(data, opts)
	if err != nil {
		return 0, 0, err
	}
	if _, err := w.Write(out); err != nil {
		return 0, 0, cerrors.NewFromError(cerrors.Io, err)
	}
	return inN, outN, nil
}

// newOutputBuffer returns an io.Writer sized by OutputHint when one was
// given (a fixed-capacity github.com/noxer/bytewriter sink for the common
// case, mirroring the teacher's compression tests) or a plain growable
// buffer otherwise. The hinted sink falls back to a growable buffer
// transparently if the hint turns out too small.
func newOutputBuffer(opts Options) outputSink {
	if opts.OutputHint > 0 {
		capacity := opts.OutOffset + 4 + opts.OutputHint
		backing := make([]byte, capacity)
		return &hintedSink{backing: backing, bw: bytewriter.New(backing)}
	}
	return &growableSink{buf: &bytes.Buffer{}}
}

// outputSink is the minimal surface Compress needs: append bytes, and read
// them back out once finished.
type outputSink interface {
	io.Writer
	Bytes() []byte
}

type growableSink struct {
	buf *bytes.Buffer
}

func (s *growableSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *growableSink) Bytes() []byte               { return s.buf.Bytes() }

// hintedSink writes into a pre-sized backing array through
// github.com/noxer/bytewriter while the estimate holds, then spills the
// already-written prefix into a growable buffer if the estimate was too
// small.
type hintedSink struct {
	backing  []byte
	bw       io.Writer
	written  int
	overflow *bytes.Buffer
}

func (s *hintedSink) Write(p []byte) (int, error) {
	if s.overflow != nil {
		return s.overflow.Write(p)
	}
	if s.written+len(p) <= len(s.backing) {
		n, err := s.bw.Write(p)
		s.written += n
		return n, err
	}
	s.overflow = &bytes.Buffer{}
	s.overflow.Write(s.backing[:s.written])
	return s.overflow.Write(p)
}

func (s *hintedSink) Bytes() []byte {
	if s.overflow != nil {
		return s.overflow.Bytes()
	}
	return s.backing[:s.written]
}
