// Package huffman implements the adaptive Huffman tree used by the
// LZSS+Huffman codec. It reproduces LZHUF.C's array-based tree (freq/parent/
// son parallel arrays addressed by integer node id, sibling property
// maintained by swap-then-increment) bit-for-bit, including the distance
// encoding tables and the rescale/rebuild procedure triggered when a
// frequency saturates.
package huffman

import (
	"github.com/dargueta/retrocompressor/internal/bitio"
)

const (
	Threshold = 2
	Lookahead = 60
	// NChar is the number of distinct symbols: 256 literal byte values, F-T
	// match-length symbols, plus one reserved end-of-stream leaf used only
	// in Lzhuf header mode.
	NChar   = 256 + Lookahead - Threshold + 1
	TabSize = NChar*2 - 1
	Root    = TabSize - 1
	MaxFreq = 0x8000

	// EOS is the reserved end-of-stream symbol, the last leaf in the tree.
	EOS = NChar - 1
)

// PLen gives the number of bits used to encode the upper 6 bits of a match
// distance, indexed by that 6-bit value. Exact constant table reproduced
// from Okumura's LZHUF.C.
var PLen = [64]byte{
	0x03, 0x04, 0x04, 0x04, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08,
	0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08,
}

// PCode gives the code for the upper 6 bits, left-justified; the PLen[i]
// most significant bits of PCode[i]<<8 are the code, the rest must not be
// written.
var PCode = [64]byte{
	0x00, 0x20, 0x30, 0x40, 0x50, 0x58, 0x60, 0x68,
	0x70, 0x78, 0x80, 0x88, 0x90, 0x94, 0x98, 0x9C,
	0xA0, 0xA4, 0xA8, 0xAC, 0xB0, 0xB4, 0xB8, 0xBC,
	0xC0, 0xC2, 0xC4, 0xC6, 0xC8, 0xCA, 0xCC, 0xCE,
	0xD0, 0xD2, 0xD4, 0xD6, 0xD8, 0xDA, 0xDC, 0xDE,
	0xE0, 0xE2, 0xE4, 0xE6, 0xE8, 0xEA, 0xEC, 0xEE,
	0xF0, 0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7,
	0xF8, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF,
}

// DLen maps the next 8 bits of input to the number of bits that encode the
// upper distance value.
var DLen = [256]byte{
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08,
	0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08,
}

// DCode maps the next 8 bits of input to the upper 6-bit distance value,
// indexed the same way as DLen.
var DCode = [256]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
	0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03, 0x03,
	0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04,
	0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05, 0x05,
	0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06, 0x06,
	0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07, 0x07,
	0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08, 0x08,
	0x09, 0x09, 0x09, 0x09, 0x09, 0x09, 0x09, 0x09,
	0x0A, 0x0A, 0x0A, 0x0A, 0x0A, 0x0A, 0x0A, 0x0A,
	0x0B, 0x0B, 0x0B, 0x0B, 0x0B, 0x0B, 0x0B, 0x0B,
	0x0C, 0x0C, 0x0C, 0x0C, 0x0D, 0x0D, 0x0D, 0x0D,
	0x0E, 0x0E, 0x0E, 0x0E, 0x0F, 0x0F, 0x0F, 0x0F,
	0x10, 0x10, 0x10, 0x10, 0x11, 0x11, 0x11, 0x11,
	0x12, 0x12, 0x12, 0x12, 0x13, 0x13, 0x13, 0x13,
	0x14, 0x14, 0x14, 0x14, 0x15, 0x15, 0x15, 0x15,
	0x16, 0x16, 0x16, 0x16, 0x17, 0x17, 0x17, 0x17,
	0x18, 0x18, 0x19, 0x19, 0x1A, 0x1A, 0x1B, 0x1B,
	0x1C, 0x1C, 0x1D, 0x1D, 0x1E, 0x1E, 0x1F, 0x1F,
	0x20, 0x20, 0x21, 0x21, 0x22, 0x22, 0x23, 0x23,
	0x24, 0x24, 0x25, 0x25, 0x26, 0x26, 0x27, 0x27,
	0x28, 0x28, 0x29, 0x29, 0x2A, 0x2A, 0x2B, 0x2B,
	0x2C, 0x2C, 0x2D, 0x2D, 0x2E, 0x2E, 0x2F, 0x2F,
	0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37,
	0x38, 0x39, 0x3A, 0x3B, 0x3C, 0x3D, 0x3E, 0x3F,
}

// Tree is the adaptive Huffman coder/decoder. It holds only the tree state;
// the bit reader or writer is passed to each encode/decode call.
type Tree struct {
	freq [TabSize + 1]int // extra slot is a frequency backstop
	prnt [TabSize + NChar]int
	son  [TabSize]int
}

// NewTree builds the tree in its initial state: every leaf has frequency 1,
// sibling property holds, frequencies non-decreasing.
func NewTree() *Tree {
	t := &Tree{}
	for i := 0; i < NChar; i++ {
		t.freq[i] = 1
		t.son[i] = i + TabSize
		t.prnt[i+TabSize] = i
	}
	i, j := 0, NChar
	for j <= Root {
		t.freq[j] = t.freq[i] + t.freq[i+1]
		t.son[j] = i
		t.prnt[i] = j
		t.prnt[i+1] = j
		i += 2
		j++
	}
	t.freq[TabSize] = 0xffff
	t.prnt[Root] = 0
	return t
}

// rebuild halves every leaf frequency (rounded up), repacks the leaves to
// the left, and reconstructs internal nodes bottom-up in frequency order.
// Triggered when the root frequency reaches MaxFreq, required for
// byte-for-byte compatibility with LZHUF-encoded streams.
func (t *Tree) rebuild() {
	j := 0
	for i := 0; i < TabSize; i++ {
		if t.son[i] >= TabSize {
			t.freq[j] = (t.freq[i] + 1) / 2
			t.son[j] = t.son[i]
			j++
		}
	}

	i := 0
	j = NChar
	for j < TabSize {
		k := i + 1
		f := t.freq[i] + t.freq[k]
		t.freq[j] = f

		k = j - 1
		for f < t.freq[k] {
			k--
		}
		k++

		l := (j - k) * 2
		for kp := k + l - 1; kp >= k; kp-- {
			t.freq[kp+1] = t.freq[kp]
		}
		t.freq[k] = f
		for kp := k + l - 1; kp >= k; kp-- {
			t.son[kp+1] = t.son[kp]
		}
		t.son[k] = i

		i += 2
		j++
	}

	for i := 0; i < TabSize; i++ {
		k := t.son[i]
		t.prnt[k] = i
		if k < TabSize {
			t.prnt[k+1] = i
		}
	}
}

// update increments the frequency of the leaf for symbol c and restores the
// sibling property by swapping with the farthest node of equal-or-lesser
// frequency at each level on the path to the root.
func (t *Tree) update(c int) {
	if t.freq[Root] == MaxFreq {
		t.rebuild()
	}
	node := t.prnt[c+TabSize]

	for {
		t.freq[node]++
		k := t.freq[node]

		l := node + 1
		if k > t.freq[l] {
			for k > t.freq[l] {
				l++
			}
			l--

			t.freq[node] = t.freq[l]
			t.freq[l] = k

			i := t.son[node]
			t.prnt[i] = l
			if i < TabSize {
				t.prnt[i+1] = l
			}

			j := t.son[l]
			t.son[l] = i

			t.prnt[j] = node
			if j < TabSize {
				t.prnt[j+1] = node
			}
			t.son[node] = j

			node = l
		}

		node = t.prnt[node]
		if node == 0 {
			break
		}
	}
}

// EncodeChar writes the prefix code for symbol c (a literal byte 0..255 or a
// match-length symbol 256..Root's leaf range) and updates the tree.
func (t *Tree) EncodeChar(w *bitio.Writer, c int) error {
	var i, j uint16
	k := t.prnt[c+TabSize]
	for {
		i >>= 1
		if k&1 > 0 {
			i += 0x8000
		}
		j++
		k = t.prnt[k]
		if k == Root {
			break
		}
	}
	if err := w.PutCode(int(j), i); err != nil {
		return err
	}
	t.update(c)
	return nil
}

// EncodePosition writes a match distance as a table-driven prefix for its
// upper 6 bits followed by 6 raw low bits.
func (t *Tree) EncodePosition(w *bitio.Writer, distance uint16) error {
	i := distance >> 6
	if err := w.PutCode(int(PLen[i]), uint16(PCode[i])<<8); err != nil {
		return err
	}
	return w.PutCode(6, (distance&0x3f)<<10)
}

// DecodeChar reads one symbol by walking from the root to a leaf, choosing
// the left child on a 0 bit and the right child on a 1 bit, then updates the
// tree the same way the encoder did for this symbol.
func (t *Tree) DecodeChar(r *bitio.Reader) int {
	c := t.son[Root]
	for c < TabSize {
		c += r.GetBit()
		c = t.son[c]
	}
	c -= TabSize
	t.update(c)
	return c
}

// DecodePosition is the inverse of EncodePosition.
func (t *Tree) DecodePosition(r *bitio.Reader) uint16 {
	first8 := uint16(r.GetByte())
	upper6 := uint16(DCode[first8]) << 6
	codedBits := int(DLen[first8])
	for i := 0; i < codedBits-2; i++ {
		first8 = (first8 << 1) + uint16(r.GetBit())
	}
	return upper6 | (first8 & 0x3f)
}
