// Package bitio implements the range coder behind the entropy coding core.
//
// A single arithmetic coder serves both symbol kinds used by the models:
// multi-symbol reads and writes against 15-bit cumulative distributions,
// and binary decisions against 8-bit branch probabilities (P(0) = p/256).
// Literal bits are binary decisions at probability 128. The coder follows
// the carry-propagating range coder of RFC 6716 section 4.1.
package bitio

import "math/bits"

const (
	cdfBits  = 15
	probBits = 8
)

// Reader is the decoding side of the range coder.
type Reader struct {
	buf   []byte
	pos   int
	rng   uint32 // current range size
	val   uint32 // offset of the code value inside the range
	rem   int    // last byte read, half of it not yet in val
	ext   uint32 // range scale saved between decode and update
	nbits int
}

// NewReader creates a Reader over data and primes the coder window.
func NewReader(data []byte) *Reader {
	r := &Reader{}
	r.Reset(data)
	return r
}

// Reset restarts decoding on data.
func (r *Reader) Reset(data []byte) {
	r.buf = data
	r.pos = 0
	r.rng = 1 << codeExtra
	r.rem = int(r.readByte())
	r.val = r.rng - 1 - uint32(r.rem>>(symBits-codeExtra))
	r.nbits = codeBits + 1 - ((codeBits-codeExtra)/symBits)*symBits
	r.ext = 0
	r.normalize()
}

// readByte returns the next input byte, or zero past the end of data.
func (r *Reader) readByte() byte {
	if r.pos < len(r.buf) {
		b := r.buf[r.pos]
		r.pos++
		return b
	}
	r.pos++
	return 0
}

func (r *Reader) normalize() {
	for r.rng <= codeBot {
		r.nbits += symBits
		r.rng <<= symBits
		sym := r.rem
		r.rem = int(r.readByte())
		sym = (sym<<symBits | r.rem) >> (symBits - codeExtra)
		r.val = ((r.val << symBits) + uint32(symMax&^sym)) & (codeTop - 1)
	}
}

// decodeBin returns the cumulative frequency of the next symbol out of
// 1<<ftb. update must follow with the symbol's interval.
func (r *Reader) decodeBin(ftb uint) uint32 {
	ft := uint32(1) << ftb
	r.ext = r.rng >> ftb
	s := r.val / r.ext
	if s+1 > ft {
		s = ft - 1
	}
	return ft - (s + 1)
}

func (r *Reader) update(fl, fh, ft uint32) {
	s := r.ext * (ft - fh)
	r.val -= s
	if fl > 0 {
		r.rng = r.ext * (fh - fl)
	} else {
		r.rng -= s
	}
	r.normalize()
}

// ReadSymbol decodes one symbol coded with the 15-bit cumulative
// distribution cdf. The result is always in 0..len(cdf)-1.
func (r *Reader) ReadSymbol(cdf []uint16) int {
	fs := r.decodeBin(cdfBits)
	s := 0
	for s < len(cdf)-1 && uint32(cdf[s]) <= fs {
		s++
	}
	var fl uint32
	if s > 0 {
		fl = uint32(cdf[s-1])
	}
	r.update(fl, uint32(cdf[s]), 1<<cdfBits)
	return s
}

// ReadBit decodes one binary decision with P(0) = prob/256.
func (r *Reader) ReadBit(prob uint8) int {
	fs := r.decodeBin(probBits)
	if fs < uint32(prob) {
		r.update(0, uint32(prob), 1<<probBits)
		return 0
	}
	r.update(uint32(prob), 1<<probBits, 1<<probBits)
	return 1
}

// ReadLiteral decodes n bits, MSB first, at probability 1/2.
func (r *Reader) ReadLiteral(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | uint32(r.ReadBit(128))
	}
	return v
}

// Tell returns the number of bits consumed so far, rounded up.
func (r *Reader) Tell() int {
	return r.nbits - bits.Len32(r.rng)
}

// Overrun reports whether decoding has consumed more bits than the input
// holds, i.e. the stream was truncated or is corrupt.
func (r *Reader) Overrun() bool {
	return r.Tell() > 8*(len(r.buf)+1)
}
