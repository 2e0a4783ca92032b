package bitio

import "math/bits"

// Range coder constants. One output symbol is one byte; the coder keeps a
// 31-bit window with one carry bit above it.
const (
	symBits   = 8
	codeBits  = 32
	symMax    = (1 << symBits) - 1
	codeShift = codeBits - symBits - 1
	codeTop   = uint32(1) << (codeBits - 1)
	codeBot   = codeTop >> symBits
	codeExtra = (codeBits-2)%symBits + 1
)

// Writer is the encoding side of the multi-symbol range coder.
//
// Symbols are coded from a cumulative frequency interval [fl, fh) out of a
// power-of-two total: 1<<15 for CDF symbols and 1<<8 for binary decisions.
// Output bytes are held back while they could still receive a carry.
type Writer struct {
	buf   []byte
	rng   uint32 // current range size
	val   uint32 // low end of the range
	rem   int    // byte held back for carry propagation, -1 when empty
	ext   uint32 // number of held-back 0xff bytes
	nbits int    // bits emitted plus the coder window, for Tell
}

// NewWriter returns a Writer whose output buffer starts with room for
// expectedSize bytes. Pass 0 for a small default.
func NewWriter(expectedSize int) *Writer {
	w := &Writer{}
	w.Reset(expectedSize)
	return w
}

// NewWriterBuffer returns a Writer that codes into the memory of buf,
// growing it when needed.
func NewWriterBuffer(buf []byte) *Writer {
	w := &Writer{buf: buf[:0]}
	w.Reset(cap(buf))
	return w
}

// Reset prepares the Writer for a new stream, keeping the buffer when it is
// large enough.
func (w *Writer) Reset(expectedSize int) {
	if expectedSize < 1024 {
		expectedSize = 1024
	}
	if cap(w.buf) >= expectedSize {
		w.buf = w.buf[:0]
	} else {
		w.buf = make([]byte, 0, expectedSize)
	}
	w.rng = codeTop
	w.val = 0
	w.rem = -1
	w.ext = 0
	w.nbits = codeBits + 1
}

// carryOut emits c, resolving any carry into the held-back bytes. 0xff
// bytes are counted instead of written until the carry is known.
func (w *Writer) carryOut(c int) {
	if c == symMax {
		w.ext++
		return
	}
	carry := c >> symBits
	if w.rem >= 0 {
		w.buf = append(w.buf, byte(w.rem+carry))
	}
	for ; w.ext > 0; w.ext-- {
		w.buf = append(w.buf, byte((symMax+carry)&symMax))
	}
	w.rem = c & symMax
}

func (w *Writer) normalize() {
	for w.rng <= codeBot {
		w.carryOut(int(w.val >> codeShift))
		w.val = (w.val << symBits) & (codeTop - 1)
		w.rng <<= symBits
		w.nbits += symBits
	}
}

// encodeBin codes the interval [fl, fh) out of 1<<ftb.
func (w *Writer) encodeBin(fl, fh uint32, ftb uint) {
	r := w.rng >> ftb
	if fl > 0 {
		w.val += w.rng - r*((uint32(1)<<ftb)-fl)
		w.rng = r * (fh - fl)
	} else {
		w.rng -= r * ((uint32(1) << ftb) - fh)
	}
	w.normalize()
}

// WriteSymbol codes symbol s with the 15-bit cumulative distribution cdf.
// The symbol must have a non-zero frequency.
func (w *Writer) WriteSymbol(s int, cdf []uint16) {
	var fl uint32
	if s > 0 {
		fl = uint32(cdf[s-1])
	}
	w.encodeBin(fl, uint32(cdf[s]), cdfBits)
}

// WriteBit codes bit with P(0) = prob/256. prob must be in 1..255.
func (w *Writer) WriteBit(bit int, prob uint8) {
	if bit != 0 {
		w.encodeBin(uint32(prob), 1<<probBits, probBits)
	} else {
		w.encodeBin(0, uint32(prob), probBits)
	}
}

// WriteLiteral codes the n low bits of v, MSB first, at probability 1/2.
func (w *Writer) WriteLiteral(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(int(v>>uint(i))&1, 128)
	}
}

// Tell returns the number of bits the stream needs so far, rounded up.
func (w *Writer) Tell() int {
	return w.nbits - bits.Len32(w.rng)
}

// Finish flushes the minimum number of bits that identify the final range
// and returns the coded bytes. The Writer must be Reset before reuse.
func (w *Writer) Finish() []byte {
	l := codeBits - bits.Len32(w.rng)
	msk := (codeTop - 1) >> uint(l)
	end := (w.val + msk) &^ msk
	if end|msk >= w.val+w.rng {
		l++
		msk >>= 1
		end = (w.val + msk) &^ msk
	}
	for l > 0 {
		w.carryOut(int(end >> codeShift))
		end = (end << symBits) & (codeTop - 1)
		l -= symBits
	}
	if w.rem >= 0 || w.ext > 0 {
		w.carryOut(0)
	}
	return w.buf
}
