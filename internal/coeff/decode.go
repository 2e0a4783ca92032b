package coeff

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// Decoder reads coefficient blocks of one tile. It is not safe for
// concurrent use; each tile worker owns one.
type Decoder struct {
	model    *Model
	counts   *Counts
	strategy prob.Strategy
	bitDepth int
	cache    [1024]uint8 // energy class per raster position
}

// NewDecoder returns a decoder over m. Token statistics are accumulated
// into counts unless it is nil.
func NewDecoder(m *Model, counts *Counts, s prob.Strategy, bitDepth int) *Decoder {
	return &Decoder{model: m, counts: counts, strategy: s, bitDepth: bitDepth}
}

// DecodeBlock decodes one transform block into out, indexed by raster
// position, and returns its end of block. above and left are the entropy
// contexts of the units the block covers; they are updated on success.
func (d *Decoder) DecodeBlock(r prob.Reader, b *Block, above, left []uint8, out []int32) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	area := b.Tx.Area()
	if len(out) < area {
		return 0, fmt.Errorf("%w: output holds %d coefficients, want %d", prob.ErrConfigMismatch, len(out), area)
	}
	clear(out[:area])

	var (
		order  = scan.Get(b.Tx, b.Type)
		bands  = scan.Bands(b.Tx)
		cm     = d.model.forBlock(b)
		maxEOB = b.maxEOB()
		limit  = MaxCoeff(d.bitDepth)
		ctx    = scan.EntropyContext(b.Tx, above, left)
		noEOB  = false
		c      = 0
	)
	for c < maxEOB {
		band := int(bands[c])
		if c > 0 {
			ctx = scan.Context(order.Neighbors, d.cache[:], c)
		}
		tok := cm.read(r, d.strategy, band, ctx, noEOB)
		d.counts.count(b, band, ctx, tok, noEOB)
		if tok == EOBToken {
			break
		}
		rc := int(order.Scan[c])
		d.cache[rc] = scan.Energy(tok)
		if tok == ZeroToken {
			noEOB = true
			c++
			continue
		}
		mag := readCategory(r, tok, d.bitDepth, b.Tx)
		v := b.dequantize(mag, c, rc)
		if r.ReadBit(128) != 0 {
			v = -v
		}
		if v > limit || v < -limit {
			return c, fmt.Errorf("%w: coefficient %d at %d exceeds %d-bit range", prob.ErrStreamCorrupt, v, rc, d.bitDepth)
		}
		out[rc] = v
		noEOB = false
		c++
	}
	if r.Overrun() {
		return c, fmt.Errorf("%w: coder ran past end of data", prob.ErrStreamCorrupt)
	}
	scan.SetContexts(b.Tx, above, left, c > 0)
	return c, nil
}
