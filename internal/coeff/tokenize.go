package coeff

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// tokenEntry is one recorded coefficient token with everything needed to
// emit it later.
type tokenEntry struct {
	tx    scan.TxSize
	plane PlaneType
	ref   RefType
	band  uint8
	ctx   uint8
	token uint8
	noEOB bool
	sign  uint8
	extra uint32
}

// TokenBuffer accumulates the tokens of a tile during the encoding pass,
// then emits them in a second pass through the range coder. Rates can be
// measured before anything is written.
type TokenBuffer struct {
	tokens   []tokenEntry
	bitDepth int
}

// Reset clears all tokens, keeping the allocated memory.
func (tb *TokenBuffer) Reset() {
	tb.tokens = tb.tokens[:0]
}

// Len returns the number of recorded tokens.
func (tb *TokenBuffer) Len() int { return len(tb.tokens) }

// Emit writes every recorded token with the tables of m.
func (tb *TokenBuffer) Emit(w prob.Writer, m *Model, s prob.Strategy) {
	tb.EmitRange(w, m, s, 0, len(tb.tokens))
}

// EmitRange writes the tokens recorded in [from, to), so that other
// symbols can be interleaved between blocks.
func (tb *TokenBuffer) EmitRange(w prob.Writer, m *Model, s prob.Strategy, from, to int) {
	for i := from; i < to; i++ {
		t := &tb.tokens[i]
		cm := m.forBlock(&Block{Tx: t.tx, Plane: t.plane, Ref: t.ref})
		tok := int(t.token)
		cm.write(w, s, int(t.band), int(t.ctx), t.noEOB, tok)
		if tok == EOBToken || tok == ZeroToken {
			continue
		}
		writeCategory(w, tok, t.extra, tb.bitDepth, t.tx)
		w.WriteBit(int(t.sign), 128)
	}
}

// Cost returns the rate of the recorded tokens under m, in 1/512 bits.
func (tb *TokenBuffer) Cost(m *Model, s prob.Strategy) int {
	cost := 0
	for i := range tb.tokens {
		t := &tb.tokens[i]
		p := m.Probs[t.tx][t.plane][t.ref][t.band][t.ctx][:]
		tok := int(t.token)
		if t.noEOB {
			cost += prob.Cost(s, TokenTree, p, NoEOBStart, m.TailCDFs[t.tx][t.plane][t.ref][t.band][t.ctx][:], tok)
		} else {
			cost += prob.Cost(s, TokenTree, p, 0, m.CDFs[t.tx][t.plane][t.ref][t.band][t.ctx][:], tok)
		}
		if tok != EOBToken && tok != ZeroToken {
			cost += categoryCost(tok, t.extra, tb.bitDepth, t.tx) + prob.LiteralCost(1)
		}
	}
	return cost
}

// Tokenizer turns quantized blocks into tokens. It mirrors Decoder: the
// same contexts are derived and the same statistics are counted.
type Tokenizer struct {
	counts   *Counts
	bitDepth int
	cache    [1024]uint8
}

// NewTokenizer returns a tokenizer that counts into counts unless it is
// nil.
func NewTokenizer(counts *Counts, bitDepth int) *Tokenizer {
	return &Tokenizer{counts: counts, bitDepth: bitDepth}
}

// Tokenize records the tokens of levels, indexed by raster position, into
// tb and returns the end of block. Coefficients past the last non-zero
// level in scan order are not coded. above and left are updated as the
// decoder will update them.
func (t *Tokenizer) Tokenize(tb *TokenBuffer, b *Block, above, left []uint8, levels []int32) (int, error) {
	if err := t.check(b, levels); err != nil {
		return 0, err
	}
	tb.bitDepth = t.bitDepth
	ctx0 := scan.EntropyContext(b.Tx, above, left)
	eob := visitTokens(b, ctx0, levels, t.cache[:], func(band, ctx, tok int, noEOB bool, extra uint32, sign uint8) {
		t.counts.count(b, band, ctx, tok, noEOB)
		tb.tokens = append(tb.tokens, tokenEntry{
			tx: b.Tx, plane: b.Plane, ref: b.Ref,
			band: uint8(band), ctx: uint8(ctx),
			token: uint8(tok), noEOB: noEOB,
			sign: sign, extra: extra,
		})
	})
	scan.SetContexts(b.Tx, above, left, eob > 0)
	return eob, nil
}

// check verifies that every level can be coded and decoded back.
func (t *Tokenizer) check(b *Block, levels []int32) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if !ValidBitDepth(t.bitDepth) {
		return fmt.Errorf("%w: bit depth %d", prob.ErrConfigMismatch, t.bitDepth)
	}
	if len(levels) < b.Tx.Area() {
		return fmt.Errorf("%w: %d levels, want %d", prob.ErrConfigMismatch, len(levels), b.Tx.Area())
	}
	order := scan.Get(b.Tx, b.Type)
	maxLevel, limit := MaxLevel(t.bitDepth, b.Tx), MaxCoeff(t.bitDepth)
	for pos := 0; pos < b.maxEOB(); pos++ {
		rc := int(order.Scan[pos])
		v := levels[rc]
		if v < 0 {
			v = -v
		}
		if v > maxLevel || b.dequantize(v, pos, rc) > limit {
			return fmt.Errorf("%w: level %d at %d not codable at %d bits", prob.ErrConfigMismatch, levels[rc], rc, t.bitDepth)
		}
	}
	return nil
}

// endOfBlock returns one past the last non-zero level in scan order,
// bounded by the block's coded area.
func endOfBlock(b *Block, levels []int32) int {
	order := scan.Get(b.Tx, b.Type)
	for pos := b.maxEOB() - 1; pos >= 0; pos-- {
		if levels[order.Scan[pos]] != 0 {
			return pos + 1
		}
	}
	return 0
}

// visitTokens calls fn for every token of the block in coding order, with
// the context the decoder will derive, and returns the end of block.
// cache is scratch for the energy classes and needs one entry per
// coefficient.
func visitTokens(b *Block, ctx0 int, levels []int32, cache []uint8, fn func(band, ctx, tok int, noEOB bool, extra uint32, sign uint8)) int {
	order := scan.Get(b.Tx, b.Type)
	bands := scan.Bands(b.Tx)
	eob := endOfBlock(b, levels)

	ctx := ctx0
	noEOB := false
	for c := 0; c < eob; c++ {
		if c > 0 {
			ctx = scan.Context(order.Neighbors, cache, c)
		}
		rc := order.Scan[c]
		v := levels[rc]
		var sign uint8
		if v < 0 {
			v, sign = -v, 1
		}
		tok, extra := splitLevel(v)
		fn(int(bands[c]), ctx, tok, noEOB, extra, sign)
		cache[rc] = scan.Energy(tok)
		noEOB = tok == ZeroToken
	}
	if eob < b.maxEOB() {
		if eob > 0 {
			ctx = scan.Context(order.Neighbors, cache, eob)
		}
		fn(int(bands[eob]), ctx, EOBToken, false, 0, 0)
	}
	return eob
}
