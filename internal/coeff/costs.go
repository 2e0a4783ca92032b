package coeff

import (
	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// noCost marks tokens that cannot be coded in a context.
const noCost = 1 << 24

// Costs caches token rates of one model for rate-distortion decisions.
// Rebuild it whenever the model changes.
type Costs struct {
	strategy prob.Strategy
	bitDepth int
	// tokens is indexed by [noEOB] last.
	tokens [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts][2][NumTokens]int32
}

// NewCosts computes the token rates of m as coded with strategy s.
func NewCosts(m *Model, s prob.Strategy, bitDepth int) *Costs {
	c := &Costs{strategy: s, bitDepth: bitDepth}
	for tx := range m.Probs {
		for pt := range m.Probs[tx] {
			for ref := range m.Probs[tx][pt] {
				for band := range m.Probs[tx][pt][ref] {
					for ctx := range m.Probs[tx][pt][ref][band] {
						p := m.Probs[tx][pt][ref][band][ctx][:]
						full := m.CDFs[tx][pt][ref][band][ctx][:]
						tail := m.TailCDFs[tx][pt][ref][band][ctx][:]
						t := &c.tokens[tx][pt][ref][band][ctx]
						for tok := 0; tok < NumTokens; tok++ {
							t[0][tok] = int32(prob.Cost(s, TokenTree, p, 0, full, tok))
							if tok == EOBToken {
								t[1][tok] = noCost
							} else {
								t[1][tok] = int32(prob.Cost(s, TokenTree, p, NoEOBStart, tail, tok))
							}
						}
					}
				}
			}
		}
	}
	return c
}

// Token returns the rate of tok in context (band, ctx) of block b.
func (c *Costs) Token(b *Block, band, ctx int, noEOB bool, tok int) int {
	i := 0
	if noEOB {
		i = 1
	}
	return int(c.tokens[b.Tx][b.Plane][b.Ref][band][ctx][i][tok])
}

// levelCost returns the rate of the extra bits and sign of a non-zero
// magnitude v.
func (c *Costs) levelCost(v int32, tx scan.TxSize) int {
	if v == 0 {
		return 0
	}
	tok, extra := splitLevel(v)
	return categoryCost(tok, extra, c.bitDepth, tx) + prob.LiteralCost(1)
}

// BlockRate returns the exact rate of coding levels, indexed by raster
// position, with first-position context ctx0.
func (c *Costs) BlockRate(b *Block, ctx0 int, levels []int32) int {
	var cache [1024]uint8
	rate := 0
	visitTokens(b, ctx0, levels, cache[:], func(band, ctx, tok int, noEOB bool, extra uint32, sign uint8) {
		rate += c.Token(b, band, ctx, noEOB, tok)
		if tok != EOBToken && tok != ZeroToken {
			rate += categoryCost(tok, extra, c.bitDepth, b.Tx) + prob.LiteralCost(1)
		}
	})
	return rate
}
