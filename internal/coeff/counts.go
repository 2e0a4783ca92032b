package coeff

import "github.com/deepteams/entropy/internal/scan"

// Counts accumulates the token statistics of a tile between adaptations.
type Counts struct {
	// Tokens counts every coded token, EOB included, by symbol.
	Tokens [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts][NumTokens]uint32
	// EOBBranch counts the tokens coded with the full alphabet, i.e. the
	// number of times the EOB decision was made.
	EOBBranch [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts]uint32
}

// Reset zeroes all counters.
func (c *Counts) Reset() {
	*c = Counts{}
}

// Add accumulates o into c.
func (c *Counts) Add(o *Counts) {
	for tx := range c.Tokens {
		for pt := range c.Tokens[tx] {
			for ref := range c.Tokens[tx][pt] {
				for band := range c.Tokens[tx][pt][ref] {
					for ctx := range c.Tokens[tx][pt][ref][band] {
						for t, n := range o.Tokens[tx][pt][ref][band][ctx] {
							c.Tokens[tx][pt][ref][band][ctx][t] += n
						}
						c.EOBBranch[tx][pt][ref][band][ctx] += o.EOBBranch[tx][pt][ref][band][ctx]
					}
				}
			}
		}
	}
}

// Total returns the number of coded tokens.
func (c *Counts) Total() uint64 {
	var n uint64
	for tx := range c.Tokens {
		for pt := range c.Tokens[tx] {
			for ref := range c.Tokens[tx][pt] {
				for band := range c.Tokens[tx][pt][ref] {
					for ctx := range c.Tokens[tx][pt][ref][band] {
						for _, v := range c.Tokens[tx][pt][ref][band][ctx] {
							n += uint64(v)
						}
					}
				}
			}
		}
	}
	return n
}

func (c *Counts) count(b *Block, band, ctx, tok int, noEOB bool) {
	if c == nil {
		return
	}
	if !noEOB {
		c.EOBBranch[b.Tx][b.Plane][b.Ref][band][ctx]++
	}
	c.Tokens[b.Tx][b.Plane][b.Ref][band][ctx][tok]++
}
