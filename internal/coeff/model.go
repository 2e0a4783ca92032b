package coeff

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// NodeProbs holds the branch probabilities of one coefficient context.
type NodeProbs [NumNodes]uint8

// Model is the coefficient part of a frame context. It is a plain value:
// assigning it copies every table.
type Model struct {
	Probs [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts]NodeProbs
	// CDFs codes the full alphabet; TailCDFs the alphabet without EOB used
	// after a ZERO token. Both are derived from Probs by UpdateCDFs.
	CDFs     [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts][NumTokens]uint16
	TailCDFs [scan.NumTxSizes][PlaneTypes][RefTypes][scan.NumBands][scan.MaxContexts][NumTokens - 1]uint16
}

// NewModel returns a model initialized with the default tables.
func NewModel() *Model {
	m := &Model{}
	m.SetDefaults()
	return m
}

// SetDefaults copies the default probabilities into m and derives its CDFs.
func (m *Model) SetDefaults() {
	for tx := range m.Probs {
		for pt := range m.Probs[tx] {
			for ref := range m.Probs[tx][pt] {
				for band := range m.Probs[tx][pt][ref] {
					for ctx := range m.Probs[tx][pt][ref][band] {
						m.Probs[tx][pt][ref][band][ctx] = defaultNodeProbs(band, ctx)
					}
				}
			}
		}
	}
	m.UpdateCDFs()
}

// UpdateCDFs re-derives every CDF from the branch probabilities.
func (m *Model) UpdateCDFs() {
	for tx := range m.Probs {
		for pt := range m.Probs[tx] {
			for ref := range m.Probs[tx][pt] {
				for band := range m.Probs[tx][pt][ref] {
					for ctx := range m.Probs[tx][pt][ref][band] {
						p := m.Probs[tx][pt][ref][band][ctx][:]
						prob.TreeToCDF(TokenTree, p, 0, m.CDFs[tx][pt][ref][band][ctx][:])
						prob.TreeToCDF(TokenTree, p, NoEOBStart, m.TailCDFs[tx][pt][ref][band][ctx][:])
					}
				}
			}
		}
	}
}

// Validate checks every probability and CDF of the model.
func (m *Model) Validate() error {
	for tx := range m.Probs {
		for pt := range m.Probs[tx] {
			for ref := range m.Probs[tx][pt] {
				for band := range m.Probs[tx][pt][ref] {
					for ctx := range m.Probs[tx][pt][ref][band] {
						err := prob.ValidateProbs(m.Probs[tx][pt][ref][band][ctx][:])
						if err == nil {
							err = prob.ValidateCDF(m.CDFs[tx][pt][ref][band][ctx][:])
						}
						if err == nil {
							err = prob.ValidateCDF(m.TailCDFs[tx][pt][ref][band][ctx][:])
						}
						if err != nil {
							return fmt.Errorf("coeff %v plane %d ref %d band %d ctx %d: %w",
								scan.TxSize(tx), pt, ref, band, ctx, err)
						}
					}
				}
			}
		}
	}
	return nil
}

// contextModel addresses the tables of one (tx, plane, ref) triple.
type contextModel struct {
	probs *[scan.NumBands][scan.MaxContexts]NodeProbs
	cdfs  *[scan.NumBands][scan.MaxContexts][NumTokens]uint16
	tails *[scan.NumBands][scan.MaxContexts][NumTokens - 1]uint16
}

func (m *Model) forBlock(b *Block) contextModel {
	return contextModel{
		probs: &m.Probs[b.Tx][b.Plane][b.Ref],
		cdfs:  &m.CDFs[b.Tx][b.Plane][b.Ref],
		tails: &m.TailCDFs[b.Tx][b.Plane][b.Ref],
	}
}

// read decodes one token. noEOB selects the alphabet used after ZERO.
func (c contextModel) read(r prob.Reader, s prob.Strategy, band, ctx int, noEOB bool) int {
	p := c.probs[band][ctx][:]
	if noEOB {
		return prob.Read(r, s, TokenTree, p, NoEOBStart, c.tails[band][ctx][:])
	}
	return prob.Read(r, s, TokenTree, p, 0, c.cdfs[band][ctx][:])
}

func (c contextModel) write(w prob.Writer, s prob.Strategy, band, ctx int, noEOB bool, tok int) {
	p := c.probs[band][ctx][:]
	if noEOB {
		prob.Write(w, s, TokenTree, p, NoEOBStart, c.tails[band][ctx][:], tok)
		return
	}
	prob.Write(w, s, TokenTree, p, 0, c.cdfs[band][ctx][:], tok)
}
