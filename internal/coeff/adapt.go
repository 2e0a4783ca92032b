package coeff

import "github.com/deepteams/entropy/internal/prob"

// FrameType selects the coefficient update factor of an adaptation.
type FrameType uint8

const (
	KeyFrame FrameType = iota
	InterFrame
	// InterAfterKey is the first inter frame after a key frame.
	InterAfterKey
)

// UpdateFactor returns the maximum update factor for frames of type ft.
func UpdateFactor(ft FrameType) uint32 {
	if ft == InterAfterKey {
		return prob.CoefMaxUpdateFactorAfterKey
	}
	return prob.CoefMaxUpdateFactor
}

// Adapt merges counts into the probabilities of pre and stores the result,
// with re-derived CDFs, in out. out may be pre. The EOB node is merged from
// the EOB decisions; the rest of the tree from the token counts.
//
// Adapt panics if the merged model violates its invariants, which would
// be a bug in the merge rule rather than a property of the input.
func Adapt(pre *Model, counts *Counts, ft FrameType, out *Model) {
	factor := UpdateFactor(ft)
	for tx := range pre.Probs {
		for pt := range pre.Probs[tx] {
			for ref := range pre.Probs[tx][pt] {
				for band := range pre.Probs[tx][pt][ref] {
					for ctx := range pre.Probs[tx][pt][ref][band] {
						p := &pre.Probs[tx][pt][ref][band][ctx]
						q := &out.Probs[tx][pt][ref][band][ctx]
						tokens := counts.Tokens[tx][pt][ref][band][ctx][:]
						branch := counts.EOBBranch[tx][pt][ref][band][ctx]

						eob := tokens[EOBToken]
						more := uint32(0)
						if branch > eob {
							more = branch - eob
						}
						root := prob.MergeProbs(p[0], [2]uint32{eob, more}, prob.CoefCountSat, factor)
						prob.TreeMergeProbsFrom(TokenTree, NoEOBStart, p[:], tokens, q[:], prob.CoefCountSat, factor)
						q[0] = root
					}
				}
			}
		}
	}
	out.UpdateCDFs()
	if err := out.Validate(); err != nil {
		panic(err)
	}
}
