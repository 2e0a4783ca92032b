package prob

// Update parameters for the count-driven merge rule.
const (
	// ModeMVCountSat and ModeMVMaxUpdateFactor drive motion vector and
	// generic tree adaptation.
	ModeMVCountSat        = 20
	ModeMVMaxUpdateFactor = 128

	// CoefCountSat is the coefficient count saturation for every frame type.
	CoefCountSat = 24
	// CoefMaxUpdateFactor applies to intra frames and ordinary inter frames.
	CoefMaxUpdateFactor = 112
	// CoefMaxUpdateFactorAfterKey applies to the first frame after a key frame.
	CoefMaxUpdateFactorAfterKey = 128
)

// Clip clamps v into the valid branch probability range 1..255.
func Clip(v int) uint8 {
	if v < 1 {
		return 1
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// BinaryProb returns the empirical probability of a 0 branch for the counts
// n0 and n1, rounded to nearest. It returns 128 when both counts are zero.
func BinaryProb(n0, n1 uint32) uint8 {
	den := uint64(n0) + uint64(n1)
	if den == 0 {
		return 128
	}
	return Clip(int((uint64(n0)*256 + den>>1) / den))
}

// weighted blends prior and observed probabilities with factor/256 weight
// on the observation, rounding to nearest.
func weighted(pre, p uint8, factor uint32) uint8 {
	return uint8((uint32(pre)*(256-factor) + uint32(p)*factor + 128) >> 8)
}

// MergeProbs moves pre toward the empirical probability of ct. The weight
// grows linearly with the number of observations up to countSat, where it
// reaches maxUpdateFactor/256. A node with no observations keeps pre.
func MergeProbs(pre uint8, ct [2]uint32, countSat, maxUpdateFactor uint32) uint8 {
	den := uint64(ct[0]) + uint64(ct[1])
	if den == 0 {
		return pre
	}
	count := uint32(countSat)
	if den < uint64(countSat) {
		count = uint32(den)
	}
	factor := maxUpdateFactor * count / countSat
	return weighted(pre, BinaryProb(ct[0], ct[1]), factor)
}

// ModeMVMergeProbs is MergeProbs with the motion vector parameters.
func ModeMVMergeProbs(pre uint8, ct [2]uint32) uint8 {
	return MergeProbs(pre, ct, ModeMVCountSat, ModeMVMaxUpdateFactor)
}

// TreeMergeProbs merges leaf counts into every internal node of the tree
// using the motion vector parameters. counts is indexed by symbol; out may
// alias pre.
func TreeMergeProbs(t Tree, pre []uint8, counts []uint32, out []uint8) {
	TreeMergeProbsFrom(t, 0, pre, counts, out, ModeMVCountSat, ModeMVMaxUpdateFactor)
}

// TreeMergeProbsFrom merges the subtree rooted at node start. Branch counts
// of a node are the sums of the leaf counts below each branch. It returns
// the total count seen by start.
func TreeMergeProbsFrom(t Tree, start int, pre []uint8, counts []uint32, out []uint8, countSat, maxUpdateFactor uint32) uint32 {
	var ct [2]uint32
	for b := 0; b < 2; b++ {
		next := int(t[start+b])
		if next <= 0 {
			ct[b] = counts[-next]
		} else {
			ct[b] = TreeMergeProbsFrom(t, next, pre, counts, out, countSat, maxUpdateFactor)
		}
	}
	out[start>>1] = MergeProbs(pre[start>>1], ct, countSat, maxUpdateFactor)
	return ct[0] + ct[1]
}
