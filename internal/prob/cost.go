package prob

import (
	"math"
	"math/bits"
)

// CostShift scales costs: one bit costs 1<<CostShift units.
const CostShift = 9

// probCost[p] is the cost of a branch taken with probability p/256.
var probCost [257]uint16

func init() {
	for p := 1; p <= 256; p++ {
		probCost[p] = uint16(math.Round(-math.Log2(float64(p)/256) * (1 << CostShift)))
	}
	probCost[0] = probCost[1]
}

// BitCost returns the cost of coding bit with P(0) = p/256.
func BitCost(bit int, p uint8) int {
	if bit != 0 {
		return int(probCost[256-int(p)])
	}
	return int(probCost[p])
}

// LiteralCost returns the cost of n equiprobable bits.
func LiteralCost(n int) int {
	return n << CostShift
}

// FreqCost returns the cost of a symbol with frequency f out of CDFTotal.
func FreqCost(f uint32) int {
	if f == 0 {
		f = 1
	}
	shift := bits.Len32(f) - 8
	if shift < 0 {
		shift = 0
	}
	return int(probCost[f>>uint(shift)]) + (CDFBits-8-shift)<<CostShift
}

// SymbolCost returns the cost of symbol s under cdf.
func SymbolCost(cdf []uint16, s int) int {
	f := uint32(cdf[s])
	if s > 0 {
		f -= uint32(cdf[s-1])
	}
	return FreqCost(f)
}

// TreeCost returns the cost of coding sym by walking the tree from start.
func TreeCost(t Tree, probs []uint8, start, sym int) int {
	path, n := t.Path(start, sym)
	cost := 0
	i := start
	for n > 0 {
		n--
		b := int(path>>uint(n)) & 1
		cost += BitCost(b, probs[i>>1])
		i = int(t[i+b])
	}
	return cost
}
