// Package prob holds the probability primitives shared by the coefficient
// and motion vector models: binary coding trees, the count-driven merge
// rule, tree to CDF folding and bit-cost tables.
package prob

// Tree is a binary coding tree stored as a flat array of node pairs. Entry
// 2k and 2k+1 are the 0 and 1 branches of internal node k. A positive entry
// is the array index of another node pair; an entry <= 0 is the leaf for
// symbol -entry. The root lives at index 0 and is never a child, so -0
// unambiguously names symbol 0.
//
// Node i uses branch probability probs[i>>1].
type Tree []int8

// NumNodes returns the number of internal nodes (and probabilities).
func (t Tree) NumNodes() int { return len(t) / 2 }

// NumSymbols returns the alphabet size of the full tree.
func (t Tree) NumSymbols() int { return len(t)/2 + 1 }

// BitReader decodes one binary decision with P(0) = prob/256.
type BitReader interface {
	ReadBit(prob uint8) int
}

// BitWriter encodes one binary decision with P(0) = prob/256.
type BitWriter interface {
	WriteBit(bit int, prob uint8)
}

// ReadTree walks the tree from node start, reading one bit per internal
// node, and returns the leaf symbol.
func ReadTree(r BitReader, t Tree, probs []uint8, start int) int {
	i := start
	for {
		i = int(t[i+r.ReadBit(probs[i>>1])])
		if i <= 0 {
			return -i
		}
	}
}

// WriteTree writes the branch decisions leading from node start to sym.
func WriteTree(w BitWriter, t Tree, probs []uint8, start, sym int) {
	bits, n := t.Path(start, sym)
	i := start
	for n > 0 {
		n--
		b := int(bits>>uint(n)) & 1
		w.WriteBit(b, probs[i>>1])
		i = int(t[i+b])
	}
}

// Path returns the branch decisions from node start to the leaf of sym,
// MSB first, and their count. It returns (0, 0) when sym is not reachable.
func (t Tree) Path(start, sym int) (bits uint32, n int) {
	var walk func(i int, acc uint32, depth int) bool
	walk = func(i int, acc uint32, depth int) bool {
		for b := 0; b < 2; b++ {
			next := int(t[i+b])
			path := acc<<1 | uint32(b)
			if next <= 0 {
				if -next == sym {
					bits, n = path, depth+1
					return true
				}
				continue
			}
			if walk(next, path, depth+1) {
				return true
			}
		}
		return false
	}
	walk(start, 0, 0)
	return bits, n
}

// Leaves calls fn for every leaf symbol reachable from node start.
func (t Tree) Leaves(start int, fn func(sym int)) {
	for b := 0; b < 2; b++ {
		next := int(t[start+b])
		if next <= 0 {
			fn(-next)
		} else {
			t.Leaves(next, fn)
		}
	}
}
