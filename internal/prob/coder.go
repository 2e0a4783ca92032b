package prob

import "fmt"

// Strategy selects how a tree-shaped alphabet reaches the range coder.
// It is fixed when a coder is built and must match on both sides.
type Strategy uint8

const (
	// StrategyTree codes one binary decision per internal node with the
	// node's branch probability.
	StrategyTree Strategy = iota
	// StrategyMultiSymbol codes each symbol in one step with the CDF derived
	// from the branch probabilities.
	StrategyMultiSymbol
)

func (s Strategy) String() string {
	switch s {
	case StrategyTree:
		return "tree"
	case StrategyMultiSymbol:
		return "multi-symbol"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool { return s <= StrategyMultiSymbol }

// Reader is the decoding side of the range coder as used by the models.
type Reader interface {
	BitReader
	// ReadSymbol decodes one symbol with the 15-bit cdf.
	ReadSymbol(cdf []uint16) int
	// Overrun reports whether more bits were read than the input held.
	Overrun() bool
}

// Writer is the encoding side of the range coder as used by the models.
type Writer interface {
	BitWriter
	// WriteSymbol encodes symbol s with the 15-bit cdf.
	WriteSymbol(s int, cdf []uint16)
}

// Read decodes one symbol of the subtree at node start. cdf must be the
// CDF of that subtree; it is only consulted by StrategyMultiSymbol.
func Read(r Reader, s Strategy, t Tree, probs []uint8, start int, cdf []uint16) int {
	if s == StrategyMultiSymbol {
		return r.ReadSymbol(cdf)
	}
	return ReadTree(r, t, probs, start)
}

// Write encodes sym, the counterpart of Read.
func Write(w Writer, s Strategy, t Tree, probs []uint8, start int, cdf []uint16, sym int) {
	if s == StrategyMultiSymbol {
		w.WriteSymbol(sym, cdf)
		return
	}
	WriteTree(w, t, probs, start, sym)
}

// Cost returns the cost of sym under the representation Write would use.
func Cost(s Strategy, t Tree, probs []uint8, start int, cdf []uint16, sym int) int {
	if s == StrategyMultiSymbol {
		return SymbolCost(cdf, sym)
	}
	return TreeCost(t, probs, start, sym)
}
