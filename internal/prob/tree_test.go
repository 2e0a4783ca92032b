package prob

import "testing"

// Token-shaped tree used across the tests: 12 symbols, symbol 11 at the
// root 0 branch.
var testTree = Tree{
	-11, 2, -0, 4, -1, 6, 8, 12, -2, 10, -3, -4, 14, 16, -5, -6, 18, 20, -7, -8, -9, -10,
}

// bitLog records decisions so that the tree walks can be checked without a
// real coder.
type bitLog struct {
	bits  []int
	probs []uint8
	pos   int
}

func (b *bitLog) WriteBit(bit int, prob uint8) {
	b.bits = append(b.bits, bit)
	b.probs = append(b.probs, prob)
}

func (b *bitLog) ReadBit(prob uint8) int {
	bit := b.bits[b.pos]
	b.pos++
	return bit
}

func testProbs(n int) []uint8 {
	p := make([]uint8, n)
	for i := range p {
		p[i] = uint8(20 + 19*i)
	}
	return p
}

func TestTreeShape(t *testing.T) {
	if got := testTree.NumNodes(); got != 11 {
		t.Errorf("NumNodes = %d, want 11", got)
	}
	if got := testTree.NumSymbols(); got != 12 {
		t.Errorf("NumSymbols = %d, want 12", got)
	}
	seen := map[int]bool{}
	testTree.Leaves(0, func(s int) { seen[s] = true })
	if len(seen) != 12 {
		t.Errorf("Leaves(0) visited %d symbols, want 12", len(seen))
	}
	seen = map[int]bool{}
	testTree.Leaves(2, func(s int) { seen[s] = true })
	if len(seen) != 11 || seen[11] {
		t.Errorf("Leaves(2) = %v, want symbols 0..10", seen)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	probs := testProbs(11)
	for _, start := range []int{0, 2} {
		for sym := 0; sym < 12; sym++ {
			if start == 2 && sym == 11 {
				continue
			}
			var log bitLog
			WriteTree(&log, testTree, probs, start, sym)
			if got := ReadTree(&log, testTree, probs, start); got != sym {
				t.Errorf("start %d: ReadTree = %d, want %d", start, got, sym)
			}
			if log.pos != len(log.bits) {
				t.Errorf("start %d sym %d: read %d of %d bits", start, sym, log.pos, len(log.bits))
			}
		}
	}
}

func TestTreePath(t *testing.T) {
	tests := []struct {
		start, sym int
		bits       uint32
		n          int
	}{
		{0, 11, 0b0, 1},
		{0, 0, 0b10, 2},
		{0, 1, 0b110, 3},
		{2, 0, 0b0, 1},
		{2, 10, 0b111111, 6},
		{0, 10, 0b1111111, 7},
	}
	for _, tt := range tests {
		bits, n := testTree.Path(tt.start, tt.sym)
		if bits != tt.bits || n != tt.n {
			t.Errorf("Path(%d, %d) = (%b, %d), want (%b, %d)", tt.start, tt.sym, bits, n, tt.bits, tt.n)
		}
	}
	if _, n := testTree.Path(2, 11); n != 0 {
		t.Errorf("Path(2, 11) length = %d, want 0", n)
	}
}

func TestTreeUsesNodeProbability(t *testing.T) {
	probs := testProbs(11)
	var log bitLog
	WriteTree(&log, testTree, probs, 0, 4)
	// 0 -> 2 -> 4 -> 6 -> 8 -> 10 -> leaf 4
	want := probs[:6]
	if len(log.probs) != len(want) {
		t.Fatalf("wrote %d bits, want %d", len(log.probs), len(want))
	}
	for i := range want {
		if log.probs[i] != want[i] {
			t.Errorf("bit %d: prob = %d, want %d", i, log.probs[i], want[i])
		}
	}
}
