package prob

import (
	"errors"
	"math/rand"
	"testing"
)

func TestTreeToCDF(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 500; iter++ {
		probs := make([]uint8, 11)
		for i := range probs {
			probs[i] = uint8(1 + rng.Intn(255))
		}
		full := make([]uint16, 12)
		TreeToCDF(testTree, probs, 0, full)
		if err := ValidateCDF(full); err != nil {
			t.Fatalf("iter %d: full cdf: %v", iter, err)
		}
		tail := make([]uint16, 11)
		TreeToCDF(testTree, probs, 2, tail)
		if err := ValidateCDF(tail); err != nil {
			t.Fatalf("iter %d: tail cdf: %v", iter, err)
		}
		for s := range full {
			lo := uint16(0)
			if s > 0 {
				lo = full[s-1]
			}
			if full[s] <= lo {
				t.Fatalf("iter %d: symbol %d has zero frequency", iter, s)
			}
		}
	}
}

func TestTreeToCDFExtremes(t *testing.T) {
	for _, p := range []uint8{1, 255} {
		probs := make([]uint8, 11)
		for i := range probs {
			probs[i] = p
		}
		cdf := make([]uint16, 12)
		TreeToCDF(testTree, probs, 0, cdf)
		if err := ValidateCDF(cdf); err != nil {
			t.Errorf("probs all %d: %v", p, err)
		}
		for s := range cdf {
			if SymbolCost(cdf, s) <= 0 {
				t.Errorf("probs all %d: symbol %d cost %d", p, s, SymbolCost(cdf, s))
			}
		}
	}
}

func TestTreeToCDFMatchesTree(t *testing.T) {
	// A two-symbol tree folds exactly to its branch probability.
	tr := Tree{-0, -1}
	cdf := make([]uint16, 2)
	TreeToCDF(tr, []uint8{64}, 0, cdf)
	if cdf[0] != CDFTotal/4 || cdf[1] != CDFTotal {
		t.Errorf("cdf = %v, want [%d %d]", cdf, CDFTotal/4, CDFTotal)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cdf  []uint16
		ok   bool
	}{
		{"good", []uint16{100, 100, CDFTotal}, true},
		{"empty", nil, false},
		{"decreasing", []uint16{200, 100, CDFTotal}, false},
		{"short total", []uint16{100, 32767}, false},
	}
	for _, tt := range tests {
		err := ValidateCDF(tt.cdf)
		if (err == nil) != tt.ok {
			t.Errorf("%s: ValidateCDF = %v", tt.name, err)
		}
		if err != nil && !errors.Is(err, ErrModelInconsistent) {
			t.Errorf("%s: error %v is not ErrModelInconsistent", tt.name, err)
		}
	}
	if err := ValidateProbs([]uint8{1, 0, 3}); !errors.Is(err, ErrModelInconsistent) {
		t.Errorf("ValidateProbs with zero = %v", err)
	}
	if err := ValidateProbs([]uint8{1, 255}); err != nil {
		t.Errorf("ValidateProbs = %v", err)
	}
}
