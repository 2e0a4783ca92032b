package prob

import "fmt"

// CDF precision used by the multi-symbol coder.
const (
	CDFBits  = 15
	CDFTotal = 1 << CDFBits
)

// maxSymbols bounds the alphabet of every tree in this module.
const maxSymbols = 16

// TreeToCDF folds the branch probabilities of the subtree at node start
// into a cumulative distribution over its leaves. cdf is indexed by symbol
// and the subtree must hold exactly the symbols 0..len(cdf)-1.
//
// Every symbol keeps a probability of at least 1/CDFTotal so that any
// symbol of the alphabet stays codable; the mass for that is taken from the
// most probable symbol. Only integer arithmetic is used, so encoder and
// decoder derive identical tables.
func TreeToCDF(t Tree, probs []uint8, start int, cdf []uint16) {
	var pdf [maxSymbols]uint32
	t.fold(start, CDFTotal, probs, pdf[:])

	n := len(cdf)
	for s := 0; s < n; s++ {
		if pdf[s] != 0 {
			continue
		}
		big := 0
		for k := 1; k < n; k++ {
			if pdf[k] > pdf[big] {
				big = k
			}
		}
		pdf[big]--
		pdf[s] = 1
	}

	var acc uint32
	for s := 0; s < n; s++ {
		acc += pdf[s]
		cdf[s] = uint16(acc)
	}
}

func (t Tree) fold(i int, mass uint32, probs []uint8, pdf []uint32) {
	left := mass
	if mass >= 2 {
		left = (mass*uint32(probs[i>>1]) + 128) >> 8
		if left < 1 {
			left = 1
		}
		if left > mass-1 {
			left = mass - 1
		}
	}
	parts := [2]uint32{left, mass - left}
	for b := 0; b < 2; b++ {
		next := int(t[i+b])
		if next <= 0 {
			pdf[-next] += parts[b]
		} else {
			t.fold(next, parts[b], probs, pdf)
		}
	}
}

// ValidateCDF checks that cdf is non-decreasing and ends at CDFTotal.
func ValidateCDF(cdf []uint16) error {
	if len(cdf) == 0 {
		return fmt.Errorf("%w: empty cdf", ErrModelInconsistent)
	}
	for i := 1; i < len(cdf); i++ {
		if cdf[i] < cdf[i-1] {
			return fmt.Errorf("%w: cdf decreases at %d (%d < %d)", ErrModelInconsistent, i, cdf[i], cdf[i-1])
		}
	}
	if last := cdf[len(cdf)-1]; last != CDFTotal {
		return fmt.Errorf("%w: cdf ends at %d, want %d", ErrModelInconsistent, last, CDFTotal)
	}
	return nil
}

// ValidateProbs checks that every branch probability is in 1..255.
func ValidateProbs(probs []uint8) error {
	for i, p := range probs {
		if p == 0 {
			return fmt.Errorf("%w: probability %d is zero", ErrModelInconsistent, i)
		}
	}
	return nil
}
