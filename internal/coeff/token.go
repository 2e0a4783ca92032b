// Package coeff codes quantized transform coefficients: the token
// alphabet and its category escapes, the context-indexed probability
// model, the block decoder and tokenizer, the rate-distortion trellis and
// the per-frame model adaptation.
package coeff

import (
	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// Tokens. Values match the leaf symbols of TokenTree.
const (
	ZeroToken = iota
	OneToken
	TwoToken
	ThreeToken
	FourToken
	Cat1Token // 5-6
	Cat2Token // 7-10
	Cat3Token // 11-18
	Cat4Token // 19-34
	Cat5Token // 35-66
	Cat6Token // 67+
	EOBToken

	NumTokens = 12
	NumNodes  = NumTokens - 1
)

// TokenTree is the coefficient token tree. Node 0 separates EOB from the
// rest; the subtree at NoEOBStart is used right after a ZERO token, where
// EOB cannot occur.
var TokenTree = prob.Tree{
	-EOBToken, 2,
	-ZeroToken, 4,
	-OneToken, 6,
	8, 12,
	-TwoToken, 10,
	-ThreeToken, -FourToken,
	14, 16,
	-Cat1Token, -Cat2Token,
	18, 20,
	-Cat3Token, -Cat4Token,
	-Cat5Token, -Cat6Token,
}

// NoEOBStart is the tree node where coding starts when EOB is excluded.
const NoEOBStart = 2

// catMin is the smallest magnitude of each category token.
var catMin = [6]int32{5, 7, 11, 19, 35, 67}

// Extra-bit probabilities of the category tokens, MSB first.
var (
	cat1Prob = []uint8{159}
	cat2Prob = []uint8{165, 145}
	cat3Prob = []uint8{173, 148, 140}
	cat4Prob = []uint8{176, 155, 140, 135}
	cat5Prob = []uint8{180, 157, 141, 134, 130}

	cat6Prob = [3][]uint8{
		{254, 254, 254, 252, 249, 243, 230, 196, 177, 153, 140, 133, 130, 129},
		{255, 255, 254, 254, 254, 252, 249, 243, 230, 196, 177, 153, 140, 133, 130, 129},
		{255, 255, 255, 255, 254, 254, 254, 252, 249, 243, 230, 196, 177, 153, 140, 133, 130, 129},
	}
)

// bitDepthIndex maps 8, 10 and 12 to 0, 1 and 2.
func bitDepthIndex(bitDepth int) int {
	return (bitDepth - 8) >> 1
}

// CategoryProbs returns the extra-bit probabilities of a category token.
// CAT6 sends fewer bits for transforms smaller than 32x32. Non-category
// tokens have no extra bits.
func CategoryProbs(tok, bitDepth int, tx scan.TxSize) []uint8 {
	switch tok {
	case Cat1Token:
		return cat1Prob
	case Cat2Token:
		return cat2Prob
	case Cat3Token:
		return cat3Prob
	case Cat4Token:
		return cat4Prob
	case Cat5Token:
		return cat5Prob
	case Cat6Token:
		skip := scan.NumTxSizes - 1 - int(tx)
		return cat6Prob[bitDepthIndex(bitDepth)][skip:]
	}
	return nil
}

// MaxLevel returns the largest magnitude a token can carry for the given
// bit depth and transform size.
func MaxLevel(bitDepth int, tx scan.TxSize) int32 {
	n := len(CategoryProbs(Cat6Token, bitDepth, tx))
	return catMin[5] + (1 << n) - 1
}

// TokenOf returns the token that codes magnitude v (v >= 0).
func TokenOf(v int32) int {
	switch {
	case v <= 4:
		return int(v)
	case v < catMin[1]:
		return Cat1Token
	case v < catMin[2]:
		return Cat2Token
	case v < catMin[3]:
		return Cat3Token
	case v < catMin[4]:
		return Cat4Token
	case v < catMin[5]:
		return Cat5Token
	}
	return Cat6Token
}

// splitLevel returns the token of magnitude v and the value of its extra
// bits.
func splitLevel(v int32) (tok int, extra uint32) {
	tok = TokenOf(v)
	if tok >= Cat1Token {
		extra = uint32(v - catMin[tok-Cat1Token])
	}
	return tok, extra
}

// readCategory reads the extra bits of a category token and returns the
// magnitude.
func readCategory(r prob.BitReader, tok, bitDepth int, tx scan.TxSize) int32 {
	if tok < Cat1Token {
		return int32(tok)
	}
	var v int32
	for _, p := range CategoryProbs(tok, bitDepth, tx) {
		v = v<<1 | int32(r.ReadBit(p))
	}
	return catMin[tok-Cat1Token] + v
}

func writeCategory(w prob.BitWriter, tok int, extra uint32, bitDepth int, tx scan.TxSize) {
	probs := CategoryProbs(tok, bitDepth, tx)
	for i, p := range probs {
		w.WriteBit(int(extra>>uint(len(probs)-1-i))&1, p)
	}
}

// categoryCost returns the cost of the extra bits of a category token.
func categoryCost(tok int, extra uint32, bitDepth int, tx scan.TxSize) int {
	probs := CategoryProbs(tok, bitDepth, tx)
	cost := 0
	for i, p := range probs {
		cost += prob.BitCost(int(extra>>uint(len(probs)-1-i))&1, p)
	}
	return cost
}
