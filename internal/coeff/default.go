package coeff

// defaultHead holds the EOB, ZERO and ONE node probabilities per band and
// context. Band 0 only has 3 contexts.
var defaultHead = [6][6][3]uint8{
	{{195, 29, 183}, {84, 49, 136}, {8, 42, 71}},
	{{31, 107, 169}, {35, 99, 159}, {17, 82, 140}, {8, 66, 114}, {2, 44, 76}, {1, 19, 32}},
	{{40, 132, 201}, {29, 114, 187}, {13, 91, 157}, {7, 75, 127}, {3, 58, 95}, {1, 28, 47}},
	{{69, 142, 221}, {42, 122, 201}, {15, 91, 159}, {6, 67, 121}, {1, 42, 77}, {1, 17, 31}},
	{{102, 148, 228}, {67, 117, 204}, {17, 82, 154}, {6, 59, 114}, {2, 39, 75}, {1, 15, 29}},
	{{156, 57, 233}, {119, 57, 212}, {58, 48, 163}, {29, 40, 124}, {12, 30, 81}, {3, 12, 31}},
}

// defaultTail holds the probabilities of nodes 3..10, shared by every
// context: small magnitudes are more likely than large ones.
var defaultTail = [NumNodes - 3]uint8{170, 150, 140, 170, 160, 180, 150, 200}

func defaultNodeProbs(band, ctx int) NodeProbs {
	var p NodeProbs
	h := defaultHead[band][ctx]
	if band == 0 && ctx >= 3 {
		// Unused by the context derivation; keep them valid.
		h = defaultHead[0][2]
	}
	copy(p[:3], h[:])
	copy(p[3:], defaultTail[:])
	return p
}
