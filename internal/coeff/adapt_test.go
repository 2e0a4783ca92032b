package coeff

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

func TestAdaptNoCountsKeepsModel(t *testing.T) {
	pre := NewModel()
	var out Model
	Adapt(pre, &Counts{}, InterFrame, &out)
	if diff := pretty.Diff(pre.Probs, out.Probs); len(diff) != 0 {
		t.Errorf("adaptation without counts changed the model: %v", diff[:min(len(diff), 5)])
	}
	if out.CDFs != pre.CDFs {
		t.Error("CDFs differ after empty adaptation")
	}
}

func TestAdaptEOBNode(t *testing.T) {
	pre := NewModel()
	var c Counts
	tx, pt, ref, band, ctx := scan.TX8x8, PlaneY, Inter, 2, 1
	// 30 EOB decisions, 10 of them EOB; 20 ONE tokens.
	c.EOBBranch[tx][pt][ref][band][ctx] = 30
	c.Tokens[tx][pt][ref][band][ctx][EOBToken] = 10
	c.Tokens[tx][pt][ref][band][ctx][OneToken] = 20

	out := *pre
	Adapt(pre, &c, InterAfterKey, &out)
	p := pre.Probs[tx][pt][ref][band][ctx]
	q := out.Probs[tx][pt][ref][band][ctx]
	if want := prob.MergeProbs(p[0], [2]uint32{10, 20}, prob.CoefCountSat, prob.CoefMaxUpdateFactorAfterKey); q[0] != want {
		t.Errorf("EOB node = %d, want %d", q[0], want)
	}
	if want := prob.MergeProbs(p[1], [2]uint32{0, 20}, prob.CoefCountSat, prob.CoefMaxUpdateFactorAfterKey); q[1] != want {
		t.Errorf("ZERO node = %d, want %d", q[1], want)
	}
	if want := prob.MergeProbs(p[2], [2]uint32{20, 0}, prob.CoefCountSat, prob.CoefMaxUpdateFactorAfterKey); q[2] != want {
		t.Errorf("ONE node = %d, want %d", q[2], want)
	}
	for i := 3; i < NumNodes; i++ {
		if q[i] != p[i] {
			t.Errorf("node %d changed without counts", i)
		}
	}
}

func TestAdaptConvergence(t *testing.T) {
	m := NewModel()
	var c Counts
	tx, pt, ref, band, ctx := scan.TX4x4, PlaneUV, Intra, 4, 3
	c.EOBBranch[tx][pt][ref][band][ctx] = 100
	c.Tokens[tx][pt][ref][band][ctx][EOBToken] = 25
	c.Tokens[tx][pt][ref][band][ctx][ZeroToken] = 75
	for i := 0; i < 80; i++ {
		Adapt(m, &c, InterFrame, m)
		if err := m.Validate(); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}
	// P(EOB) = 0.25 -> 64, P(ZERO | not EOB) = 1 -> 255.
	p := m.Probs[tx][pt][ref][band][ctx]
	if d := int(p[0]) - 64; d < -2 || d > 2 {
		t.Errorf("EOB prob = %d, want 64±2", p[0])
	}
	if p[1] < 250 {
		t.Errorf("ZERO prob = %d, want near 255", p[1])
	}
}

func TestAdaptCDFsMonotone(t *testing.T) {
	m := NewModel()
	var c Counts
	for tx := range c.Tokens {
		for band := 0; band < scan.NumBands; band++ {
			for ctx := 0; ctx < scan.MaxContexts; ctx++ {
				for tok := 0; tok < NumTokens; tok++ {
					c.Tokens[tx][0][1][band][ctx][tok] = uint32((tok*7 + band*3 + ctx) % 13 * 50)
				}
				c.EOBBranch[tx][0][1][band][ctx] = 900
			}
		}
	}
	Adapt(m, &c, KeyFrame, m)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateFactor(t *testing.T) {
	if UpdateFactor(KeyFrame) != 112 || UpdateFactor(InterFrame) != 112 || UpdateFactor(InterAfterKey) != 128 {
		t.Errorf("factors = %d/%d/%d, want 112/112/128",
			UpdateFactor(KeyFrame), UpdateFactor(InterFrame), UpdateFactor(InterAfterKey))
	}
}
