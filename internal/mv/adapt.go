package mv

import "github.com/deepteams/entropy/internal/prob"

// Adapt merges counts into pre and stores the result, with re-derived
// CDFs, in out. out may be pre. The high-precision bits are only adapted
// when allowHP is set, matching the frames that coded them.
//
// Adapt panics if the merged model violates its invariants.
func Adapt(pre *Model, counts *Counts, allowHP bool, out *Model) {
	prob.TreeMergeProbs(JointTree, pre.Joints[:], counts.Joints[:], out.Joints[:])
	for i := range pre.Comps {
		p, o, c := &pre.Comps[i], &out.Comps[i], &counts.Comps[i]

		o.Sign = prob.ModeMVMergeProbs(p.Sign, c.Sign)
		prob.TreeMergeProbs(ClassTree, p.Classes[:], c.Classes[:], o.Classes[:])
		prob.TreeMergeProbs(Class0Tree, p.Class0[:], c.Class0[:], o.Class0[:])
		for b := range p.Bits {
			o.Bits[b] = prob.ModeMVMergeProbs(p.Bits[b], c.Bits[b])
		}
		for d := range p.Class0FP {
			prob.TreeMergeProbs(FPTree, p.Class0FP[d][:], c.Class0FP[d][:], o.Class0FP[d][:])
		}
		prob.TreeMergeProbs(FPTree, p.FP[:], c.FP[:], o.FP[:])
		if allowHP {
			o.Class0HP = prob.ModeMVMergeProbs(p.Class0HP, c.Class0HP)
			o.HP = prob.ModeMVMergeProbs(p.HP, c.HP)
		} else {
			o.Class0HP, o.HP = p.Class0HP, p.HP
		}
	}
	out.UpdateCDFs()
	if err := out.Validate(); err != nil {
		panic(err)
	}
}
