package entropy

import (
	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/mv"
	"github.com/deepteams/entropy/internal/xlog"
)

// Adapt returns the frame context for the next frame: pre merged with the
// statistics counts collected while coding a frame of type ft with pre.
// When several tiles were coded, counts must be their sum, as returned by
// EncodeTiles and DecodeTiles. pre is not modified.
//
// Adapt panics if the merged model violates its invariants; that cannot
// happen for any counts.
func Adapt(pre *Model, counts *Counts, ft FrameType, opts *Options) (*Model, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	out := pre.Clone()
	coeff.Adapt(&pre.Coeff, &counts.Coeff, ft, &out.Coeff)
	mv.Adapt(&pre.MV, &counts.MV, o.AllowHighPrecisionMV, &out.MV)

	if o.Logger != nil {
		xlog.Printf(o.Logger, "entropy: adapting after %d tokens", counts.Coeff.Total())
		xlog.Diff(o.Logger, "entropy: coefficient probabilities", pre.Coeff.Probs, out.Coeff.Probs)
		xlog.Diff(o.Logger, "entropy: motion vector probabilities", mvProbs(&pre.MV), mvProbs(&out.MV))
	}
	return out, nil
}

// mvProbs strips the derived CDFs so that logged differences show only the
// merged probabilities.
func mvProbs(m *mv.Model) mv.Model {
	return mv.Model{Joints: m.Joints, Comps: m.Comps}
}
