package coeff

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// planeRDMult weights the encoder multiplier per [ref][plane].
var planeRDMult = [RefTypes][PlaneTypes]int64{{8, 7}, {8, 5}}

// PlaneLambda derives the trellis multiplier of a plane from the encoder's
// base rate-distortion multiplier.
func PlaneLambda(base int64, plane PlaneType, ref RefType) int64 {
	return base * planeRDMult[ref][plane] >> 1
}

const infCost = int64(1) << 62

// candidate is one level choice at a trellis node.
type candidate struct {
	level int32 // magnitude
	dq    int32 // signed dequantized value
	dist  int64
	rate  int // extra bits and sign
	valid bool

	// cost is the best cost of the block from this node on, excluding the
	// rate of the node's own token.
	cost int64
	// next is the chosen candidate at the following node, or -1 when the
	// block ends after this node.
	next int8
}

// node is a scan position whose input level is non-zero.
type node struct {
	pos  int
	rc   int
	neg  bool
	cand [2]candidate
}

// Optimizer runs the rate-distortion trellis over quantized blocks. It
// holds scratch memory and is not safe for concurrent use.
type Optimizer struct {
	costs    *Costs
	shortcut bool

	nodes    []node
	canEmpty []bool
	cache    [1024]uint8
	zsuf     [1025]int64 // distortion of zeroing every position from p on
	input    [1024]int32
}

// NewOptimizer returns an optimizer using the rates in c. With shortcut
// set, the lower candidate of a position is only tried when the input
// level is small and its rounding error lies in a narrow window; this is
// faster and rarely worse.
func NewOptimizer(c *Costs, shortcut bool) *Optimizer {
	return &Optimizer{costs: c, shortcut: shortcut}
}

// SetCosts replaces the rate tables, e.g. after the model was adapted.
func (o *Optimizer) SetCosts(c *Costs) { o.costs = c }

// Optimize lowers levels of qcoeff toward zero where that reduces
// lambda*rate + distortion, measured against the original coefficients
// coeff. All slices are indexed by raster position. No level is increased
// or lowered by more than one, so the end of block never grows. dqcoeff
// receives the values the decoder will reconstruct. The returned end of
// block is the new one.
//
// The search approximates neighbour contexts, so the result is re-costed
// exactly and the input is kept whenever it is not more expensive.
func (o *Optimizer) Optimize(b *Block, ctx0 int, coeff, qcoeff, dqcoeff []int32, lambda int64) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	area := b.Tx.Area()
	if len(coeff) < area || len(qcoeff) < area || len(dqcoeff) < area {
		return 0, fmt.Errorf("%w: trellis buffers shorter than %d", prob.ErrConfigMismatch, area)
	}
	if lambda < 0 {
		lambda = 0
	}
	eob := endOfBlock(b, qcoeff)
	if eob == 0 {
		DequantizeBlock(b, qcoeff, dqcoeff)
		return 0, nil
	}
	copy(o.input[:area], qcoeff[:area])

	o.build(b, coeff, qcoeff, eob)
	start := o.search(b, ctx0, lambda)

	order := scan.Get(b.Tx, b.Type)
	for pos := 0; pos < eob; pos++ {
		qcoeff[order.Scan[pos]] = 0
	}
	k := start
	for n := 0; k >= 0 && n < len(o.nodes); n++ {
		nd := &o.nodes[n]
		cd := &nd.cand[k]
		if cd.level != 0 {
			v := cd.level
			if nd.neg {
				v = -v
			}
			qcoeff[nd.rc] = v
		}
		k = int(cd.next)
	}

	if o.RDCost(b, ctx0, coeff, qcoeff, lambda) >= o.RDCost(b, ctx0, coeff, o.input[:area], lambda) {
		copy(qcoeff[:area], o.input[:area])
	}
	DequantizeBlock(b, qcoeff, dqcoeff)
	return endOfBlock(b, qcoeff), nil
}

// build prepares the nodes, the energy cache and the zeroing distortions
// for the positions before eob.
func (o *Optimizer) build(b *Block, coeff, qcoeff []int32, eob int) {
	order := scan.Get(b.Tx, b.Type)
	shift := b.shift()
	o.nodes = o.nodes[:0]

	o.zsuf[eob] = 0
	for pos := eob - 1; pos >= 0; pos-- {
		o.zsuf[pos] = o.zsuf[pos+1] + sqDist(0, coeff[order.Scan[pos]], shift)
	}

	for pos := 0; pos < eob; pos++ {
		rc := int(order.Scan[pos])
		q := qcoeff[rc]
		mag := q
		if mag < 0 {
			mag = -mag
		}
		o.cache[rc] = scan.Energy(TokenOf(mag))
		if q == 0 {
			continue
		}
		nd := node{pos: pos, rc: rc, neg: q < 0}
		nd.cand[0] = o.candidate(b, coeff[rc], mag, pos, rc, nd.neg)

		dqv := int64(b.Dequant.Step(pos, rc))
		c := int64(coeff[rc])
		if c < 0 {
			c = -c
		}
		c <<= shift
		if !o.shortcut || (mag <= 3 && int64(mag)*dqv > c && int64(mag)*dqv < c+dqv) {
			nd.cand[1] = o.candidate(b, coeff[rc], mag-1, pos, rc, nd.neg)
		}
		o.nodes = append(o.nodes, nd)
	}

	n := len(o.nodes)
	if cap(o.canEmpty) < n+1 {
		o.canEmpty = make([]bool, n+1)
	}
	o.canEmpty = o.canEmpty[:n+1]
	o.canEmpty[n] = true
	for i := n - 1; i >= 0; i-- {
		c1 := &o.nodes[i].cand[1]
		o.canEmpty[i] = o.canEmpty[i+1] && c1.valid && c1.level == 0
	}
}

func (o *Optimizer) candidate(b *Block, coeff, level int32, pos, rc int, neg bool) candidate {
	var dq int32
	if level != 0 {
		dq = b.dequantize(level, pos, rc)
		if neg {
			dq = -dq
		}
	}
	return candidate{
		level: level,
		dq:    dq,
		dist:  sqDist(dq, coeff, b.shift()),
		rate:  o.costs.levelCost(level, b.Tx),
		valid: true,
		cost:  infCost,
	}
}

// search runs the backward pass and returns the candidate chosen at the
// first node, or -1 when coding EOB at position 0 is cheapest.
func (o *Optimizer) search(b *Block, ctx0 int, lambda int64) int {
	order := scan.Get(b.Tx, b.Type)
	bands := scan.Bands(b.Tx)
	maxEOB := b.maxEOB()
	ctxAt := func(pos int) int {
		if pos == 0 {
			return ctx0
		}
		return scan.Context(order.Neighbors, o.cache[:], pos)
	}

	for n := len(o.nodes) - 1; n >= 0; n-- {
		nd := &o.nodes[n]
		for k := range nd.cand {
			cd := &nd.cand[k]
			if !cd.valid {
				continue
			}
			saved := o.cache[nd.rc]
			o.cache[nd.rc] = scan.Energy(TokenOf(cd.level))

			best, next := infCost, int8(-2)
			if n+1 < len(o.nodes) {
				nx := &o.nodes[n+1]
				noEOB := cd.level == 0
				rate := 0
				for p := nd.pos + 1; p < nx.pos; p++ {
					rate += o.costs.Token(b, int(bands[p]), ctxAt(p), noEOB, ZeroToken)
					noEOB = true
				}
				run := lambda*int64(rate) + (o.zsuf[nd.pos+1]-o.zsuf[nx.pos])<<prob.CostShift
				ctx := ctxAt(nx.pos)
				for m := range nx.cand {
					s := &nx.cand[m]
					if !s.valid || s.cost >= infCost {
						continue
					}
					tok := o.costs.Token(b, int(bands[nx.pos]), ctx, noEOB, TokenOf(s.level))
					if j := run + lambda*int64(tok) + s.cost; j < best {
						best, next = j, int8(m)
					}
				}
			}
			if cd.level != 0 && o.canEmpty[n+1] {
				j := o.zsuf[nd.pos+1] << prob.CostShift
				if p := nd.pos + 1; p < maxEOB {
					j += lambda * int64(o.costs.Token(b, int(bands[p]), ctxAt(p), false, EOBToken))
				}
				if j < best {
					best, next = j, -1
				}
			}
			o.cache[nd.rc] = saved

			if next == -2 {
				cd.cost = infCost
				continue
			}
			cd.cost = lambda*int64(cd.rate) + cd.dist<<prob.CostShift + best
			cd.next = next
		}
	}

	first := &o.nodes[0]
	noEOB := false
	rate := 0
	for p := 0; p < first.pos; p++ {
		rate += o.costs.Token(b, int(bands[p]), ctxAt(p), noEOB, ZeroToken)
		noEOB = true
	}
	run := lambda*int64(rate) + (o.zsuf[0]-o.zsuf[first.pos])<<prob.CostShift
	ctx := ctxAt(first.pos)
	best, start := infCost, -1
	for m := range first.cand {
		s := &first.cand[m]
		if !s.valid || s.cost >= infCost {
			continue
		}
		tok := o.costs.Token(b, int(bands[first.pos]), ctx, noEOB, TokenOf(s.level))
		if j := run + lambda*int64(tok) + s.cost; j < best {
			best, start = j, m
		}
	}
	if o.canEmpty[0] {
		j := o.zsuf[0]<<prob.CostShift + lambda*int64(o.costs.Token(b, int(bands[0]), ctx0, false, EOBToken))
		if j < best {
			start = -1
		}
	}
	return start
}

// RDCost returns lambda*rate + distortion of coding levels exactly, with
// the distortion measured against coeff over the coded positions.
func (o *Optimizer) RDCost(b *Block, ctx0 int, coeff, levels []int32, lambda int64) int64 {
	order := scan.Get(b.Tx, b.Type)
	shift := b.shift()
	var dist int64
	for pos := 0; pos < b.maxEOB(); pos++ {
		rc := int(order.Scan[pos])
		dist += sqDist(signedDequant(b, levels[rc], pos, rc), coeff[rc], shift)
	}
	rate := o.costs.BlockRate(b, ctx0, levels)
	return lambda*int64(rate) + dist<<prob.CostShift
}

// DequantizeBlock writes the values the decoder reconstructs for levels
// into dqcoeff. Both are indexed by raster position.
func DequantizeBlock(b *Block, levels, dqcoeff []int32) {
	order := scan.Get(b.Tx, b.Type)
	area := b.Tx.Area()
	clear(dqcoeff[:area])
	for pos := 0; pos < b.maxEOB(); pos++ {
		rc := int(order.Scan[pos])
		dqcoeff[rc] = signedDequant(b, levels[rc], pos, rc)
	}
}

func signedDequant(b *Block, level int32, pos, rc int) int32 {
	switch {
	case level > 0:
		return b.dequantize(level, pos, rc)
	case level < 0:
		return -b.dequantize(-level, pos, rc)
	}
	return 0
}

func sqDist(dq, coeff int32, shift uint) int64 {
	d := (int64(dq) - int64(coeff)) << shift
	return d * d
}
