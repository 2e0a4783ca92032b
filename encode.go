package entropy

import (
	"fmt"

	"github.com/deepteams/entropy/internal/bitio"
	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/mv"
	"github.com/deepteams/entropy/internal/pool"
	"github.com/deepteams/entropy/internal/scan"
	"github.com/deepteams/entropy/internal/xlog"
)

// symbol is one coded unit of a tile in stream order: either the tokens of
// a block up to token index end, or a motion vector.
type symbol struct {
	end  int
	isMV bool
	mv   MV
	prec Precision
}

// TileEncoder codes the blocks and motion vectors of one tile. Symbols are
// recorded first and written by Finish, so their rate can be measured
// before anything is emitted. It is not safe for concurrent use.
type TileEncoder struct {
	opts   Options
	model  *Model
	counts Counts
	ctx    contexts

	tokens    coeff.TokenBuffer
	tokenizer *coeff.Tokenizer
	trellis   *coeff.Optimizer
	symbols   []symbol
	mvRate    int
	blocks    int
}

// NewTileEncoder returns an encoder for a tile of size t. It codes with a
// private copy of m, so m may be shared by the encoders of other tiles.
func NewTileEncoder(m *Model, t Tile, opts *Options) (*TileEncoder, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	e := &TileEncoder{
		opts:  o,
		model: m.Clone(),
		ctx:   newContexts(t),
	}
	e.tokenizer = coeff.NewTokenizer(&e.counts.Coeff, o.BitDepth)
	return e, nil
}

// OptimizeBlock runs the rate-distortion trellis over levels, the quantized
// values of the original coefficients coeffs. Levels only move toward zero
// and are updated in place. dqcoeff receives the reconstructed values
// unless it is nil. lambda is the base rate multiplier; it is weighted per
// plane and reference type. The returned end of block is the new one.
//
// OptimizeBlock does not code anything: EncodeBlock must follow with the
// same parameters.
func (e *TileEncoder) OptimizeBlock(p *BlockParams, coeffs, levels, dqcoeff []int32, lambda int64) (int, error) {
	b := p.block()
	above, left, err := e.ctx.at(p)
	if err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if dqcoeff == nil {
		dqcoeff = pool.GetBlock(b.Tx.Area())
		defer pool.PutBlock(dqcoeff)
	}
	if e.trellis == nil {
		costs := coeff.NewCosts(&e.model.Coeff, e.opts.Strategy, e.opts.BitDepth)
		e.trellis = coeff.NewOptimizer(costs, e.opts.TrellisShortcut)
	}
	ctx0 := scan.EntropyContext(b.Tx, above, left)
	return e.trellis.Optimize(&b, ctx0, coeffs, levels, dqcoeff, coeff.PlaneLambda(lambda, b.Plane, b.Ref))
}

// EncodeBlock records the levels of one block, indexed by raster position,
// and returns its end of block. Blocks must be coded in the order the
// decoder will read them.
func (e *TileEncoder) EncodeBlock(p *BlockParams, levels []int32) (int, error) {
	b := p.block()
	above, left, err := e.ctx.at(p)
	if err != nil {
		return 0, err
	}
	eob, err := e.tokenizer.Tokenize(&e.tokens, &b, above, left, levels)
	if err != nil {
		return 0, fmt.Errorf("block %d at %d,%d: %w", e.blocks, p.Col, p.Row, err)
	}
	e.symbols = append(e.symbols, symbol{end: e.tokens.Len()})
	e.blocks++
	return eob, nil
}

// EncodeMV records a motion vector at precision p.
func (e *TileEncoder) EncodeMV(v MV, p Precision) error {
	if err := e.opts.checkPrecision(p); err != nil {
		return err
	}
	if err := mv.Check(v, p); err != nil {
		return err
	}
	e.counts.MV.IncMV(v, p)
	e.mvRate += e.model.MV.Cost(e.opts.Strategy, v, p)
	e.symbols = append(e.symbols, symbol{isMV: true, mv: v, prec: p})
	return nil
}

// Rate returns the estimated size of the recorded symbols in 1/512 bits.
func (e *TileEncoder) Rate() int {
	return e.tokens.Cost(&e.model.Coeff, e.opts.Strategy) + e.mvRate
}

// Counts returns the statistics of the recorded symbols, for Adapt.
func (e *TileEncoder) Counts() *Counts { return &e.counts }

// Finish writes every recorded symbol and returns the tile data. The
// encoder must not be used afterwards.
func (e *TileEncoder) Finish() []byte {
	scratch := pool.Get(e.Rate()/(8*512) + 16)
	w := bitio.NewWriterBuffer(scratch)
	from := 0
	for _, s := range e.symbols {
		if s.isMV {
			// Checked by EncodeMV.
			_ = mv.Write(w, &e.model.MV, e.opts.Strategy, s.mv, s.prec)
			continue
		}
		e.tokens.EmitRange(w, &e.model.Coeff, e.opts.Strategy, from, s.end)
		from = s.end
	}
	out := w.Finish()
	data := make([]byte, len(out))
	copy(data, out)
	pool.Put(out)
	xlog.Printf(e.opts.Logger, "entropy: encoded tile: %d blocks, %d tokens, %d symbols, %d bytes",
		e.blocks, e.tokens.Len(), len(e.symbols), len(data))
	return data
}
