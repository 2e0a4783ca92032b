package entropy

import (
	"fmt"

	"github.com/deepteams/entropy/internal/bitio"
	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/mv"
	"github.com/deepteams/entropy/internal/xlog"
)

// TileDecoder reads the blocks and motion vectors of one tile in the order
// they were encoded. It is not safe for concurrent use.
type TileDecoder struct {
	opts   Options
	model  *Model
	counts Counts
	ctx    contexts

	r      *bitio.Reader
	coeffs *coeff.Decoder
	blocks int
	err    error
}

// NewTileDecoder returns a decoder for a tile of size t coded in data. It
// decodes with a private copy of m.
func NewTileDecoder(m *Model, t Tile, data []byte, opts *Options) (*TileDecoder, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	d := &TileDecoder{
		opts:  o,
		model: m.Clone(),
		ctx:   newContexts(t),
		r:     bitio.NewReader(data),
	}
	d.coeffs = coeff.NewDecoder(&d.model.Coeff, &d.counts.Coeff, o.Strategy, o.BitDepth)
	return d, nil
}

// DecodeBlock decodes one block into out, indexed by raster position, and
// returns its end of block. After ErrStreamCorrupt every further call fails
// with the same error.
func (d *TileDecoder) DecodeBlock(p *BlockParams, out []int32) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	b := p.block()
	above, left, err := d.ctx.at(p)
	if err != nil {
		return 0, err
	}
	eob, err := d.coeffs.DecodeBlock(d.r, &b, above, left, out)
	if err != nil {
		return 0, d.fail(fmt.Errorf("block %d at %d,%d: %w", d.blocks, p.Col, p.Row, err))
	}
	d.blocks++
	return eob, nil
}

// DecodeMV decodes a motion vector coded at precision p.
func (d *TileDecoder) DecodeMV(p Precision) (MV, error) {
	if d.err != nil {
		return MV{}, d.err
	}
	if err := d.opts.checkPrecision(p); err != nil {
		return MV{}, err
	}
	v, err := mv.Read(d.r, &d.model.MV, d.opts.Strategy, p, &d.counts.MV)
	if err != nil {
		return MV{}, d.fail(err)
	}
	return v, nil
}

// fail latches stream errors; configuration errors leave the decoder
// usable.
func (d *TileDecoder) fail(err error) error {
	if isStreamError(err) {
		d.err = err
		xlog.Printf(d.opts.Logger, "entropy: tile decode stopped after %d blocks: %v", d.blocks, err)
	}
	return err
}

// Counts returns the statistics of the decoded symbols, for Adapt.
func (d *TileDecoder) Counts() *Counts { return &d.counts }
