package entropy

import (
	"fmt"

	"github.com/deepteams/entropy/internal/coeff"
)

// NumPlanes is the number of colour planes: luma then two chroma planes.
const NumPlanes = 3

// Tile is the area of one tile in 4x4 luma units. Chroma planes are
// subsampled by two in both directions.
type Tile struct {
	Cols, Rows int
}

// planeSize returns the size of plane in 4x4 units.
func (t Tile) planeSize(plane int) (cols, rows int) {
	if plane == 0 {
		return t.Cols, t.Rows
	}
	return (t.Cols + 1) >> 1, (t.Rows + 1) >> 1
}

func (t Tile) validate() error {
	if t.Cols <= 0 || t.Rows <= 0 {
		return fmt.Errorf("%w: tile %dx%d", ErrConfigMismatch, t.Cols, t.Rows)
	}
	return nil
}

// BlockParams locates and describes one transform block of a tile.
type BlockParams struct {
	// Plane is 0 for luma, 1 or 2 for chroma.
	Plane int
	// Col and Row address the top-left 4x4 unit of the block within its
	// plane of the tile.
	Col, Row int

	Tx      TxSize
	Type    TxType
	Ref     RefType
	Dequant Dequant
	// MaxEOB limits the coded positions. Zero means the whole block.
	MaxEOB int
}

func (p *BlockParams) block() coeff.Block {
	pt := coeff.PlaneY
	if p.Plane != 0 {
		pt = coeff.PlaneUV
	}
	return coeff.Block{
		Tx:      p.Tx,
		Type:    p.Type,
		Plane:   pt,
		Ref:     p.Ref,
		Dequant: p.Dequant,
		MaxEOB:  p.MaxEOB,
	}
}

// contexts holds the non-zero flags along the top and left edges of every
// plane, one per 4x4 unit. Blocks read the flags of their neighbours and
// overwrite them with their own.
type contexts struct {
	tile  Tile
	above [NumPlanes][]uint8
	left  [NumPlanes][]uint8
}

func newContexts(t Tile) contexts {
	c := contexts{tile: t}
	for p := range NumPlanes {
		cols, rows := t.planeSize(p)
		c.above[p] = make([]uint8, cols)
		c.left[p] = make([]uint8, rows)
	}
	return c
}

// at returns the context slices starting at the block. Units past the tile
// edge are cut off.
func (c *contexts) at(p *BlockParams) (above, left []uint8, err error) {
	if p.Plane < 0 || p.Plane >= NumPlanes {
		return nil, nil, fmt.Errorf("%w: plane %d", ErrConfigMismatch, p.Plane)
	}
	cols, rows := c.tile.planeSize(p.Plane)
	if p.Col < 0 || p.Col >= cols || p.Row < 0 || p.Row >= rows {
		return nil, nil, fmt.Errorf("%w: block at %d,%d outside plane %d of %dx%d units",
			ErrConfigMismatch, p.Col, p.Row, p.Plane, cols, rows)
	}
	return c.above[p.Plane][p.Col:], c.left[p.Plane][p.Row:], nil
}
