package coeff

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// PlaneType separates luma from chroma statistics.
type PlaneType uint8

const (
	PlaneY PlaneType = iota
	PlaneUV

	PlaneTypes = 2
)

// RefType separates intra from inter blocks.
type RefType uint8

const (
	Intra RefType = iota
	Inter

	RefTypes = 2
)

// qmBits is the precision of quantization matrix weights; 1<<qmBits is
// unity.
const qmBits = 5

// Dequant holds the dequantization steps of one block.
type Dequant struct {
	DC, AC int32
	// QM optionally weights the step per raster position.
	QM []uint8
}

// Step returns the dequantization step at scan position pos, raster rc.
func (d *Dequant) Step(pos, rc int) int32 {
	dqv := d.AC
	if pos == 0 {
		dqv = d.DC
	}
	if d.QM != nil {
		dqv = (int32(d.QM[rc])*dqv + 1<<(qmBits-1)) >> qmBits
	}
	return dqv
}

// Block describes one transform block to code.
type Block struct {
	Tx      scan.TxSize
	Type    scan.TxType
	Plane   PlaneType
	Ref     RefType
	Dequant Dequant
	// MaxEOB limits the coded positions. Zero means the whole block.
	MaxEOB int
}

// Validate checks the block parameters against the model dimensions.
func (b *Block) Validate() error {
	switch {
	case !b.Tx.Valid():
		return fmt.Errorf("%w: transform size %v", prob.ErrConfigMismatch, b.Tx)
	case !b.Type.Valid():
		return fmt.Errorf("%w: transform type %d", prob.ErrConfigMismatch, b.Type)
	case b.Plane >= PlaneTypes:
		return fmt.Errorf("%w: plane type %d", prob.ErrConfigMismatch, b.Plane)
	case b.Ref >= RefTypes:
		return fmt.Errorf("%w: ref type %d", prob.ErrConfigMismatch, b.Ref)
	case b.MaxEOB < 0 || b.MaxEOB > b.Tx.Area():
		return fmt.Errorf("%w: max eob %d for %v", prob.ErrConfigMismatch, b.MaxEOB, b.Tx)
	case b.Dequant.DC <= 0 || b.Dequant.AC <= 0:
		return fmt.Errorf("%w: dequant step %d/%d", prob.ErrConfigMismatch, b.Dequant.DC, b.Dequant.AC)
	case b.Dequant.QM != nil && len(b.Dequant.QM) < b.Tx.Area():
		return fmt.Errorf("%w: quant matrix has %d entries, want %d", prob.ErrConfigMismatch, len(b.Dequant.QM), b.Tx.Area())
	}
	return nil
}

func (b *Block) maxEOB() int {
	if b.MaxEOB == 0 {
		return b.Tx.Area()
	}
	return b.MaxEOB
}

// shift is the extra down-scaling of 32x32 coefficients.
func (b *Block) shift() uint {
	if b.Tx == scan.TX32x32 {
		return 1
	}
	return 0
}

// dequantize returns the magnitude the decoder reconstructs for level at
// scan position pos.
func (b *Block) dequantize(level int32, pos, rc int) int32 {
	return int32((int64(level) * int64(b.Dequant.Step(pos, rc))) >> b.shift())
}

// MaxCoeff returns the largest dequantized magnitude representable at the
// given bit depth.
func MaxCoeff(bitDepth int) int32 {
	return 1<<(bitDepth+7) - 1
}

// ValidBitDepth reports whether the coefficient coder supports bitDepth.
func ValidBitDepth(bitDepth int) bool {
	return bitDepth == 8 || bitDepth == 10 || bitDepth == 12
}
