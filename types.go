package entropy

import (
	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/mv"
	"github.com/deepteams/entropy/internal/prob"
	"github.com/deepteams/entropy/internal/scan"
)

// Strategy selects how symbols reach the range coder.
type Strategy = prob.Strategy

const (
	// StrategyTree codes each binary decision of a coding tree.
	StrategyTree = prob.StrategyTree
	// StrategyMultiSymbol codes whole symbols with CDFs.
	StrategyMultiSymbol = prob.StrategyMultiSymbol
)

// Transform parameters of a block.
type (
	TxSize = scan.TxSize
	TxType = scan.TxType
)

const (
	TX4x4   = scan.TX4x4
	TX8x8   = scan.TX8x8
	TX16x16 = scan.TX16x16
	TX32x32 = scan.TX32x32
)

const (
	DCTDCT   = scan.DCTDCT
	ADSTDCT  = scan.ADSTDCT
	DCTADST  = scan.DCTADST
	ADSTADST = scan.ADSTADST
)

// RefType separates intra from inter predicted blocks.
type RefType = coeff.RefType

const (
	Intra = coeff.Intra
	Inter = coeff.Inter
)

// Dequant holds the DC and AC steps of a block and an optional
// quantization matrix indexed by raster position.
type Dequant = coeff.Dequant

// FrameType selects the update factor of coefficient adaptation.
type FrameType = coeff.FrameType

const (
	KeyFrame      = coeff.KeyFrame
	InterFrame    = coeff.InterFrame
	InterAfterKey = coeff.InterAfterKey
)

// MV is a motion vector in eighth pels.
type MV = mv.MV

// Precision is the finest fraction a motion vector is coded with.
type Precision = mv.Precision

const (
	PrecisionInteger = mv.PrecisionInteger
	PrecisionLow     = mv.PrecisionLow
	PrecisionHigh    = mv.PrecisionHigh
)

// MaxMVMagnitude bounds each motion vector component.
const MaxMVMagnitude = mv.MaxMagnitude

// MaxCoeff returns the largest coefficient magnitude codable at bitDepth.
func MaxCoeff(bitDepth int) int32 { return coeff.MaxCoeff(bitDepth) }
