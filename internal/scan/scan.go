// Package scan holds the per-transform-size position tables of the
// coefficient coder: scan orders, their causal neighbours, frequency bands
// and the entropy contexts shared between adjacent blocks.
//
// All tables are built once at init and are read-only afterwards.
package scan

import "fmt"

// TxSize is a square transform size.
type TxSize uint8

const (
	TX4x4 TxSize = iota
	TX8x8
	TX16x16
	TX32x32

	NumTxSizes = 4
)

// Width returns the transform width in coefficients.
func (t TxSize) Width() int { return 4 << t }

// Area returns the number of coefficients in the block.
func (t TxSize) Area() int { return 16 << (2 * t) }

// Units returns the block width in 4x4 units.
func (t TxSize) Units() int { return 1 << t }

// Valid reports whether t names a supported size.
func (t TxSize) Valid() bool { return t < NumTxSizes }

func (t TxSize) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TxSize(%d)", uint8(t))
	}
	w := t.Width()
	return fmt.Sprintf("%dx%d", w, w)
}

// TxType is the 2-D transform kind of a block. It selects the scan order.
type TxType uint8

const (
	DCTDCT   TxType = iota
	ADSTDCT         // ADST vertically, DCT horizontally
	DCTADST         // DCT vertically, ADST horizontally
	ADSTADST

	NumTxTypes = 4
)

// Valid reports whether t names a supported transform type.
func (t TxType) Valid() bool { return t < NumTxTypes }

// Kind is the shape of a scan.
type Kind uint8

const (
	Default Kind = iota // diagonal zigzag
	Row                 // raster, row by row
	Col                 // column by column
	numKinds
)

// KindOf returns the scan kind used for transform type t.
func KindOf(t TxType) Kind {
	switch t {
	case ADSTDCT:
		return Row
	case DCTADST:
		return Col
	default:
		return Default
	}
}

// Order is one scan order for one transform size.
type Order struct {
	// Scan maps scan position to raster index.
	Scan []int16
	// IScan maps raster index to scan position.
	IScan []int16
	// Neighbors holds two raster indices per scan position. Both precede
	// the position in scan order; position 0 has no neighbours and holds
	// zeros.
	Neighbors []int16
}

var orders [NumTxSizes][numKinds]Order

func init() {
	for tx := TxSize(0); tx < NumTxSizes; tx++ {
		for k := Kind(0); k < numKinds; k++ {
			orders[tx][k] = build(tx, k)
		}
		bands[tx] = buildBands(tx)
	}
}

// Get returns the scan order for a transform size and type.
func Get(tx TxSize, tt TxType) *Order {
	return &orders[tx][KindOf(tt)]
}

// GetKind returns the scan order of kind k for transform size tx.
func GetKind(tx TxSize, k Kind) *Order {
	return &orders[tx][k]
}

func build(tx TxSize, k Kind) Order {
	w := tx.Width()
	n := tx.Area()
	o := Order{
		Scan:      make([]int16, 0, n),
		IScan:     make([]int16, n),
		Neighbors: make([]int16, 2*n),
	}
	switch k {
	case Row:
		for i := 0; i < n; i++ {
			o.Scan = append(o.Scan, int16(i))
		}
	case Col:
		for c := 0; c < w; c++ {
			for r := 0; r < w; r++ {
				o.Scan = append(o.Scan, int16(r*w+c))
			}
		}
	default:
		for d := 0; d < 2*w-1; d++ {
			lo, hi := max(0, d-w+1), min(d, w-1)
			if d&1 == 0 {
				for r := hi; r >= lo; r-- {
					o.Scan = append(o.Scan, int16(r*w+d-r))
				}
			} else {
				for r := lo; r <= hi; r++ {
					o.Scan = append(o.Scan, int16(r*w+d-r))
				}
			}
		}
	}
	for pos, rc := range o.Scan {
		o.IScan[rc] = int16(pos)
	}

	for pos := 1; pos < n; pos++ {
		rc := int(o.Scan[pos])
		r, c := rc/w, rc%w
		above, left := rc-w, rc-1
		var a, b int
		switch {
		case r == 0:
			a, b = left, left
		case c == 0:
			a, b = above, above
		case k == Row:
			a, b = left, left
		case k == Col:
			a, b = above, above
		default:
			a, b = above, left
		}
		o.Neighbors[2*pos] = int16(a)
		o.Neighbors[2*pos+1] = int16(b)
	}
	return o
}
