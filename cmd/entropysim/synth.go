package main

import (
	"math/rand"

	"github.com/deepteams/entropy"
)

// symbol is one coded unit of a synthetic tile.
type symbol struct {
	isMV bool
	mv   entropy.MV
	prec entropy.Precision

	params entropy.BlockParams
	coeffs []int32
	levels []int32
}

// synth draws tiles whose statistics loosely resemble real residuals:
// energy decays along the scan, most levels are small, and motion vectors
// cluster around zero.
type synth struct {
	rng  *rand.Rand
	prec entropy.Precision
	dq   entropy.Dequant
}

func newSynth(seed int64, q int32, hp bool) *synth {
	s := &synth{
		rng:  rand.New(rand.NewSource(seed)),
		prec: entropy.PrecisionLow,
		dq:   entropy.Dequant{DC: q, AC: q + q/3},
	}
	if hp {
		s.prec = entropy.PrecisionHigh
	}
	return s
}

func (s *synth) tile(t entropy.Tile, inter bool) []symbol {
	ref := entropy.Intra
	if inter {
		ref = entropy.Inter
	}
	var syms []symbol
	for row := 0; row < t.Rows; row += 2 {
		for col := 0; col < t.Cols; col += 2 {
			if inter {
				syms = append(syms, symbol{isMV: true, mv: s.vector(), prec: s.prec})
			}
			tx := entropy.TX8x8
			switch s.rng.Intn(8) {
			case 0:
				tx = entropy.TX4x4
			case 1:
				if row%4 == 0 && col%4 == 0 {
					tx = entropy.TX16x16
				}
			}
			syms = append(syms, s.block(entropy.BlockParams{
				Col: col, Row: row, Tx: tx, Type: entropy.TxType(s.rng.Intn(4)), Ref: ref, Dequant: s.dq,
			}))
		}
	}
	cols, rows := (t.Cols+1)/2, (t.Rows+1)/2
	for plane := 1; plane < entropy.NumPlanes; plane++ {
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				syms = append(syms, s.block(entropy.BlockParams{
					Plane: plane, Col: col, Row: row, Tx: entropy.TX4x4, Ref: ref, Dequant: s.dq,
				}))
			}
		}
	}
	return syms
}

// block fills coefficients in raster order with a magnitude falling off
// with the distance from DC, and quantizes them by rounding.
func (s *synth) block(p entropy.BlockParams) symbol {
	w := 4 << p.Tx
	sym := symbol{params: p, coeffs: make([]int32, w*w), levels: make([]int32, w*w)}
	for r := 0; r < w; r++ {
		for c := 0; c < w; c++ {
			amp := int32(1500 / (1 + 2*r + 2*c))
			if amp < 2 || s.rng.Intn(4) == 0 {
				continue
			}
			v := s.rng.Int31n(amp)
			step := s.dq.AC
			if r == 0 && c == 0 {
				step = s.dq.DC
			}
			q := (v + step/2) / step
			if s.rng.Intn(2) == 0 {
				v, q = -v, -q
			}
			sym.coeffs[r*w+c] = v
			sym.levels[r*w+c] = q
		}
	}
	return sym
}

func (s *synth) vector() entropy.MV {
	comp := func() int32 {
		if s.rng.Intn(4) == 0 {
			return 0
		}
		v := 1 + int32(s.rng.ExpFloat64()*40)
		if v > entropy.MaxMVMagnitude {
			v = entropy.MaxMVMagnitude - 1
		}
		if s.prec == entropy.PrecisionLow {
			v = (v + 1) &^ 1
		}
		if s.rng.Intn(2) == 0 {
			v = -v
		}
		return v
	}
	return entropy.MV{Row: comp(), Col: comp()}
}
