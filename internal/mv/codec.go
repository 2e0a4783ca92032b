package mv

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
)

// Write codes v at precision p. It fails with ErrConfigMismatch when a
// component is out of range or finer than p allows.
func Write(w prob.Writer, m *Model, s prob.Strategy, v MV, p Precision) error {
	if err := Check(v, p); err != nil {
		return err
	}
	j := JointOf(v)
	prob.Write(w, s, JointTree, m.Joints[:], 0, m.JointCDF[:], int(j))
	if j.Vertical() {
		m.writeComponent(w, s, 0, v.Row, p)
	}
	if j.Horizontal() {
		m.writeComponent(w, s, 1, v.Col, p)
	}
	return nil
}

func (m *Model) writeComponent(w prob.Writer, s prob.Strategy, i int, v int32, p Precision) {
	c := &m.Comps[i]
	sign := 0
	if v < 0 {
		sign, v = 1, -v
	}
	cl, d, fr, hp := components(v - 1)

	w.WriteBit(sign, c.Sign)
	prob.Write(w, s, ClassTree, c.Classes[:], 0, m.ClassCDF[i][:], cl)
	if cl == 0 {
		prob.Write(w, s, Class0Tree, c.Class0[:], 0, m.Class0CDF[i][:], int(d))
	} else {
		for b := 0; b < cl+Class0Bits-1; b++ {
			w.WriteBit(int(d>>uint(b))&1, c.Bits[b])
		}
	}
	if p >= PrecisionLow {
		if cl == 0 {
			prob.Write(w, s, FPTree, c.Class0FP[d][:], 0, m.Class0FPCDF[i][d][:], int(fr))
		} else {
			prob.Write(w, s, FPTree, c.FP[:], 0, m.FPCDF[i][:], int(fr))
		}
	}
	if p == PrecisionHigh {
		hpProb := c.HP
		if cl == 0 {
			hpProb = c.Class0HP
		}
		w.WriteBit(int(hp), hpProb)
	}
}

// Read decodes a vector coded at precision p and counts it into counts
// unless that is nil.
func Read(r prob.Reader, m *Model, s prob.Strategy, p Precision, counts *Counts) (MV, error) {
	var v MV
	j := Joint(prob.Read(r, s, JointTree, m.Joints[:], 0, m.JointCDF[:]))
	if j.Vertical() {
		v.Row = m.readComponent(r, s, 0, p)
	}
	if j.Horizontal() {
		v.Col = m.readComponent(r, s, 1, p)
	}
	if r.Overrun() {
		return MV{}, fmt.Errorf("%w: coder ran past end of data", prob.ErrStreamCorrupt)
	}
	if !v.Valid() {
		return MV{}, fmt.Errorf("%w: motion vector %d,%d out of range", prob.ErrStreamCorrupt, v.Row, v.Col)
	}
	counts.IncMV(v, p)
	return v, nil
}

func (m *Model) readComponent(r prob.Reader, s prob.Strategy, i int, p Precision) int32 {
	c := &m.Comps[i]
	sign := r.ReadBit(c.Sign)
	cl := prob.Read(r, s, ClassTree, c.Classes[:], 0, m.ClassCDF[i][:])

	var d, mag int32
	if cl == 0 {
		d = int32(prob.Read(r, s, Class0Tree, c.Class0[:], 0, m.Class0CDF[i][:]))
	} else {
		for b := 0; b < cl+Class0Bits-1; b++ {
			d |= int32(r.ReadBit(c.Bits[b])) << uint(b)
		}
		mag = classBase(cl)
	}

	fr, hp := int32(3), int32(1)
	if p >= PrecisionLow {
		if cl == 0 {
			fr = int32(prob.Read(r, s, FPTree, c.Class0FP[d][:], 0, m.Class0FPCDF[i][d][:]))
		} else {
			fr = int32(prob.Read(r, s, FPTree, c.FP[:], 0, m.FPCDF[i][:]))
		}
	}
	if p == PrecisionHigh {
		hpProb := c.HP
		if cl == 0 {
			hpProb = c.Class0HP
		}
		hp = int32(r.ReadBit(hpProb))
	}

	mag += (d<<3 | fr<<1 | hp) + 1
	if sign != 0 {
		return -mag
	}
	return mag
}

// Cost returns the rate of coding v at precision p, in 1/512 bits. v must
// be codable at p.
func (m *Model) Cost(s prob.Strategy, v MV, p Precision) int {
	j := JointOf(v)
	cost := prob.Cost(s, JointTree, m.Joints[:], 0, m.JointCDF[:], int(j))
	if j.Vertical() {
		cost += m.componentCost(s, 0, v.Row, p)
	}
	if j.Horizontal() {
		cost += m.componentCost(s, 1, v.Col, p)
	}
	return cost
}

func (m *Model) componentCost(s prob.Strategy, i int, v int32, p Precision) int {
	c := &m.Comps[i]
	sign := 0
	if v < 0 {
		sign, v = 1, -v
	}
	cl, d, fr, hp := components(v - 1)

	cost := prob.BitCost(sign, c.Sign)
	cost += prob.Cost(s, ClassTree, c.Classes[:], 0, m.ClassCDF[i][:], cl)
	if cl == 0 {
		cost += prob.Cost(s, Class0Tree, c.Class0[:], 0, m.Class0CDF[i][:], int(d))
	} else {
		for b := 0; b < cl+Class0Bits-1; b++ {
			cost += prob.BitCost(int(d>>uint(b))&1, c.Bits[b])
		}
	}
	if p >= PrecisionLow {
		if cl == 0 {
			cost += prob.Cost(s, FPTree, c.Class0FP[d][:], 0, m.Class0FPCDF[i][d][:], int(fr))
		} else {
			cost += prob.Cost(s, FPTree, c.FP[:], 0, m.FPCDF[i][:], int(fr))
		}
	}
	if p == PrecisionHigh {
		hpProb := c.HP
		if cl == 0 {
			hpProb = c.Class0HP
		}
		cost += prob.BitCost(int(hp), hpProb)
	}
	return cost
}
