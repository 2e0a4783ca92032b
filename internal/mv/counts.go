package mv

// ComponentCounts holds the statistics of one vector component.
type ComponentCounts struct {
	Sign     [2]uint32
	Classes  [NumClasses]uint32
	Class0   [Class0Size]uint32
	Bits     [OffsetBits][2]uint32
	Class0FP [Class0Size][FPSize]uint32
	FP       [FPSize]uint32
	Class0HP [2]uint32
	HP       [2]uint32
}

// Counts accumulates motion vector statistics between adaptations.
type Counts struct {
	Joints [NumJoints]uint32
	Comps  [2]ComponentCounts
}

// Add accumulates o into c.
func (c *Counts) Add(o *Counts) {
	for j := range c.Joints {
		c.Joints[j] += o.Joints[j]
	}
	for i := range c.Comps {
		a, b := &c.Comps[i], &o.Comps[i]
		add(a.Sign[:], b.Sign[:])
		add(a.Classes[:], b.Classes[:])
		add(a.Class0[:], b.Class0[:])
		for k := range a.Bits {
			add(a.Bits[k][:], b.Bits[k][:])
		}
		for k := range a.Class0FP {
			add(a.Class0FP[k][:], b.Class0FP[k][:])
		}
		add(a.FP[:], b.FP[:])
		add(a.Class0HP[:], b.Class0HP[:])
		add(a.HP[:], b.HP[:])
	}
}

func add(dst, src []uint32) {
	for i, v := range src {
		dst[i] += v
	}
}

// IncMV counts a coded vector. Only the non-zero components selected by
// the joint type are counted. A nil Counts is ignored.
func (c *Counts) IncMV(v MV, p Precision) {
	if c == nil {
		return
	}
	j := JointOf(v)
	c.Joints[j]++
	if j.Vertical() {
		c.Comps[0].incComponent(v.Row, p)
	}
	if j.Horizontal() {
		c.Comps[1].incComponent(v.Col, p)
	}
}

// incComponent counts one non-zero component. The fractional parts are
// only counted when the precision codes them.
func (c *ComponentCounts) incComponent(v int32, p Precision) {
	if v == 0 {
		panic("mv: zero component counted")
	}
	s := 0
	if v < 0 {
		s, v = 1, -v
	}
	c.Sign[s]++
	cl, d, fr, hp := components(v - 1)
	c.Classes[cl]++
	if cl == 0 {
		c.Class0[d]++
		if p >= PrecisionLow {
			c.Class0FP[d][fr]++
		}
		if p == PrecisionHigh {
			c.Class0HP[hp]++
		}
		return
	}
	for i := 0; i < cl+Class0Bits-1; i++ {
		c.Bits[i][(d>>uint(i))&1]++
	}
	if p >= PrecisionLow {
		c.FP[fr]++
	}
	if p == PrecisionHigh {
		c.HP[hp]++
	}
}
