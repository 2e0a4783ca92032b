// Package mv codes motion vector differences: the joint type saying which
// components are non-zero, then per component a sign, a magnitude class,
// the integer offset within the class and the fractional parts.
//
// Vectors are in 1/8 pel units.
package mv

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
)

// MV is a motion vector difference.
type MV struct {
	Row, Col int32
}

// Joint says which components of a vector are non-zero.
type Joint uint8

const (
	JointZero   Joint = iota // both zero
	JointHNZVZ               // horizontal non-zero, vertical zero
	JointHZVNZ               // horizontal zero, vertical non-zero
	JointHNZVNZ              // both non-zero

	NumJoints = 4
)

// JointOf classifies v.
func JointOf(v MV) Joint {
	switch {
	case v.Row == 0 && v.Col == 0:
		return JointZero
	case v.Row == 0:
		return JointHNZVZ
	case v.Col == 0:
		return JointHZVNZ
	}
	return JointHNZVNZ
}

// Vertical reports whether the row component is coded.
func (j Joint) Vertical() bool { return j == JointHZVNZ || j == JointHNZVNZ }

// Horizontal reports whether the column component is coded.
func (j Joint) Horizontal() bool { return j == JointHNZVZ || j == JointHNZVNZ }

// Component dimensions.
const (
	NumClasses  = 11
	Class0Bits  = 1
	Class0Size  = 1 << Class0Bits
	OffsetBits  = NumClasses - 1 + Class0Bits - 1
	FPSize      = 4
	MaxClassLog = NumClasses - 1

	// MaxMagnitude bounds the magnitude of a valid component.
	MaxMagnitude = (1 << 14) - 1
)

// Precision is the finest fraction coded for a vector.
type Precision uint8

const (
	// PrecisionInteger codes whole pels only.
	PrecisionInteger Precision = iota
	// PrecisionLow codes quarter pels.
	PrecisionLow
	// PrecisionHigh codes eighth pels.
	PrecisionHigh
)

// Coding trees.
var (
	JointTree = prob.Tree{
		-int8(JointZero), 2,
		-int8(JointHNZVZ), 4,
		-int8(JointHZVNZ), -int8(JointHNZVNZ),
	}
	ClassTree = prob.Tree{
		-0, 2,
		-1, 4,
		6, 8,
		-2, -3,
		10, 12,
		-4, -5,
		-6, 14,
		16, 18,
		-7, -8,
		-9, -10,
	}
	Class0Tree = prob.Tree{-0, -1}
	FPTree     = prob.Tree{-0, 2, -1, 4, -2, -3}
)

// classOf returns the class of offset z = |v|-1 and the offset within the
// class.
func classOf(z int32) (c int, offset int32) {
	switch {
	case z >= Class0Size*4096:
		c = MaxClassLog
	case z>>3 < 2:
		c = 0
	default:
		c = log2(uint32(z >> 3))
	}
	return c, z - classBase(c)
}

func classBase(c int) int32 {
	if c == 0 {
		return 0
	}
	return Class0Size << (c + 2)
}

func log2(v uint32) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// components splits magnitude-1 offset into its coded parts.
func components(z int32) (c int, d, fr, hp int32) {
	c, o := classOf(z)
	return c, o >> 3, (o >> 1) & 3, o & 1
}

// checkComponent reports whether v can be coded at precision p.
func checkComponent(v int32, p Precision) error {
	if v < 0 {
		v = -v
	}
	if v > MaxMagnitude {
		return fmt.Errorf("%w: motion vector component %d exceeds %d", prob.ErrConfigMismatch, v, MaxMagnitude)
	}
	if v == 0 {
		return nil
	}
	o := v - 1
	switch {
	case p == PrecisionInteger && o&7 != 7:
		return fmt.Errorf("%w: component %d is not whole-pel", prob.ErrConfigMismatch, v)
	case p == PrecisionLow && o&1 != 1:
		return fmt.Errorf("%w: component %d needs eighth-pel precision", prob.ErrConfigMismatch, v)
	}
	return nil
}

// Check reports whether v can be coded at precision p.
func Check(v MV, p Precision) error {
	if err := checkComponent(v.Row, p); err != nil {
		return err
	}
	return checkComponent(v.Col, p)
}

// Valid reports whether both components are within the codable range.
func (v MV) Valid() bool {
	return v.Row >= -MaxMagnitude && v.Row <= MaxMagnitude && v.Col >= -MaxMagnitude && v.Col <= MaxMagnitude
}
