package mv

import (
	"fmt"

	"github.com/deepteams/entropy/internal/prob"
)

// ComponentProbs holds the probabilities of one vector component.
type ComponentProbs struct {
	Sign     uint8
	Classes  [NumClasses - 1]uint8
	Class0   [Class0Size - 1]uint8
	Bits     [OffsetBits]uint8
	Class0FP [Class0Size][FPSize - 1]uint8
	FP       [FPSize - 1]uint8
	Class0HP uint8
	HP       uint8
}

// Model is the motion vector part of a frame context. Component 0 is
// vertical (rows), component 1 horizontal (columns).
type Model struct {
	Joints [NumJoints - 1]uint8
	Comps  [2]ComponentProbs

	// CDFs derived from the tree probabilities by UpdateCDFs.
	JointCDF    [NumJoints]uint16
	ClassCDF    [2][NumClasses]uint16
	Class0CDF   [2][Class0Size]uint16
	Class0FPCDF [2][Class0Size][FPSize]uint16
	FPCDF       [2][FPSize]uint16
}

var defaultComps = [2]ComponentProbs{
	{ // vertical
		Sign:     128,
		Classes:  [NumClasses - 1]uint8{224, 144, 192, 168, 192, 176, 192, 198, 198, 245},
		Class0:   [Class0Size - 1]uint8{216},
		Bits:     [OffsetBits]uint8{136, 140, 148, 160, 176, 192, 224, 234, 234, 240},
		Class0FP: [Class0Size][FPSize - 1]uint8{{128, 128, 64}, {96, 112, 64}},
		FP:       [FPSize - 1]uint8{64, 96, 64},
		Class0HP: 160,
		HP:       128,
	},
	{ // horizontal
		Sign:     128,
		Classes:  [NumClasses - 1]uint8{216, 128, 176, 160, 176, 176, 192, 198, 198, 208},
		Class0:   [Class0Size - 1]uint8{208},
		Bits:     [OffsetBits]uint8{136, 140, 148, 160, 176, 192, 224, 234, 234, 240},
		Class0FP: [Class0Size][FPSize - 1]uint8{{128, 128, 64}, {96, 112, 64}},
		FP:       [FPSize - 1]uint8{64, 96, 64},
		Class0HP: 160,
		HP:       128,
	},
}

// NewModel returns a model initialized with the default tables.
func NewModel() *Model {
	m := &Model{
		Joints: [NumJoints - 1]uint8{32, 64, 96},
		Comps:  defaultComps,
	}
	m.UpdateCDFs()
	return m
}

// UpdateCDFs re-derives every CDF from the tree probabilities.
func (m *Model) UpdateCDFs() {
	prob.TreeToCDF(JointTree, m.Joints[:], 0, m.JointCDF[:])
	for i := range m.Comps {
		c := &m.Comps[i]
		prob.TreeToCDF(ClassTree, c.Classes[:], 0, m.ClassCDF[i][:])
		prob.TreeToCDF(Class0Tree, c.Class0[:], 0, m.Class0CDF[i][:])
		for j := range c.Class0FP {
			prob.TreeToCDF(FPTree, c.Class0FP[j][:], 0, m.Class0FPCDF[i][j][:])
		}
		prob.TreeToCDF(FPTree, c.FP[:], 0, m.FPCDF[i][:])
	}
}

// Validate checks every probability and CDF of the model.
func (m *Model) Validate() error {
	if err := prob.ValidateProbs(m.Joints[:]); err != nil {
		return fmt.Errorf("mv joints: %w", err)
	}
	if err := prob.ValidateCDF(m.JointCDF[:]); err != nil {
		return fmt.Errorf("mv joints: %w", err)
	}
	for i := range m.Comps {
		c := &m.Comps[i]
		probs := [][]uint8{
			{c.Sign, c.Class0HP, c.HP}, c.Classes[:], c.Class0[:], c.Bits[:],
			c.Class0FP[0][:], c.Class0FP[1][:], c.FP[:],
		}
		for _, p := range probs {
			if err := prob.ValidateProbs(p); err != nil {
				return fmt.Errorf("mv component %d: %w", i, err)
			}
		}
		cdfs := [][]uint16{
			m.ClassCDF[i][:], m.Class0CDF[i][:], m.Class0FPCDF[i][0][:], m.Class0FPCDF[i][1][:], m.FPCDF[i][:],
		}
		for _, cdf := range cdfs {
			if err := prob.ValidateCDF(cdf); err != nil {
				return fmt.Errorf("mv component %d: %w", i, err)
			}
		}
	}
	return nil
}
