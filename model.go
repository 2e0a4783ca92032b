package entropy

import (
	"fmt"

	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/mv"
)

// Model is a frame context: every probability and CDF of the coefficient
// and motion vector coders. It holds no pointers, so a plain copy is deep.
type Model struct {
	Coeff coeff.Model
	MV    mv.Model
}

// NewModel returns a frame context initialized with the default tables.
func NewModel() *Model {
	return &Model{
		Coeff: *coeff.NewModel(),
		MV:    *mv.NewModel(),
	}
}

// Clone returns an independent copy of m.
func (m *Model) Clone() *Model {
	c := *m
	return &c
}

// Validate reports ErrModelInconsistent if a probability is outside 1..255
// or a CDF does not match its invariants.
func (m *Model) Validate() error {
	if err := m.Coeff.Validate(); err != nil {
		return fmt.Errorf("coefficients: %w", err)
	}
	if err := m.MV.Validate(); err != nil {
		return fmt.Errorf("motion vectors: %w", err)
	}
	return nil
}

// Counts are the statistics one tile collects for adaptation.
type Counts struct {
	Coeff coeff.Counts
	MV    mv.Counts
}

// Add accumulates o into c.
func (c *Counts) Add(o *Counts) {
	c.Coeff.Add(&o.Coeff)
	c.MV.Add(&o.MV)
}

// Reset zeroes all counters.
func (c *Counts) Reset() {
	*c = Counts{}
}
