package entropy

import (
	"fmt"
	"runtime"

	"github.com/deepteams/entropy/internal/coeff"
	"github.com/deepteams/entropy/internal/xlog"
)

// Options controls the tile coders. The zero value codes 8-bit content with
// tree coding, quarter-pel motion vectors and one worker per CPU.
type Options struct {
	// BitDepth is the sample depth, 8, 10 or 12. Zero means 8.
	// It selects the category tables and the coefficient range.
	BitDepth int

	// Strategy selects binary tree coding or multi-symbol coding. Encoder
	// and decoder must use the same strategy.
	Strategy Strategy

	// AllowHighPrecisionMV permits eighth-pel motion vectors. Adapt only
	// updates the eighth-pel probabilities when it is set.
	AllowHighPrecisionMV bool

	// TrellisShortcut skips the lower candidate of a coefficient unless its
	// level is at most 3 and the rounding error lies within one step. This
	// speeds up OptimizeBlock and rarely costs compression.
	TrellisShortcut bool

	// Workers bounds the goroutines of EncodeTiles and DecodeTiles.
	// Zero or less means runtime.NumCPU().
	Workers int

	// Logger receives debug summaries of tile coding and adaptation.
	// A *log.Logger works. Nil disables logging.
	Logger xlog.Logger
}

// normalize returns a copy of o with defaults filled in, or
// ErrConfigMismatch if a value is unsupported. o may be nil.
func (o *Options) normalize() (Options, error) {
	var n Options
	if o != nil {
		n = *o
	}
	if n.BitDepth == 0 {
		n.BitDepth = 8
	}
	if !coeff.ValidBitDepth(n.BitDepth) {
		return n, fmt.Errorf("%w: bit depth %d", ErrConfigMismatch, n.BitDepth)
	}
	if !n.Strategy.Valid() {
		return n, fmt.Errorf("%w: strategy %v", ErrConfigMismatch, n.Strategy)
	}
	if n.Workers <= 0 {
		n.Workers = runtime.NumCPU()
	}
	return n, nil
}

// checkPrecision rejects eighth-pel vectors when they are not allowed.
func (o *Options) checkPrecision(p Precision) error {
	switch {
	case p > PrecisionHigh:
		return fmt.Errorf("%w: motion vector precision %d", ErrConfigMismatch, p)
	case p == PrecisionHigh && !o.AllowHighPrecisionMV:
		return fmt.Errorf("%w: high precision motion vectors not allowed", ErrConfigMismatch)
	}
	return nil
}
