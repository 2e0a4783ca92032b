package prob

import "errors"

// Errors shared by the coefficient and motion vector coders.
var (
	// ErrStreamCorrupt reports a symbol, category value or coder state that
	// cannot occur in a valid stream. Decoding of the current tile must stop.
	ErrStreamCorrupt = errors.New("entropy: corrupt stream")

	// ErrModelInconsistent reports a probability or CDF table that violates
	// its range or monotonicity invariant.
	ErrModelInconsistent = errors.New("entropy: inconsistent probability model")

	// ErrConfigMismatch reports block parameters or buffers that do not match
	// the model dimensions or the configured bit depth.
	ErrConfigMismatch = errors.New("entropy: configuration mismatch")
)
