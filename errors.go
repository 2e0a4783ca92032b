package entropy

import (
	"errors"

	"github.com/deepteams/entropy/internal/prob"
)

// Errors returned by the coders. They are wrapped with context; test with
// errors.Is.
var (
	// ErrStreamCorrupt reports data that no valid encoder produces. The
	// tile cannot be decoded further.
	ErrStreamCorrupt = prob.ErrStreamCorrupt

	// ErrModelInconsistent reports a frame context whose probabilities or
	// CDFs violate their invariants.
	ErrModelInconsistent = prob.ErrModelInconsistent

	// ErrConfigMismatch reports options, block parameters, buffers or
	// values that the coders cannot represent.
	ErrConfigMismatch = prob.ErrConfigMismatch
)

func isStreamError(err error) bool {
	return errors.Is(err, ErrStreamCorrupt)
}
