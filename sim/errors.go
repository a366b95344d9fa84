package sim

import "errors"

// ErrInvalidConfig is the class of all pre-run parameter rejections.
// Validation failures wrap it, so callers can test errors.Is(err, ErrInvalidConfig)
// without matching message text. It is never returned mid-run: a parameter set
// either fails fast here or the run completes.
var ErrInvalidConfig = errors.New("sim: invalid configuration")
