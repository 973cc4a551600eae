package scoring

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidRankInput = errors.New("invalid rank input")
)
