package campaign

import "errors"

var (
	// ErrInvalidSnapshot indicates a snapshot violates a counter invariant.
	ErrInvalidSnapshot = errors.New("campaign: invalid snapshot")
	// ErrInvalidDuration indicates a non-positive day count.
	ErrInvalidDuration = errors.New("campaign: invalid duration")
)
