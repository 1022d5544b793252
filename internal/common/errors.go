package common

import "errors"

// Side-normalization errors. The rest of the error taxonomy in spec.md §7
// lives in internal/engine/errors.go, alongside the types that raise it.
var (
	ErrInvalidSideValue = errors.New("invalid side value")
	ErrInvalidSideName  = errors.New("invalid side name")
	ErrMissingSymbol    = errors.New("symbol must be specified")
)
