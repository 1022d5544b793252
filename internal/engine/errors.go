package engine

import "errors"

// Error taxonomy for the engine core (spec §7). Every error is raised
// synchronously at the originating call and leaves the engine exactly as
// it was before the call began.
var (
	ErrInvalidSideIndex   = errors.New("invalid side index on product")
	ErrDuplicateOrderID   = errors.New("duplicate order id")
	ErrNoSuchOrderID      = errors.New("no such order id")
	ErrAlreadyFullyFilled = errors.New("already fully filled")
	ErrAlreadyCancelled   = errors.New("already cancelled")
	ErrEmptyPriorityQueue = errors.New("empty priority queue")
	ErrDuplicateKey       = errors.New("duplicate key")
)
