package hold

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidArgument  = errors.New("session_id must be non-empty")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrSlotUnavailable  = errors.New("slot unavailable")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// CapacityExceededError carries the effective_available the capacity guard
// observed, so a caller can decide whether to re-list availability or just
// retry with a smaller quantity (spec §4.4.1 step 4).
type CapacityExceededError struct {
	EffectiveAvailable int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: effective_available=%d", e.EffectiveAvailable)
}

func (e CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }
