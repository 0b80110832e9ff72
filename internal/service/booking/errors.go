package booking

import "errors"

var (
	ErrInvalidAttendee  = errors.New("invalid attendee")
	ErrHoldInvalid      = errors.New("hold invalid")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)
