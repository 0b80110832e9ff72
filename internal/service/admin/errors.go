package admin

import "errors"

var (
	ErrEventConflict = errors.New("event already exists")
	ErrSlotConflict  = errors.New("slot already exists")
	ErrEventNotFound = errors.New("event not found")
)
