// Package repository holds the sentinel errors every storage-backed
// repository translates its driver errors into. Services branch on these
// with errors.Is, never on driver-specific error types.
package repository

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrTransient        = errors.New("transient storage error")
	ErrPermissionDenied = errors.New("permission denied")
)
