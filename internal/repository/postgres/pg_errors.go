package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/slotreserve/src/internal/repository"
)

// wrap translates a driver error to a repository sentinel and annotates it
// with the operation name, matching the "%s:%w" shape used throughout the
// teacher's repository layer.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}

// IsRetryable reports whether err is a serialization failure, a deadlock or
// an exceeded context deadline — the errors the caller may retry the same
// transaction for once (spec §4.4.1, §7 "TransientStorage").
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// translateDBErr maps a pgx/pgconn driver error to the repository package's
// sentinel kinds, so service code never has to switch on driver details.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return repository.ErrTransient
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "23505": // unique_violation
			return repository.ErrConflict
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return repository.ErrTransient
		}
	}

	return err
}
