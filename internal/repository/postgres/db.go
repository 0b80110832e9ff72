package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/repository"
)

// DB is the subset of a pgx connection or transaction every repository
// needs. Passing it explicitly (rather than depending on *pgxpool.Pool or
// pgx.Tx directly) is what lets a repository run either pooled or pinned to
// an active transaction via With(tx).
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is the Storage Engine (spec §4.1): durable, transactional state for
// events, slots, holds, bookings and the attempt log, plus the serialisable
// critical section the rest of the core runs inside.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Events() *EventRepo          { return &EventRepo{pool: s.pool} }
func (s *Store) Slots() *SlotRepo            { return &SlotRepo{pool: s.pool} }
func (s *Store) Holds() *HoldRepo            { return &HoldRepo{pool: s.pool} }
func (s *Store) Bookings() *BookingRepo      { return &BookingRepo{pool: s.pool} }
func (s *Store) AttemptLog() *AttemptLogRepo { return &AttemptLogRepo{pool: s.pool} }

// RunTx runs fn inside a single transaction with the given options,
// defaulting to serialisable/read-write — the isolation spec §4.1 and §5
// require for the hold/confirm critical sections.
func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return translateDBErr(err)
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", translateDBErr(err))
	}

	return nil
}

// RunSerializable runs fn inside RunTx and, on a serialization failure or
// deadlock, retries exactly once — spec §4.4.1: "the core may retry once
// transparently; further failures are reported as TransientStorage."
func (s *Store) RunSerializable(
	ctx context.Context,
	fn func(ctx context.Context, tx DB) error,
) error {
	err := s.RunTx(ctx, nil, fn)
	if err == nil {
		return nil
	}

	if !isRetryableErr(err) {
		return err
	}

	err = s.RunTx(ctx, nil, fn)
	if err != nil && isRetryableErr(err) {
		return repository.ErrTransient
	}

	return err
}

func isRetryableErr(err error) bool {
	if errors.Is(err, repository.ErrTransient) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return errors.Is(err, context.DeadlineExceeded)
}
