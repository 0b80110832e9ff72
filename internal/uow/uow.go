// Package uow provides the transactional boundary every write operation in
// the core runs inside, plus an after-commit hook list for side effects
// (cache invalidation, pub/sub) that must only fire once the transaction
// has actually landed.
package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgres "github.com/slotreserve/src/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// UoW represents a unit of work over the Storage Engine.
type UoW struct {
	store *postgres.Store
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside a serialisable transaction, retrying once transparently
// on a serialization failure (spec §4.4.1). After a successful commit, it
// executes every after-commit hook fn registered, in registration order.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside a transaction with the given options (nil for
// the default serialisable/read-write). After a successful commit, it
// executes all after-commit hooks.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	run := func(ctx context.Context, tx postgres.DB) error {
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	}

	var err error
	if opts == nil {
		err = u.store.RunSerializable(ctx, run)
	} else {
		err = u.store.RunTx(ctx, opts, run)
	}
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
