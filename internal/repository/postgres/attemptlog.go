package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/domain"
)

// AttemptLogRepo is the append-only AttemptLog (spec §3). The spec
// mandates writing on failure as well as success — unlike the source,
// which only logged success — because it is the only durable trail of
// racing commits (spec §9).
type AttemptLogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AttemptLogRepo) With(db DB) *AttemptLogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AttemptLogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert appends one attempt log row. The failure-path caller
// (booking.Service.logFailure) discards any error from it; the success row
// is written inside the booking transaction, where an error here fails the
// booking it describes.
func (r *AttemptLogRepo) Insert(ctx context.Context, e domain.AttemptLog) error {
	const op = "postgres.AttemptLogRepo.Insert"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO attempt_log(id, event_id, slot_id, user_id, email, status, attempted_at, failure_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.EventID, e.SlotID, e.UserID, e.Email, string(e.Status), e.AttemptedAt, nullableString(e.FailureReason),
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}
