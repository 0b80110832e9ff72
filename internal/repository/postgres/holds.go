package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/domain"
)

// HoldRepo is the Hold slice of the Storage Engine (spec §3 "Hold", called
// a "slot lock" in the source).
type HoldRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *HoldRepo) With(db DB) *HoldRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HoldRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const holdColumns = `id, slot_id, session_id, user_id, quantity, created_at, expires_at, is_active, released_at`

func scanHold(row pgx.Row) (domain.Hold, error) {
	var h domain.Hold
	err := row.Scan(
		&h.ID, &h.SlotID, &h.SessionID, &h.UserID, &h.Quantity,
		&h.CreatedAt, &h.ExpiresAt, &h.IsActive, &h.ReleasedAt,
	)
	return h, err
}

// ActiveHoldsForSlot returns every hold on a slot that is currently active
// and unexpired — the set the capacity guard and the availability formula
// both subtract from (spec §4.3, §4.4.1).
func (r *HoldRepo) ActiveHoldsForSlot(ctx context.Context, slotID string, now time.Time) ([]domain.Hold, error) {
	const op = "postgres.HoldRepo.ActiveHoldsForSlot"

	rows, err := r.handle().Query(ctx,
		`SELECT `+holdColumns+`
		   FROM holds
		  WHERE slot_id = $1 AND is_active AND expires_at > $2`,
		slotID, now,
	)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []domain.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return out, nil
}

// GetActiveHoldForSession finds the caller's own active hold on a slot, if
// any, to enforce the uniqueness rule of spec §3 ("at most one active hold
// per (slot_id, session_id)").
//
// Returns:
//   - error: repository.ErrNotFound if there is no active hold for the pair.
func (r *HoldRepo) GetActiveHoldForSession(ctx context.Context, slotID, sessionID string) (*domain.Hold, error) {
	const op = "postgres.HoldRepo.GetActiveHoldForSession"

	h, err := scanHold(r.handle().QueryRow(ctx,
		`SELECT `+holdColumns+`
		   FROM holds
		  WHERE slot_id = $1 AND session_id = $2 AND is_active
		  LIMIT 1`,
		slotID, sessionID,
	))
	if err != nil {
		return nil, wrap(op, err)
	}

	return &h, nil
}

// ActiveHoldQuantityBySlotForSession returns, per slot of an event, the
// quantity held by this session's own active, unexpired holds. It is the
// per-session correction list_availability adds back onto the cached
// session-agnostic base (spec §4.3's caller-exclusion clause).
func (r *HoldRepo) ActiveHoldQuantityBySlotForSession(
	ctx context.Context,
	eventID, sessionID string,
	now time.Time,
) (map[string]int, error) {
	const op = "postgres.HoldRepo.ActiveHoldQuantityBySlotForSession"

	if sessionID == "" {
		return nil, nil
	}

	rows, err := r.handle().Query(ctx,
		`SELECT h.slot_id, h.quantity
		   FROM holds h
		   JOIN time_slots s ON s.id = h.slot_id
		  WHERE s.event_id = $1 AND h.session_id = $2
		    AND h.is_active AND h.expires_at > $3`,
		eventID, sessionID, now,
	)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var slotID string
		var qty int
		if err := rows.Scan(&slotID, &qty); err != nil {
			return nil, wrap(op, err)
		}
		out[slotID] += qty
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return out, nil
}

// GetHold reads a hold with no row lock — used by verify_hold, which only
// observes state (its self-healing transition is a separate, idempotent
// Deactivate call).
//
// Returns:
//   - error: repository.ErrNotFound if the hold does not exist.
func (r *HoldRepo) GetHold(ctx context.Context, holdID string) (*domain.Hold, error) {
	const op = "postgres.HoldRepo.GetHold"

	h, err := scanHold(r.handle().QueryRow(ctx,
		`SELECT `+holdColumns+` FROM holds WHERE id = $1`, holdID,
	))
	if err != nil {
		return nil, wrap(op, err)
	}

	return &h, nil
}

// GetHoldForUpdate reads a hold with a row-level lock. confirm_booking
// (spec §4.5 step 1) must load the hold this way inside its transaction.
//
// Returns:
//   - error: repository.ErrNotFound if the hold does not exist.
func (r *HoldRepo) GetHoldForUpdate(ctx context.Context, holdID string) (*domain.Hold, error) {
	const op = "postgres.HoldRepo.GetHoldForUpdate"

	h, err := scanHold(r.handle().QueryRow(ctx,
		`SELECT `+holdColumns+` FROM holds WHERE id = $1 FOR UPDATE`, holdID,
	))
	if err != nil {
		return nil, wrap(op, err)
	}

	return &h, nil
}

// InsertHold writes a new hold row (spec §4.4.1 step 6).
func (r *HoldRepo) InsertHold(ctx context.Context, h domain.Hold) error {
	const op = "postgres.HoldRepo.InsertHold"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO holds(id, slot_id, session_id, user_id, quantity, created_at, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, true)`,
		h.ID, h.SlotID, h.SessionID, h.UserID, h.Quantity, h.CreatedAt, h.ExpiresAt,
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}

// Deactivate sets is_active = false, released_at = now iff the hold is
// currently active. It is the single primitive behind release_hold,
// verify_hold's self-healing transition, the uniqueness-rule eviction of a
// session's prior hold, and confirm_booking's hold consumption — every one
// of spec §4.4–§4.5's "set is_active false" steps funnels through here, so
// the idempotence law in spec §8 only needs proving once.
//
// Returns:
//   - bool: true if this call performed the transition, false if the hold
//     was already inactive or does not exist.
func (r *HoldRepo) Deactivate(ctx context.Context, holdID string, now time.Time) (bool, error) {
	const op = "postgres.HoldRepo.Deactivate"

	tag, err := r.handle().Exec(ctx,
		`UPDATE holds SET is_active = false, released_at = $2
		  WHERE id = $1 AND is_active`,
		holdID, now,
	)
	if err != nil {
		return false, wrap(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ReleaseExpired deactivates every hold with is_active = true and
// expires_at <= now, optionally scoped to a single slot (spec §4.2). An
// empty slotID sweeps every slot; it is idempotent and safe to call
// concurrently with itself.
func (r *HoldRepo) ReleaseExpired(ctx context.Context, slotID string, now time.Time) (int64, error) {
	const op = "postgres.HoldRepo.ReleaseExpired"

	db := r.handle()

	if slotID == "" {
		ct, err := db.Exec(ctx,
			`UPDATE holds SET is_active = false, released_at = $1
			  WHERE is_active AND expires_at <= $1`,
			now,
		)
		if err != nil {
			return 0, wrap(op, err)
		}
		return ct.RowsAffected(), nil
	}

	ct, err := db.Exec(ctx,
		`UPDATE holds SET is_active = false, released_at = $1
		  WHERE slot_id = $2 AND is_active AND expires_at <= $1`,
		now, slotID,
	)
	if err != nil {
		return 0, wrap(op, err)
	}

	return ct.RowsAffected(), nil
}
