package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/domain"
)

// SlotRepo is the TimeSlot slice of the Storage Engine (spec §3 "TimeSlot").
type SlotRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SlotRepo) With(db DB) *SlotRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SlotRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const slotColumns = `id, event_id, start_time, end_time, total_capacity, booked_count, status, price_cents`

func scanSlot(row pgx.Row) (domain.TimeSlot, error) {
	var s domain.TimeSlot
	var status string

	err := row.Scan(
		&s.ID, &s.EventID, &s.StartTime, &s.EndTime,
		&s.TotalCapacity, &s.BookedCount, &status, &s.PriceCents,
	)
	if err != nil {
		return domain.TimeSlot{}, err
	}

	s.Status = domain.SlotStatus(status)

	return s, nil
}

// GetSlot reads a slot with no row lock — fine for read-only paths like
// list_availability, which only needs a consistent snapshot, not a writer's
// lock.
//
// Returns:
//   - error: repository.ErrNotFound if the slot does not exist.
func (r *SlotRepo) GetSlot(ctx context.Context, slotID string) (*domain.TimeSlot, error) {
	const op = "postgres.SlotRepo.GetSlot"

	s, err := scanSlot(r.handle().QueryRow(ctx,
		`SELECT `+slotColumns+` FROM time_slots WHERE id = $1`, slotID,
	))
	if err != nil {
		return nil, wrap(op, err)
	}

	return &s, nil
}

// GetSlotForUpdate reads a slot with a row-level lock. Callers MUST invoke
// this through a transaction obtained from Store.RunTx/RunSerializable —
// this is the row lock spec §4.1 requires for the create_hold and
// confirm_booking critical sections.
//
// Returns:
//   - error: repository.ErrNotFound if the slot does not exist.
func (r *SlotRepo) GetSlotForUpdate(ctx context.Context, slotID string) (*domain.TimeSlot, error) {
	const op = "postgres.SlotRepo.GetSlotForUpdate"

	s, err := scanSlot(r.handle().QueryRow(ctx,
		`SELECT `+slotColumns+` FROM time_slots WHERE id = $1 FOR UPDATE`, slotID,
	))
	if err != nil {
		return nil, wrap(op, err)
	}

	return &s, nil
}

// CountBookableSlots counts slots of an event whose effective_available
// (session-agnostic: every active, unexpired hold subtracted) is at least
// quantity — the predicate behind can_book (spec §4.3).
func (r *SlotRepo) CountBookableSlots(ctx context.Context, eventID string, quantity int, now time.Time) (int, error) {
	const op = "postgres.SlotRepo.CountBookableSlots"

	var n int
	err := r.handle().QueryRow(ctx,
		`SELECT count(*)
		   FROM time_slots s
		  WHERE s.event_id = $1
		    AND s.status = 'available'
		    AND s.start_time > $2
		    AND (s.total_capacity - s.booked_count - COALESCE((
		          SELECT sum(h.quantity) FROM holds h
		           WHERE h.slot_id = s.id AND h.is_active AND h.expires_at > $2
		        ), 0)) >= $3`,
		eventID, now, quantity,
	).Scan(&n)
	if err != nil {
		return 0, wrap(op, err)
	}

	return n, nil
}

// ListAvailability returns the session-agnostic list_availability projection
// (spec §4.3) for an event: effective_available computed against every
// active, unexpired hold regardless of session. This is the cacheable base a
// caller's own held quantity is added back onto — see
// internal/service/availability.
func (r *SlotRepo) ListAvailability(ctx context.Context, eventID string, now time.Time) ([]domain.AvailabilityRow, error) {
	const op = "postgres.SlotRepo.ListAvailability"

	rows, err := r.handle().Query(ctx,
		`SELECT s.id, s.start_time, s.end_time, s.total_capacity, s.price_cents,
		        GREATEST(s.total_capacity - s.booked_count - COALESCE((
		          SELECT sum(h.quantity) FROM holds h
		           WHERE h.slot_id = s.id AND h.is_active AND h.expires_at > $2
		        ), 0), 0) AS effective_available
		   FROM time_slots s
		  WHERE s.event_id = $1
		    AND s.status = 'available'
		    AND s.start_time > $2
		    AND (s.total_capacity - s.booked_count) > 0
		  ORDER BY s.start_time ASC`,
		eventID, now,
	)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []domain.AvailabilityRow
	for rows.Next() {
		var row domain.AvailabilityRow
		if err := rows.Scan(
			&row.SlotID, &row.StartTime, &row.EndTime,
			&row.TotalCapacity, &row.PriceCents, &row.EffectiveAvailable,
		); err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}

	return out, nil
}

// IncrementBooked applies the booking-finaliser's slot update (spec §4.5
// step 6): booked_count += quantity, and status flips to 'full' once
// available_count reaches zero. Callers MUST run this inside the same
// transaction that loaded the slot with GetSlotForUpdate.
func (r *SlotRepo) IncrementBooked(ctx context.Context, slotID string, quantity int) error {
	const op = "postgres.SlotRepo.IncrementBooked"

	_, err := r.handle().Exec(ctx,
		`UPDATE time_slots
		    SET booked_count = booked_count + $2,
		        status = CASE WHEN total_capacity - (booked_count + $2) <= 0
		                      THEN 'full' ELSE status END
		  WHERE id = $1`,
		slotID, quantity,
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}

// CreateSlot inserts a new slot under the given event and returns nothing;
// the caller supplies the generated ID. Seeding surface — see
// SPEC_FULL.md "SUPPLEMENTED FEATURES".
func (r *SlotRepo) CreateSlot(ctx context.Context, s domain.TimeSlot) error {
	const op = "postgres.SlotRepo.CreateSlot"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO time_slots(id, event_id, start_time, end_time, total_capacity, booked_count, status, price_cents)
		 VALUES ($1, $2, $3, $4, $5, 0, 'available', $6)`,
		s.ID, s.EventID, s.StartTime, s.EndTime, s.TotalCapacity, s.PriceCents,
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}
