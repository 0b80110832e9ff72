package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/domain"
)

// BookingRepo is the Booking slice of the Storage Engine (spec §3
// "Booking").
type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert writes a new booking row in state 'confirmed'. The caller is
// expected to retry with a freshly generated Reference on
// repository.ErrConflict — spec §4.1's uniqueness-retry loop — since the
// conflict can only come from the unique index on booking_reference (every
// other column is either foreign or attacker-uncontrolled).
func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	const op = "postgres.BookingRepo.Insert"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO bookings(
		     id, event_id, slot_id, user_id, first_name, last_name, email,
		     phone, notes, booking_reference, status, confirmed_at, created_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.EventID, b.SlotID, b.UserID,
		b.Attendee.FirstName, b.Attendee.LastName, b.Attendee.Email,
		nullableString(b.Attendee.Phone), nullableString(b.Attendee.Notes),
		b.Reference, string(b.Status), b.ConfirmedAt, b.CreatedAt,
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Get retrieves a booking by ID — used by callers confirming what was
// written after a deadline-exceeded write (spec §5 "Cancellation /
// timeouts": the caller may observe success on a follow-up read).
//
// Returns:
//   - error: repository.ErrNotFound if it does not exist.
func (r *BookingRepo) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	var b domain.Booking
	var status string
	var phone, notes *string

	err := r.handle().QueryRow(ctx,
		`SELECT id, event_id, slot_id, user_id, first_name, last_name, email,
		        phone, notes, booking_reference, status, confirmed_at, created_at
		   FROM bookings WHERE id = $1`,
		bookingID,
	).Scan(
		&b.ID, &b.EventID, &b.SlotID, &b.UserID,
		&b.Attendee.FirstName, &b.Attendee.LastName, &b.Attendee.Email,
		&phone, &notes, &b.Reference, &status, &b.ConfirmedAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, wrap(op, err)
	}

	b.Status = domain.BookingStatus(status)
	if phone != nil {
		b.Attendee.Phone = *phone
	}
	if notes != nil {
		b.Attendee.Notes = *notes
	}

	return &b, nil
}
