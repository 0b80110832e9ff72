package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotreserve/src/internal/domain"
)

// EventRepo is the Event slice of the Storage Engine (spec §3 "Event").
type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if it does not exist.
func (r *EventRepo) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetEvent"

	db := r.handle()

	var e domain.Event
	var status, visibility string

	err := db.QueryRow(ctx,
		`SELECT id, status, visibility, title FROM events WHERE id = $1`,
		eventID,
	).Scan(&e.ID, &status, &visibility, &e.Title)
	if err != nil {
		return nil, wrap(op, err)
	}

	e.Status = domain.EventStatus(status)
	e.Visibility = domain.Visibility(visibility)

	return &e, nil
}

// CreateEvent inserts a new event row under the caller-supplied ID. It is
// the seeding surface supplementing spec §1's out-of-scope admin slot
// generator — see SPEC_FULL.md "SUPPLEMENTED FEATURES".
//
// Returns:
//   - error: repository.ErrConflict if an event with the same ID exists.
func (r *EventRepo) CreateEvent(
	ctx context.Context,
	id string,
	status domain.EventStatus,
	visibility domain.Visibility,
	title string,
) error {
	const op = "postgres.EventRepo.CreateEvent"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO events(id, status, visibility, title) VALUES ($1, $2, $3, $4)`,
		id, string(status), string(visibility), title,
	)
	if err != nil {
		return wrap(op, err)
	}

	return nil
}
