// Package admin is the seeding surface SPEC_FULL.md supplements: creating
// events and time slots for the reservation core to hold and book against.
// It deliberately does not include the source's weekday/daily-window slot
// generator, which spec.md §1 places out of scope — callers supply slots
// one at a time, already materialized.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slotreserve/src/internal/domain"
	"github.com/slotreserve/src/internal/repository"
	postgresrepo "github.com/slotreserve/src/internal/repository/postgres"
	redisrepo "github.com/slotreserve/src/internal/repository/redis"
	"github.com/slotreserve/src/internal/uow"
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.EventsPubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisrepo.EventsPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// CreateEvent inserts a new event and returns its generated ID.
//
// Returns:
//   - error: admin.ErrEventConflict if an event with the same ID exists.
func (s *Service) CreateEvent(
	ctx context.Context,
	status domain.EventStatus,
	visibility domain.Visibility,
	title string,
) (string, error) {
	const op = "service.admin.CreateEvent"

	id := uuid.NewString()

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Events().With(tx).CreateEvent(ctx, id, status, visibility, title); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s:%w", op, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// CreateSlot inserts a new time slot under an event and returns its
// generated ID.
//
// Returns:
//   - error: admin.ErrEventNotFound if the owning event does not exist.
//   - error: admin.ErrSlotConflict on a generated-ID collision (practically
//     unreachable with uuid.NewString, kept for symmetry with the storage
//     layer's uniqueness-retry pattern).
func (s *Service) CreateSlot(
	ctx context.Context,
	eventID string,
	startTime, endTime time.Time,
	totalCapacity int,
	priceCents int64,
) (string, error) {
	const op = "service.admin.CreateSlot"

	id := uuid.NewString()

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if _, err := s.store.Events().With(tx).GetEvent(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		slot := domain.TimeSlot{
			ID:            id,
			EventID:       eventID,
			StartTime:     startTime,
			EndTime:       endTime,
			TotalCapacity: totalCapacity,
			PriceCents:    priceCents,
		}

		if err := s.store.Slots().With(tx).CreateSlot(ctx, slot); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrSlotConflict)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
			_ = s.pubsub.PublishEventChanged(ctx, eventID, time.Now().Unix())
		})

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}
