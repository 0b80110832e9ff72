// Package availability implements the Availability Calculator (C3):
// list_availability and can_book.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slotreserve/src/internal/clock"
	"github.com/slotreserve/src/internal/domain"
	"github.com/slotreserve/src/internal/repository"
	postgresrepo "github.com/slotreserve/src/internal/repository/postgres"
	redisrepo "github.com/slotreserve/src/internal/repository/redis"
)

type Config struct {
	CacheTTL time.Duration
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	clock clock.Clock
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, clk clock.Clock, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Second
	}

	if clk == nil {
		clk = clock.Real()
	}

	return &Service{store: store, cache: cache, clock: clk, cfg: cfg}
}

// ListAvailability implements spec §4.3 list_availability. The
// session-agnostic base (every active hold subtracted, regardless of
// session) is cached and invalidated by every committed create_hold,
// release_hold and confirm_booking; the caller's own held quantity is added
// back live so a mid-booking refresh never shows the caller's own hold
// counted against them.
//
// Returns:
//   - error: availability.ErrEventNotFound if the event does not exist.
func (s *Service) ListAvailability(ctx context.Context, eventID, sessionID string) ([]domain.AvailabilityRow, error) {
	const op = "service.availability.ListAvailability"

	if _, err := s.store.Events().GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	now := s.clock.Now()

	base, err := redisrepo.GetOrSetJSON(
		ctx, s.cache, redisrepo.KeyEventAvailability(eventID), s.cfg.CacheTTL,
		func(ctx context.Context) ([]domain.AvailabilityRow, error) {
			return s.store.Slots().ListAvailability(ctx, eventID, now)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	correction, err := s.store.Holds().ActiveHoldQuantityBySlotForSession(ctx, eventID, sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	out := make([]domain.AvailabilityRow, len(base))
	for i, row := range base {
		row.EffectiveAvailable += correction[row.SlotID]
		out[i] = row
	}

	return out, nil
}

// CanBook implements spec §4.3 can_book. Unlike ListAvailability it never
// excludes the caller's own holds — there is no session argument — so it
// queries the session-agnostic count directly rather than going through the
// cache, which already reflects that same base.
func (s *Service) CanBook(ctx context.Context, eventID string, quantity int) (bool, *string, int, error) {
	const op = "service.availability.CanBook"

	if quantity <= 0 {
		quantity = 1
	}

	event, err := s.store.Events().GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, reason("event not found"), 0, nil
		}
		return false, nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	if !event.Bookable() {
		return false, reason("event is not bookable"), 0, nil
	}

	count, err := s.store.Slots().CountBookableSlots(ctx, eventID, quantity, s.clock.Now())
	if err != nil {
		return false, nil, 0, fmt.Errorf("%s:%w", op, err)
	}

	return count > 0, nil, count, nil
}

func reason(s string) *string { return &s }
