// Package hold implements the Hold Manager (C4): the two-phase
// reservation state machine — create_hold, verify_hold, release_hold.
package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slotreserve/src/internal/clock"
	"github.com/slotreserve/src/internal/domain"
	"github.com/slotreserve/src/internal/repository"
	postgresrepo "github.com/slotreserve/src/internal/repository/postgres"
	redisrepo "github.com/slotreserve/src/internal/repository/redis"
	"github.com/slotreserve/src/internal/uow"
)

type Config struct {
	DefaultTTL time.Duration
	MinTTL     time.Duration
	MaxTTL     time.Duration
}

type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redisrepo.EventsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
	clock   clock.Clock
	cfg     Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.EventsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	clk clock.Clock,
	cfg Config,
) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 10 * time.Minute
	}

	if cfg.MinTTL <= 0 {
		cfg.MinTTL = 1 * time.Minute
	}

	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = 60 * time.Minute
	}

	if clk == nil {
		clk = clock.Real()
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		clock:   clk,
		cfg:     cfg,
	}
}

// CreateHold implements spec §4.4.1. Runs inside the default serialisable
// transaction (uow.Do retries once on a serialization failure — spec
// §4.4.1's closing paragraph).
//
// Returns:
//   - error: hold.ErrInvalidQuantity, hold.ErrInvalidArgument,
//     hold.ErrSlotNotFound, hold.ErrSlotUnavailable,
//     hold.CapacityExceededError, or repository.ErrTransient.
func (s *Service) CreateHold(
	ctx context.Context,
	slotID, sessionID string,
	quantity int,
	userID *string,
	duration *time.Duration,
	rlKey string,
) (string, time.Time, error) {
	const op = "service.hold.CreateHold"

	if quantity <= 0 {
		return "", time.Time{}, fmt.Errorf("%s:%w", op, ErrInvalidQuantity)
	}

	if sessionID == "" {
		return "", time.Time{}, fmt.Errorf("%s:%w", op, ErrInvalidArgument)
	}

	ttl := s.clampTTL(duration)

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return "", time.Time{}, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	var holdID string
	var expiresAt time.Time

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		now := s.clock.Now()
		slots := s.store.Slots().With(tx)
		holds := s.store.Holds().With(tx)

		if _, err := holds.ReleaseExpired(ctx, slotID, now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		slot, err := slots.GetSlotForUpdate(ctx, slotID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrSlotNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if !slot.Bookable(now) {
			return fmt.Errorf("%s:%w", op, ErrSlotUnavailable)
		}

		active, err := holds.ActiveHoldsForSlot(ctx, slotID, now)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		effAvail := domain.EffectiveAvailable(*slot, active, sessionID, "", now)
		if effAvail < quantity {
			return fmt.Errorf("%s:%w", op, CapacityExceededError{EffectiveAvailable: effAvail})
		}

		if prior, err := holds.GetActiveHoldForSession(ctx, slotID, sessionID); err == nil {
			if _, err := holds.Deactivate(ctx, prior.ID, now); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, err)
		}

		newHold := domain.Hold{
			ID:        uuid.NewString(),
			SlotID:    slotID,
			SessionID: sessionID,
			UserID:    userID,
			Quantity:  quantity,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
			IsActive:  true,
		}

		if err := holds.InsertHold(ctx, newHold); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		holdID = newHold.ID
		expiresAt = newHold.ExpiresAt
		eventID := slot.EventID

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
			_ = s.pubsub.PublishEventChanged(ctx, eventID, now.Unix())
		})

		return nil
	})
	if err != nil {
		return "", time.Time{}, err
	}

	return holdID, expiresAt, nil
}

// VerifyHold implements spec §4.4.2. The self-healing transition runs as a
// single conditional UPDATE (HoldRepo.Deactivate), which is inherently
// atomic — no transaction wrapper is needed for correctness.
func (s *Service) VerifyHold(ctx context.Context, holdID string) (bool, *string, *time.Time, error) {
	const op = "service.hold.VerifyHold"

	h, err := s.store.Holds().GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, reason("not found"), nil, nil
		}
		return false, nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	if !h.IsActive {
		return false, reason("released"), &h.ExpiresAt, nil
	}

	now := s.clock.Now()
	if h.Expired(now) {
		_, _ = s.store.Holds().Deactivate(ctx, holdID, now)
		return false, reason("expired"), &h.ExpiresAt, nil
	}

	return true, nil, &h.ExpiresAt, nil
}

// ReleaseHold implements spec §4.4.3: best-effort, idempotent, never a
// fatal error when the hold was already inactive or absent.
func (s *Service) ReleaseHold(ctx context.Context, holdID string) (bool, error) {
	const op = "service.hold.ReleaseHold"

	h, err := s.store.Holds().GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s:%w", op, err)
	}

	now := s.clock.Now()
	released, err := s.store.Holds().Deactivate(ctx, holdID, now)
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}

	if released {
		if slot, err := s.store.Slots().GetSlot(ctx, h.SlotID); err == nil {
			_ = s.cache.InvalidateEvent(ctx, slot.EventID)
			_ = s.pubsub.PublishEventChanged(ctx, slot.EventID, now.Unix())
		}
	}

	return released, nil
}

func (s *Service) clampTTL(requested *time.Duration) time.Duration {
	ttl := s.cfg.DefaultTTL
	if requested != nil {
		ttl = *requested
	}

	if ttl < s.cfg.MinTTL {
		return s.cfg.MinTTL
	}

	if ttl > s.cfg.MaxTTL {
		return s.cfg.MaxTTL
	}

	return ttl
}

func reason(s string) *string { return &s }
