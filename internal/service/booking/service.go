// Package booking implements the Booking Finaliser (C5): confirm_booking.
package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotreserve/src/internal/clock"
	"github.com/slotreserve/src/internal/domain"
	"github.com/slotreserve/src/internal/repository"
	postgresrepo "github.com/slotreserve/src/internal/repository/postgres"
	redisrepo "github.com/slotreserve/src/internal/repository/redis"
	"github.com/slotreserve/src/internal/uow"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const maxRefAttempts = 5

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.EventsPubSub
	uow    *uow.UoW
	clock  clock.Clock
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.EventsPubSub,
	clk clock.Clock,
) *Service {
	if clk == nil {
		clk = clock.Real()
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		clock:  clk,
	}
}

// ConfirmBooking implements spec §4.5. When it fails after the hold's slot
// is known, it also appends an AttemptLog row with status 'failed' in its
// own tiny transaction, outside the rolled-back main transaction. Failures
// before that point (invalid attendee, unknown hold, missing slot) write no
// AttemptLog row.
//
// Returns:
//   - error: booking.ErrInvalidAttendee, booking.ErrHoldInvalid,
//     booking.ErrCapacityExceeded, or repository.ErrTransient.
func (s *Service) ConfirmBooking(ctx context.Context, holdID string, attendee domain.Attendee) (string, error) {
	const op = "service.booking.ConfirmBooking"

	attendee, err := normalizeAttendee(attendee)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	var bookingID string
	var failureCtx logContext

	confirmErr := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		now := s.clock.Now()
		holds := s.store.Holds().With(tx)
		slots := s.store.Slots().With(tx)
		bookings := s.store.Bookings().With(tx)

		h, err := holds.GetHoldForUpdate(ctx, holdID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrHoldInvalid)
			}
			return fmt.Errorf("%s:%w", op, err)
		}
		failureCtx.slotID = h.SlotID
		failureCtx.userID = h.UserID
		failureCtx.email = attendee.Email

		if !h.IsActive || h.Expired(now) {
			if slot, err := slots.GetSlot(ctx, h.SlotID); err == nil {
				failureCtx.eventID = slot.EventID
			}
			return fmt.Errorf("%s:%w", op, ErrHoldInvalid)
		}

		slot, err := slots.GetSlotForUpdate(ctx, h.SlotID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		failureCtx.eventID = slot.EventID

		active, err := holds.ActiveHoldsForSlot(ctx, h.SlotID, now)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		residual := domain.EffectiveAvailable(*slot, active, "", h.ID, now)
		if residual < h.Quantity {
			return fmt.Errorf("%s:%w", op, ErrCapacityExceeded)
		}

		var ref string
		var b domain.Booking
		for attempt := 0; attempt < maxRefAttempts; attempt++ {
			ref = generateReference()
			b = domain.Booking{
				ID:          uuid.NewString(),
				EventID:     slot.EventID,
				SlotID:      slot.ID,
				UserID:      h.UserID,
				Attendee:    attendee,
				Reference:   ref,
				Status:      domain.BookingConfirmed,
				ConfirmedAt: now,
				CreatedAt:   now,
			}

			// A unique violation aborts the transaction, so each attempt runs
			// under a savepoint that a collision rolls back to.
			if _, spErr := tx.Exec(ctx, "SAVEPOINT booking_ref"); spErr != nil {
				return fmt.Errorf("%s:%w", op, spErr)
			}
			err = bookings.Insert(ctx, b)
			if err == nil {
				break
			}
			if !errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, err)
			}
			if _, spErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT booking_ref"); spErr != nil {
				return fmt.Errorf("%s:%w", op, spErr)
			}
		}
		if err != nil {
			return fmt.Errorf("%s:%w", op, repository.ErrTransient)
		}

		if err := slots.IncrementBooked(ctx, slot.ID, h.Quantity); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if _, err := holds.Deactivate(ctx, h.ID, now); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.store.AttemptLog().With(tx).Insert(ctx, domain.AttemptLog{
			ID:          uuid.NewString(),
			EventID:     slot.EventID,
			SlotID:      slot.ID,
			UserID:      h.UserID,
			Email:       attendee.Email,
			Status:      domain.AttemptSuccess,
			AttemptedAt: now,
		}); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		bookingID = b.ID
		eventID := slot.EventID

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
			_ = s.pubsub.PublishEventChanged(ctx, eventID, now.Unix())
		})

		return nil
	})

	if confirmErr != nil {
		s.logFailure(ctx, failureCtx, confirmErr)
		return "", confirmErr
	}

	return bookingID, nil
}

type logContext struct {
	eventID string
	slotID  string
	userID  *string
	email   string
}

func (s *Service) logFailure(ctx context.Context, lc logContext, cause error) {
	if lc.eventID == "" || lc.slotID == "" {
		// The hold or its slot could not be loaded — there is no event/slot
		// to attach the attempt to, so there is nothing useful to log.
		return
	}

	_ = s.store.AttemptLog().Insert(ctx, domain.AttemptLog{
		ID:            uuid.NewString(),
		EventID:       lc.eventID,
		SlotID:        lc.slotID,
		UserID:        lc.userID,
		Email:         lc.email,
		Status:        domain.AttemptFailed,
		AttemptedAt:   s.clock.Now(),
		FailureReason: truncate(cause.Error(), 250),
	})
}

func normalizeAttendee(a domain.Attendee) (domain.Attendee, error) {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Notes = strings.TrimSpace(a.Notes)

	if a.FirstName == "" || a.LastName == "" {
		return a, ErrInvalidAttendee
	}

	if !emailPattern.MatchString(a.Email) {
		return a, ErrInvalidAttendee
	}

	return a, nil
}

func generateReference() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	out := make([]byte, 8)
	for i, v := range b {
		out[i] = refAlphabet[int(v)%len(refAlphabet)]
	}
	return string(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
