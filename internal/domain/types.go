// Package domain holds the entities the reservation core reasons about:
// events, time slots, holds, bookings and the attempt log.
package domain

import "time"

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventActive    EventStatus = "active"
	EventPaused    EventStatus = "paused"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	// VisibilityProtected mirrors a newer call site in the source. Its
	// intent beyond "treat like public/unlisted for authorization" is
	// undefined; no further semantics are invented here (see spec §9).
	VisibilityProtected Visibility = "protected"
)

type Event struct {
	ID         string
	Status     EventStatus
	Visibility Visibility
	Title      string
}

// Bookable reports whether an anonymous caller may book this event at all,
// independent of any particular slot's own state.
func (e Event) Bookable() bool {
	if e.Status != EventActive {
		return false
	}
	switch e.Visibility {
	case VisibilityPublic, VisibilityUnlisted, VisibilityProtected:
		return true
	default:
		return false
	}
}

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotFull      SlotStatus = "full"
	SlotCancelled SlotStatus = "cancelled"
)

// TimeSlot is called a "slot lock" target throughout; the source calls it
// a time slot owned by an event.
type TimeSlot struct {
	ID            string
	EventID       string
	StartTime     time.Time
	EndTime       time.Time
	TotalCapacity int
	BookedCount   int
	Status        SlotStatus
	PriceCents    int64
}

// AvailableCount is the derived quantity from spec §3: total minus booked.
// It does not subtract active holds — that subtraction is the Availability
// Calculator's job (effective_available), computed over a snapshot of holds
// the storage layer hands back alongside the slot.
func (s TimeSlot) AvailableCount() int {
	n := s.TotalCapacity - s.BookedCount
	if n < 0 {
		return 0
	}
	return n
}

// Bookable reports whether this slot may receive new holds right now.
func (s TimeSlot) Bookable(now time.Time) bool {
	return s.Status == SlotAvailable && s.StartTime.After(now)
}

// Hold is the source's "slot lock": a short-lived, server-side reservation
// against a slot's capacity.
type Hold struct {
	ID         string
	SlotID     string
	SessionID  string
	UserID     *string
	Quantity   int
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IsActive   bool
	ReleasedAt *time.Time
}

// Expired reports whether the hold's expiry has passed at the given instant.
func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// ActiveAt reports whether the hold still counts against capacity at now:
// active and not yet expired.
func (h Hold) ActiveAt(now time.Time) bool {
	return h.IsActive && !h.Expired(now)
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Attendee struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
}

type Booking struct {
	ID          string
	EventID     string
	SlotID      string
	UserID      *string
	Attendee    Attendee
	Reference   string
	Status      BookingStatus
	ConfirmedAt time.Time
	CreatedAt   time.Time
}

type AttemptStatus string

const (
	AttemptSuccess   AttemptStatus = "success"
	AttemptFailed    AttemptStatus = "failed"
	AttemptAbandoned AttemptStatus = "abandoned"
)

type AttemptLog struct {
	ID            string
	EventID       string
	SlotID        string
	UserID        *string
	Email         string
	Status        AttemptStatus
	AttemptedAt   time.Time
	FailureReason string
}

// AvailabilityRow is the per-slot projection returned by list_availability
// (spec §4.3).
type AvailabilityRow struct {
	SlotID             string
	StartTime          time.Time
	EndTime            time.Time
	TotalCapacity      int
	EffectiveAvailable int
	PriceCents         int64
}

// EffectiveAvailable implements the formula of spec §4.3: a slot's
// available count (AvailableCount, total minus booked) minus the quantity held by every session other than the
// caller's, counting only holds that are currently active and unexpired.
//
// excludeSessionID is the caller's own session — its holds are never
// subtracted. excludeHoldID, when non-empty, additionally removes one
// specific hold from the subtracted set regardless of session; this is the
// shape confirm_booking needs in spec §4.5 step 3, where the hold being
// consumed must not double-count against itself.
func EffectiveAvailable(
	slot TimeSlot,
	holds []Hold,
	excludeSessionID string,
	excludeHoldID string,
	now time.Time,
) int {
	held := 0
	for _, h := range holds {
		if h.ID == excludeHoldID {
			continue
		}
		if excludeSessionID != "" && h.SessionID == excludeSessionID {
			continue
		}
		if !h.ActiveAt(now) {
			continue
		}
		held += h.Quantity
	}

	avail := slot.AvailableCount() - held
	if avail < 0 {
		return 0
	}
	return avail
}
