package domain

import (
	"testing"
	"time"
)

func mkSlot(total, booked int) TimeSlot {
	return TimeSlot{
		ID:            "slot-1",
		TotalCapacity: total,
		BookedCount:   booked,
		Status:        SlotAvailable,
	}
}

func TestTimeSlot_AvailableCount(t *testing.T) {
	cases := []struct {
		name   string
		total  int
		booked int
		want   int
	}{
		{"plenty left", 10, 3, 7},
		{"exactly full", 5, 5, 0},
		{"overbooked clamps to zero", 5, 7, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mkSlot(tc.total, tc.booked).AvailableCount()
			if got != tc.want {
				t.Errorf("AvailableCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTimeSlot_Bookable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status SlotStatus
		start  time.Time
		want   bool
	}{
		{"available and future", SlotAvailable, now.Add(time.Hour), true},
		{"available but past", SlotAvailable, now.Add(-time.Hour), false},
		{"available but starts now", SlotAvailable, now, false},
		{"full", SlotFull, now.Add(time.Hour), false},
		{"cancelled", SlotCancelled, now.Add(time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := TimeSlot{Status: tc.status, StartTime: tc.start}
			if got := s.Bookable(now); got != tc.want {
				t.Errorf("Bookable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvent_Bookable(t *testing.T) {
	cases := []struct {
		name       string
		status     EventStatus
		visibility Visibility
		want       bool
	}{
		{"active public", EventActive, VisibilityPublic, true},
		{"active unlisted", EventActive, VisibilityUnlisted, true},
		{"active protected treated like public/unlisted", EventActive, VisibilityProtected, true},
		{"active private", EventActive, VisibilityPrivate, false},
		{"draft public", EventDraft, VisibilityPublic, false},
		{"paused public", EventPaused, VisibilityPublic, false},
		{"cancelled public", EventCancelled, VisibilityPublic, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Event{Status: tc.status, Visibility: tc.visibility}
			if got := e.Bookable(); got != tc.want {
				t.Errorf("Bookable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHold_ExpiredAndActiveAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	h := Hold{IsActive: true, ExpiresAt: now.Add(time.Minute)}
	if h.Expired(now) {
		t.Error("hold with future expiry should not be expired")
	}
	if !h.ActiveAt(now) {
		t.Error("active, unexpired hold should be ActiveAt")
	}

	expired := Hold{IsActive: true, ExpiresAt: now.Add(-time.Second)}
	if !expired.Expired(now) {
		t.Error("hold with past expiry should be expired")
	}
	if expired.ActiveAt(now) {
		t.Error("expired hold should not be ActiveAt")
	}

	// expires_at == now is treated as expired (spec §3: expires_at > created_at,
	// and validity requires expires_at strictly after now).
	boundary := Hold{IsActive: true, ExpiresAt: now}
	if !boundary.Expired(now) {
		t.Error("hold expiring exactly at now should be considered expired")
	}

	released := Hold{IsActive: false, ExpiresAt: now.Add(time.Minute)}
	if released.ActiveAt(now) {
		t.Error("inactive hold should never be ActiveAt regardless of expiry")
	}
}

func TestEffectiveAvailable_ExcludesOwnSessionOnly(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	slot := mkSlot(3, 0)

	holds := []Hold{
		{ID: "h-a", SessionID: "A", Quantity: 2, IsActive: true, ExpiresAt: now.Add(time.Minute)},
	}

	// Scenario 3 from spec §8: session A holds 2 of 3 on a slot; A should see
	// all 3 still available, any other session should see only 1.
	if got := EffectiveAvailable(slot, holds, "A", "", now); got != 3 {
		t.Errorf("own-session exclusion: got %d, want 3", got)
	}
	if got := EffectiveAvailable(slot, holds, "B", "", now); got != 1 {
		t.Errorf("other-session view: got %d, want 1", got)
	}
}

func TestEffectiveAvailable_IgnoresExpiredAndInactiveHolds(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	slot := mkSlot(5, 0)

	holds := []Hold{
		{ID: "h-expired", SessionID: "A", Quantity: 2, IsActive: true, ExpiresAt: now.Add(-time.Second)},
		{ID: "h-released", SessionID: "B", Quantity: 2, IsActive: false, ExpiresAt: now.Add(time.Hour)},
		{ID: "h-active", SessionID: "C", Quantity: 1, IsActive: true, ExpiresAt: now.Add(time.Hour)},
	}

	got := EffectiveAvailable(slot, holds, "", "", now)
	if got != 4 {
		t.Errorf("effective_available = %d, want 4 (only h-active counted)", got)
	}
}

func TestEffectiveAvailable_ExcludesSpecificHoldForConfirm(t *testing.T) {
	// This is the confirm_booking shape (spec §4.5 step 3): the hold being
	// consumed must not double-count against its own residual check.
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	slot := mkSlot(2, 0)

	holds := []Hold{
		{ID: "h-self", SessionID: "A", Quantity: 2, IsActive: true, ExpiresAt: now.Add(time.Minute)},
	}

	got := EffectiveAvailable(slot, holds, "", "h-self", now)
	if got != 2 {
		t.Errorf("residual with self-hold excluded = %d, want 2", got)
	}
}

func TestEffectiveAvailable_NeverNegative(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	slot := mkSlot(1, 1) // AvailableCount() already 0

	holds := []Hold{
		{ID: "h-1", SessionID: "X", Quantity: 5, IsActive: true, ExpiresAt: now.Add(time.Minute)},
	}

	got := EffectiveAvailable(slot, holds, "", "", now)
	if got != 0 {
		t.Errorf("effective_available = %d, want 0 (clamped)", got)
	}
}
