package httpgin

import "time"

type AvailabilityRowResponse struct {
	SlotID             string    `json:"slot_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	TotalCapacity      int       `json:"total_capacity"`
	EffectiveAvailable int       `json:"effective_available"`
	PriceCents         int64     `json:"price_cents"`
}

type CanBookResponse struct {
	CanBook            bool    `json:"can_book"`
	Reason             *string `json:"reason,omitempty"`
	AvailableSlotCount int     `json:"available_slot_count"`
}

type CreateHoldRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	UserID      string `json:"user_id"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	DurationMin int    `json:"duration_min"`
}

type CreateHoldResponse struct {
	HoldID    string    `json:"hold_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyHoldResponse struct {
	IsValid   bool       `json:"is_valid"`
	Reason    *string    `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type ReleaseHoldResponse struct {
	Released bool `json:"released"`
}

type AttendeeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

type ConfirmBookingRequest struct {
	Attendee AttendeeRequest `json:"attendee" binding:"required"`
}

type ConfirmBookingResponse struct {
	BookingID string `json:"booking_id"`
}

type CreateEventRequest struct {
	Status     string `json:"status" binding:"required"`
	Visibility string `json:"visibility" binding:"required"`
	Title      string `json:"title" binding:"required"`
}

type CreateEventResponse struct {
	EventID string `json:"event_id"`
}

type CreateSlotRequest struct {
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	TotalCapacity int       `json:"total_capacity" binding:"required,gt=0"`
	PriceCents    int64     `json:"price_cents"`
}

type CreateSlotResponse struct {
	SlotID string `json:"slot_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
