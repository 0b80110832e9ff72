package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/slotreserve/src/internal/domain"
	"github.com/slotreserve/src/internal/repository"
	redisrepo "github.com/slotreserve/src/internal/repository/redis"
	"github.com/slotreserve/src/internal/service"
	"github.com/slotreserve/src/internal/service/admin"
	"github.com/slotreserve/src/internal/service/availability"
	"github.com/slotreserve/src/internal/service/booking"
	"github.com/slotreserve/src/internal/service/hold"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API — spec §6 callable surface.
	r.GET("/events/:id/availability", handleListAvailability(svcs))
	r.GET("/events/:id/can-book", handleCanBook(svcs))

	r.POST("/slots/:id/holds", handleCreateHold(svcs, idem))
	r.GET("/holds/:id", handleVerifyHold(svcs))
	r.POST("/holds/:id/release", handleReleaseHold(svcs))
	r.POST("/holds/:id/confirm", handleConfirmBooking(svcs))

	// Admin seeding surface — see SPEC_FULL.md "SUPPLEMENTED FEATURES".
	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/events", handleCreateEvent(svcs))
		adminGroup.POST("/events/:id/slots", handleCreateSlot(svcs))
	}

	return r
}

// --- Handlers ---

// @Summary  List availability
// @Param    id          path   string  true   "Event ID"
// @Param    session_id  query  string  false  "caller session"
// @Success  200  {array}   AvailabilityRowResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id}/availability [get]
func handleListAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("id")
		sessionID := c.Query("session_id")

		rows, err := svcs.Availability.ListAvailability(c.Request.Context(), eventID, sessionID)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]AvailabilityRowResponse, len(rows))
		for i, row := range rows {
			out[i] = AvailabilityRowResponse{
				SlotID:             row.SlotID,
				StartTime:          row.StartTime,
				EndTime:            row.EndTime,
				TotalCapacity:      row.TotalCapacity,
				EffectiveAvailable: row.EffectiveAvailable,
				PriceCents:         row.PriceCents,
			}
		}

		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=15", true)
	}
}

// @Summary  Can book
// @Param    id        path   string  true   "Event ID"
// @Param    quantity  query  int     false  "seats requested, default 1"
// @Success  200  {object}  CanBookResponse
// @Router   /events/{id}/can-book [get]
func handleCanBook(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("id")
		quantity := parseIntDefault(c.Query("quantity"), 1)

		canBook, reason, count, err := svcs.Availability.CanBook(c.Request.Context(), eventID, quantity)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, CanBookResponse{
			CanBook:            canBook,
			Reason:             reason,
			AvailableSlotCount: count,
		}, "public, max-age=5", true)
	}
}

// @Summary  Create hold (idempotent)
// @Param    id   path  string  true  "Slot ID"
// @Param    req  body  CreateHoldRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  CreateHoldResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "capacity exceeded / idem in progress"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /slots/{id}/holds [post]
func handleCreateHold(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		slotID := c.Param("id")

		var req CreateHoldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemHold(slotID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		var userID *string
		if req.UserID != "" {
			userID = &req.UserID
		}

		var duration *time.Duration
		if req.DurationMin > 0 {
			d := time.Duration(req.DurationMin) * time.Minute
			duration = &d
		}

		rlKey := "session:" + req.SessionID

		holdID, expiresAt, err := svcs.Hold.CreateHold(
			c.Request.Context(),
			slotID, req.SessionID, req.Quantity,
			userID, duration, rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
				return
			}
			respondErr(c, err)
			return
		}

		resp := CreateHoldResponse{HoldID: holdID, ExpiresAt: expiresAt}

		if idemStorageKey != "" && idem != nil {
			if b, err := json.Marshal(resp); err == nil {
				_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Verify hold
// @Param    id  path  string  true  "Hold ID"
// @Success  200  {object}  VerifyHoldResponse
// @Router   /holds/{id} [get]
func handleVerifyHold(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		holdID := c.Param("id")

		isValid, reason, expiresAt, err := svcs.Hold.VerifyHold(c.Request.Context(), holdID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, VerifyHoldResponse{
			IsValid:   isValid,
			Reason:    reason,
			ExpiresAt: expiresAt,
		})
	}
}

// @Summary  Release hold
// @Param    id  path  string  true  "Hold ID"
// @Success  200  {object}  ReleaseHoldResponse
// @Router   /holds/{id}/release [post]
func handleReleaseHold(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		holdID := c.Param("id")

		released, err := svcs.Hold.ReleaseHold(c.Request.Context(), holdID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, ReleaseHoldResponse{Released: released})
	}
}

// @Summary  Confirm booking
// @Param    id   path  string  true  "Hold ID"
// @Param    req  body  ConfirmBookingRequest  true  "payload"
// @Success  201  {object}  ConfirmBookingResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /holds/{id}/confirm [post]
func handleConfirmBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		holdID := c.Param("id")

		var req ConfirmBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		bookingID, err := svcs.Booking.ConfirmBooking(c.Request.Context(), holdID, domain.Attendee{
			FirstName: req.Attendee.FirstName,
			LastName:  req.Attendee.LastName,
			Email:     req.Attendee.Email,
			Phone:     req.Attendee.Phone,
			Notes:     req.Attendee.Notes,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, ConfirmBookingResponse{BookingID: bookingID})
	}
}

// @Summary  Create event
// @Param    req  body  CreateEventRequest  true  "payload"
// @Success  201  {object}  CreateEventResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Admin.CreateEvent(
			c.Request.Context(),
			domain.EventStatus(req.Status),
			domain.Visibility(req.Visibility),
			req.Title,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Create slot
// @Param    id   path  string  true  "Event ID"
// @Param    req  body  CreateSlotRequest  true  "payload"
// @Success  201  {object}  CreateSlotResponse
// @Router   /admin/events/{id}/slots [post]
func handleCreateSlot(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("id")

		var req CreateSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Admin.CreateSlot(
			c.Request.Context(),
			eventID, req.StartTime, req.EndTime, req.TotalCapacity, req.PriceCents,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateSlotResponse{SlotID: id})
	}
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	case errors.Is(err, availability.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, hold.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
		return
	case errors.Is(err, hold.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session_id required"})
		return
	case errors.Is(err, hold.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "slot not found"})
		return
	case errors.Is(err, hold.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "slot unavailable"})
		return
	case errors.Is(err, hold.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, booking.ErrInvalidAttendee):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid attendee"})
		return
	case errors.Is(err, booking.ErrHoldInvalid):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "hold invalid"})
		return
	case errors.Is(err, booking.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "capacity exceeded"})
		return
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	case errors.Is(err, admin.ErrSlotConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "slot conflict"})
		return
	case errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, repository.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "transient storage error, retry once"})
		return
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
}
