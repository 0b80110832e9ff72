package service

import (
	"github.com/slotreserve/src/internal/clock"
	postgres "github.com/slotreserve/src/internal/repository/postgres"
	redis "github.com/slotreserve/src/internal/repository/redis"
	"github.com/slotreserve/src/internal/service/admin"
	"github.com/slotreserve/src/internal/service/availability"
	"github.com/slotreserve/src/internal/service/booking"
	"github.com/slotreserve/src/internal/service/hold"
)

type Services struct {
	Availability *availability.Service
	Hold         *hold.Service
	Booking      *booking.Service
	Admin        *admin.Service
}

type Config struct {
	Availability availability.Config
	Hold         hold.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.EventsPubSub,
	limiter *redis.SlidingWindowLimiter,
	clk clock.Clock,
	cfg Config,
) *Services {
	return &Services{
		Availability: availability.New(store, cache, clk, cfg.Availability),
		Hold:         hold.New(store, cache, pubsub, limiter, clk, cfg.Hold),
		Booking:      booking.New(store, cache, pubsub, clk),
		Admin:        admin.New(store, cache, pubsub),
	}
}
