package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/trailstay/booking-backend/internal/api"
	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/booking"
	"github.com/trailstay/booking-backend/internal/notify"
	"github.com/trailstay/booking-backend/internal/property"
	"github.com/trailstay/booking-backend/internal/sweep"
	"github.com/trailstay/booking-backend/internal/tour"
	"github.com/trailstay/booking-backend/internal/tourbooking"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	PendingTTL   time.Duration
	NotifyBuffer int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Events     *notify.Dispatcher
	Sweeper    *sweep.Sweeper
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Post-commit event pipeline. The log-only notifier and payment gateway
	// stand in for real email/SMS and escrow collaborators.
	events := notify.NewDispatcher(cfg.NotifyBuffer, cfg.Logger,
		notify.NewNotifierSink(notify.NewLogNotifier(cfg.Logger)),
		notify.NewPaymentSink(notify.NewLogPaymentGateway(cfg.Logger)),
	)

	// Property Module (the booking repository doubles as its reservation counter)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	propRepo := property.NewPgxRepository(cfg.DBPool)
	propService := property.NewService(propRepo, bookingRepo)

	// Blocked Range Module (host manual blocks)
	blockRepo := blockedrange.NewPgxRepository(cfg.DBPool)
	blockService := blockedrange.NewService(blockRepo, propService)

	// Booking Module
	bookingService := booking.NewService(bookingRepo, propService, events, cfg.Logger)

	// Tour Module
	tourBookingRepo := tourbooking.NewPgxRepository(cfg.DBPool)
	tourRepo := tour.NewPgxRepository(cfg.DBPool)
	tourService := tour.NewService(tourRepo, tourBookingRepo)

	// Tour Booking Module
	tourBookingService := tourbooking.NewService(tourBookingRepo, tourService, events, cfg.Logger)

	// Expiry sweep covers both reservation kinds.
	sweeper := sweep.NewSweeper(cfg.PendingTTL, cfg.Logger, bookingService, tourBookingService)

	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		PropertyService:    propService,
		BlockService:       blockService,
		BookingService:     bookingService,
		TourService:        tourService,
		TourBookingService: tourBookingService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Events:     events,
		Sweeper:    sweeper,
	}
}
