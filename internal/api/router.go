package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/trailstay/booking-backend/internal/auth"
	"github.com/trailstay/booking-backend/internal/blockedrange"
	"github.com/trailstay/booking-backend/internal/booking"
	bookingHttp "github.com/trailstay/booking-backend/internal/booking/http"
	"github.com/trailstay/booking-backend/internal/property"
	propertyHttp "github.com/trailstay/booking-backend/internal/property/http"
	"github.com/trailstay/booking-backend/internal/tour"
	tourHttp "github.com/trailstay/booking-backend/internal/tour/http"
	"github.com/trailstay/booking-backend/internal/tourbooking"
	tourbookingHttp "github.com/trailstay/booking-backend/internal/tourbooking/http"
)

// Config holds everything the router needs to assemble the API surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	PropertyService    property.Service
	BlockService       blockedrange.Service
	BookingService     booking.Service
	TourService        tour.Service
	TourBookingService tourbooking.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	propertyHandler := propertyHttp.NewHandler(cfg.PropertyService, cfg.BlockService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	tourHandler := tourHttp.NewHandler(cfg.TourService)
	tourBookingHandler := tourbookingHttp.NewHandler(cfg.TourBookingService)

	v1 := r.Group("/v1")
	{
		propertyHttp.RegisterRoutes(v1, propertyHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		tourHttp.RegisterRoutes(v1, tourHandler, authMiddleware)
		tourbookingHttp.RegisterRoutes(v1, tourBookingHandler, authMiddleware)
	}

	return r
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
