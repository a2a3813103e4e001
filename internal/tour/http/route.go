package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	tours := g.Group("/tours")

	// === Public Routes ===
	tours.GET("", h.List)
	tours.GET("/:id", h.Get)
	tours.GET("/:id/schedules", h.ListSchedules)

	// === Authenticated Routes ===
	auth := tours.Group("")
	auth.Use(authMiddleware)
	{
		auth.POST("", h.Create)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Deactivate)
		auth.POST("/:id/schedules", h.CreateSchedule)
	}

	// Schedule lookups live on their own prefix so the schedule ID is the
	// only path parameter.
	schedules := g.Group("/schedules")
	schedules.GET("/:scheduleID", h.GetSchedule)

	schedAuth := schedules.Group("")
	schedAuth.Use(authMiddleware)
	{
		schedAuth.DELETE("/:scheduleID", h.CloseSchedule)
	}
}
