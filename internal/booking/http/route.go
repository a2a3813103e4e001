package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/availability", h.CheckAvailability)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id/status", h.ChangeStatus)
		group.PATCH("/:id/reschedule", h.Reschedule)
	}
}
