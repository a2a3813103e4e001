package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/properties")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/calendar", h.Calendar)

	// === Authenticated Routes ===
	auth := group.Group("")
	auth.Use(authMiddleware)
	{
		auth.POST("", h.Create)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Delete)

		auth.GET("/:id/blocks", h.ListBlocks)
		auth.POST("/:id/blocks", h.CreateBlock)
		auth.DELETE("/:id/blocks/:blockID", h.RemoveBlock)
	}
}
