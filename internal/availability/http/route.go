package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/coaches/:id/slots", h.Slots)

	group := g.Group("/coach/availability")
	group.Use(authMiddleware)
	{
		group.GET("/rules", h.ListRules)
		group.POST("/rules", h.CreateRule)
		group.DELETE("/rules/:id", h.DeleteRule)

		group.GET("/exceptions", h.ListExceptions)
		group.POST("/exceptions", h.CreateException)
		group.DELETE("/exceptions/:id", h.DeleteException)
	}
}
