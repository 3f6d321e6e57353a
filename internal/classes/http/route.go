package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, shopAdminMiddleware gin.HandlerFunc) {
	g.GET("/classes/occurrences", h.ListOccurrences)

	group := g.Group("/coach/classes")
	group.Use(authMiddleware)
	{
		group.GET("/templates", h.ListTemplates)
		group.POST("/templates", h.CreateTemplate)
		group.PATCH("/templates/:id", h.UpdateTemplate)
		group.DELETE("/templates/:id", h.DeleteTemplate)

		group.POST("/occurrences/generate", shopAdminMiddleware, h.Generate)
	}
}
