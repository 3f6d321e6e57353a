package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, shopAdminMiddleware gin.HandlerFunc, loginLimiter gin.HandlerFunc) {
	g.GET("/coaches", h.ListPublic)
	g.GET("/cancellation-policy", h.GetPolicy)
	g.POST("/coach/login", loginLimiter, h.Login)

	coach := g.Group("/coach")
	coach.Use(authMiddleware)
	{
		coach.GET("/me", h.Me)
		coach.GET("/settings", h.GetSettings)
		coach.PATCH("/settings", h.UpdateSettings)

		coach.POST("/coaches", shopAdminMiddleware, h.Create)
		coach.PUT("/cancellation-policy", shopAdminMiddleware, h.UpdatePolicy)
	}
}
