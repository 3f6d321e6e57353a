package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	public := g.Group("/offerings")
	{
		public.GET("", h.List)
		public.GET("/:id", h.Get)
	}

	coach := g.Group("/coach/offerings")
	coach.Use(authMiddleware)
	{
		coach.GET("", h.ListMine)
		coach.POST("", h.Create)
		coach.PATCH("/:id", h.Update)
	}
}
