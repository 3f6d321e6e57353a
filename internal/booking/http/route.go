package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the public booking endpoints behind limiter and the
// coach dashboard behind authMiddleware.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, shopAdminMiddleware, limiter gin.HandlerFunc) {
	public := g.Group("/bookings")
	public.Use(limiter)
	{
		public.POST("/private", h.CreatePrivate)
		public.POST("/class", h.CreateClass)
		public.POST("/approve/:token", h.Approve)
		public.POST("/deny/:token", h.Deny)
		public.POST("/cancel/:token", h.Cancel)
	}

	coach := g.Group("/coach/bookings")
	coach.Use(authMiddleware)
	{
		coach.GET("", h.List)
		coach.GET("/:id", h.Get)
		coach.POST("/:id/approve", h.Approve)
		coach.POST("/:id/deny", h.Deny)
		coach.POST("/:id/cancel", h.Cancel)
		coach.POST("/sweep", shopAdminMiddleware, h.Sweep)
	}
}
