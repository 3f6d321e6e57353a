package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

var (
	ErrUnauthorized = apperror.New(http.StatusUnauthorized, "unauthorized")
	ErrNotShopAdmin = apperror.New(http.StatusForbidden, "forbidden: shop admin access required")
)

// RequireShopAdmin ensures the authenticated coach administers the business.
// It MUST be used after auth.AuthRequired middleware.
func RequireShopAdmin(coachService coach.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		coachID := auth.GetCoachID(c)
		if coachID == "" {
			response.Error(c, ErrUnauthorized)
			c.Abort()
			return
		}

		isAdmin, err := coachService.IsShopAdmin(c.Request.Context(), coachID)
		if err != nil {
			// A token for a deleted coach is no longer a valid identity.
			_ = c.Error(err)
			response.Error(c, apperror.Wrap(err, ErrUnauthorized.Code, ErrUnauthorized.Message))
			c.Abort()
			return
		}

		if !isAdmin {
			response.Error(c, ErrNotShopAdmin)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestLogger logs each request once it has been handled. Errors recorded
// on the context (internal causes hidden from the client) are attached.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
