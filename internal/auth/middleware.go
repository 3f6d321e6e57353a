package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/response"
)

var (
	ErrMissingAuthHeader = apperror.New(http.StatusUnauthorized, "missing Authorization header")
	ErrMalformedHeader   = apperror.New(http.StatusUnauthorized, "invalid Authorization header format")
	ErrInvalidToken      = apperror.New(http.StatusUnauthorized, "invalid or expired token")
)

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMalformedHeader
	}
	return strings.TrimSpace(token), nil
}

// AuthRequired validates the coach access token and stores the coach's ID and
// email on the context for GetCoachID and GetCoachEmail.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			response.Error(c, apperror.Wrap(err, ErrInvalidToken.Code, ErrInvalidToken.Message))
			c.Abort()
			return
		}

		c.Set(coachIDKey, claims.CoachID())
		c.Set(coachEmailKey, claims.Email)
		c.Next()
	}
}
