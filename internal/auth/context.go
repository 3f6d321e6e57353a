package auth

import "github.com/gin-gonic/gin"

const (
	coachIDKey    = "coachID"
	coachEmailKey = "coachEmail"
)

// GetCoachID returns the authenticated coach's ID or empty string.
func GetCoachID(c *gin.Context) string {
	return c.GetString(coachIDKey)
}

// GetCoachEmail returns the authenticated coach's email or empty string.
func GetCoachEmail(c *gin.Context) string {
	return c.GetString(coachEmailKey)
}
