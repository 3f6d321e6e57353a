package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/coach-booking-backend/internal/availability/http"
	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/coach-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	classesHttp "github.com/nekogravitycat/coach-booking-backend/internal/classes/http"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	coachHttp "github.com/nekogravitycat/coach-booking-backend/internal/coach/http"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
	offeringHttp "github.com/nekogravitycat/coach-booking-backend/internal/offering/http"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/ratelimit"
)

type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger
	JWTManager   *auth.JWTManager

	CoachService        coach.Service
	OfferingService     offering.Service
	AvailabilityService availability.Service
	BookingService      booking.Service
	ClassService        classes.Service

	OccurrenceWeeks int
	// Limiter guards login and the public booking endpoints.
	Limiter *ratelimit.Limiter
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// shopAdminMiddleware: Further checks if the authenticated coach administers the business.
	shopAdminMiddleware := RequireShopAdmin(cfg.CoachService)
	limiter := cfg.Limiter.Middleware()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	coachHandler := coachHttp.NewHandler(cfg.CoachService, cfg.JWTManager)
	offeringHandler := offeringHttp.NewHandler(cfg.OfferingService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	classesHandler := classesHttp.NewHandler(cfg.ClassService, cfg.OccurrenceWeeks)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		coachHttp.RegisterRoutes(v1, coachHandler, authMiddleware, shopAdminMiddleware, limiter)
		offeringHttp.RegisterRoutes(v1, offeringHandler, authMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, shopAdminMiddleware, limiter)
		classesHttp.RegisterRoutes(v1, classesHandler, authMiddleware, shopAdminMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000", // Frontend dev server
			"http://localhost:8081", // Swagger
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
