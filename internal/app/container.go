package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/api"
	"github.com/nekogravitycat/coach-booking-backend/internal/auth"
	"github.com/nekogravitycat/coach-booking-backend/internal/availability"
	"github.com/nekogravitycat/coach-booking-backend/internal/booking"
	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/classes"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/notify"
	"github.com/nekogravitycat/coach-booking-backend/internal/offering"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/ratelimit"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	Timezone              string
	ApprovalTTL           time.Duration
	DefaultMinHoursNotice int
	OccurrenceWeeks       int

	RateLimitMax    int
	RateLimitWindow time.Duration

	BusinessName     string
	BusinessLocation string
	PublicBaseURL    string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager

	Coaches  coach.Service
	Bookings booking.Service
	Classes  classes.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conv, err := civiltime.NewConverter(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("business timezone: %w", err)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Coach Module
	coachRepo := coach.NewPgxRepository(cfg.DBPool)
	coachService := coach.NewService(coachRepo, passwordHasher, cfg.DefaultMinHoursNotice, logger.Named("coach"))

	// Offering Module
	offeringRepo := offering.NewPgxRepository(cfg.DBPool)
	offeringService := offering.NewService(offeringRepo, logger.Named("offering"))

	// Notifications
	dispatcher := notify.NewDispatcher(
		coachService,
		notify.NewLogSender(logger.Named("mail")),
		notify.NewInviteBuilder(cfg.BusinessName, cfg.BusinessLocation, hostOf(cfg.PublicBaseURL)),
		conv,
		notify.Config{BusinessName: cfg.BusinessName, PublicBaseURL: cfg.PublicBaseURL},
		logger.Named("notify"),
	)

	// Booking Module
	bookingStore := booking.NewPgxStore(cfg.DBPool)
	bookingService := booking.NewService(bookingStore, offeringService, coachService, cfg.ApprovalTTL, logger.Named("booking"),
		booking.WithNotifier(dispatcher),
	)

	// Availability Module
	availabilityRepo := availability.NewPgxRepository(cfg.DBPool)
	availabilityService := availability.NewService(availabilityRepo, bookingStore, conv, logger.Named("availability"))

	// Classes Module
	classStore := classes.NewPgxStore(cfg.DBPool)
	classService := classes.NewService(classStore, offeringService, conv, logger.Named("classes"))

	// API Router Config
	routerParams := api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              logger.Named("http"),
		JWTManager:          jwtManager,
		CoachService:        coachService,
		OfferingService:     offeringService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		ClassService:        classService,
		OccurrenceWeeks:     cfg.OccurrenceWeeks,
		Limiter:             ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow),
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Coaches:    coachService,
		Bookings:   bookingService,
		Classes:    classService,
	}, nil
}
