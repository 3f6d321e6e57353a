package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	RunMigrations     bool
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	BusinessTimezone      string
	BusinessName          string
	BusinessLocation      string
	PublicBaseURL         string
	ApprovalTTL           time.Duration
	DefaultMinHoursNotice int
	OccurrenceWeeks       int

	SweepSchedule      string
	OccurrenceSchedule string

	RateLimitMax    int
	RateLimitWindow time.Duration

	// Optional first account, created on startup when both are set.
	BootstrapCoachEmail    string
	BootstrapCoachPassword string
	BootstrapCoachName     string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	var err error
	cfg := &Config{}

	// Production origins, comma separated (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.RunMigrations, err = getEnvAsBool("RUN_MIGRATIONS", true); err != nil {
		return nil, err
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}

	cfg.BusinessTimezone = getEnv("BUSINESS_TIMEZONE", "America/Los_Angeles")
	cfg.BusinessName = getEnv("BUSINESS_NAME", "Coach Booking")
	cfg.BusinessLocation = getEnv("BUSINESS_LOCATION", "")
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:8080")

	if cfg.ApprovalTTL, err = getEnvAsDuration("APPROVAL_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DefaultMinHoursNotice, err = getEnvAsInt("DEFAULT_MIN_HOURS_NOTICE", 24); err != nil {
		return nil, err
	}
	if cfg.OccurrenceWeeks, err = getEnvAsInt("OCCURRENCE_WEEKS", 8); err != nil {
		return nil, err
	}

	// Cron expressions, standard five-field syntax or descriptors like @every 1m
	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", "@every 1m")
	cfg.OccurrenceSchedule = getEnv("OCCURRENCE_SCHEDULE", "0 3 * * *")

	if cfg.RateLimitMax, err = getEnvAsInt("RATE_LIMIT_MAX", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	cfg.BootstrapCoachEmail = getEnv("BOOTSTRAP_COACH_EMAIL", "")
	cfg.BootstrapCoachPassword = getEnv("BOOTSTRAP_COACH_PASSWORD", "")
	cfg.BootstrapCoachName = getEnv("BOOTSTRAP_COACH_NAME", "Head Coach")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ApprovalTTL <= 0:
		return fmt.Errorf("APPROVAL_TTL must be positive")
	case c.DefaultMinHoursNotice < 0:
		return fmt.Errorf("DEFAULT_MIN_HOURS_NOTICE must not be negative")
	case c.OccurrenceWeeks < 1:
		return fmt.Errorf("OCCURRENCE_WEEKS must be at least 1")
	case c.RateLimitMax < 1 || c.RateLimitWindow <= 0:
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	case c.DBMaxConns < 1:
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	return nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "24h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}

	return val, nil
}
