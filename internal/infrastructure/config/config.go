package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// loaded from environment variables, no magic defaults for required fields.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Report   ReportConfig
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Schema   string
}

// RedisConfig contains the optional report-cache connection.
// an empty URL disables redis entirely.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// AuthConfig contains authentication configuration.
// an empty secret leaves the write endpoints unauthenticated.
type AuthConfig struct {
	JWTSecret string
}

// ReportConfig is the full tuning surface of the bucketing and forecast
// engine. every value is an explicit parameter, never a global.
type ReportConfig struct {
	// Timezone anchors all wall-clock bucketing.
	Timezone string

	// WindowDays is the number of calendar dates per reporting window.
	WindowDays int

	// WeeksBack is how many prior windows feed the historical average.
	WeeksBack int

	// AnchorA and AnchorB are the two weekly window patterns.
	AnchorA time.Weekday
	AnchorB time.Weekday

	// MomentumLookbackHours is the recent-activity window for momentum.
	MomentumLookbackHours int

	// TrendUp / TrendDown classify the trend factor.
	TrendUp   float64
	TrendDown float64

	// MomentumWeight / TrendWeight blend the prediction signals.
	MomentumWeight float64
	TrendWeight    float64

	// ConfidencePct and MarginMultiplier shape the heuristic bounds.
	ConfidencePct    float64
	MarginMultiplier float64

	// RefreshInterval is how often the background worker recomputes the
	// default-window report.
	RefreshInterval time.Duration
}

// ConnectionString returns the postgres connection string.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
		c.Schema,
	)
}

// Load reads configuration from environment variables.
// loads .env file if present, but doesn't fail if it's missing.
func Load() (*Config, error) {
	// try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	reportConfig, err := loadReportConfig()
	if err != nil {
		return nil, fmt.Errorf("report config: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:            ":" + getEnvOrDefault("PORT", "8080"),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: dbConfig,
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
			TTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Report: reportConfig,
	}, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	config := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSL_MODE", "require"),
		Schema:   getEnvOrDefault("DB_SCHEMA", "gridcast"),
	}

	// required fields must be set
	if config.User == "" {
		return config, errors.New("DB_USER is required")
	}
	if config.Password == "" {
		return config, errors.New("DB_PASSWORD is required")
	}
	if config.Name == "" {
		return config, errors.New("DB_NAME is required")
	}

	return config, nil
}

func loadReportConfig() (ReportConfig, error) {
	anchorA, err := parseWeekday(getEnvOrDefault("ANCHOR_WEEKDAY_A", "Friday"))
	if err != nil {
		return ReportConfig{}, err
	}
	anchorB, err := parseWeekday(getEnvOrDefault("ANCHOR_WEEKDAY_B", "Monday"))
	if err != nil {
		return ReportConfig{}, err
	}

	config := ReportConfig{
		Timezone:              getEnvOrDefault("REPORT_TIMEZONE", "America/New_York"),
		WindowDays:            getEnvInt("WINDOW_DAYS", 8),
		WeeksBack:             getEnvInt("HISTORY_WEEKS", 4),
		AnchorA:               anchorA,
		AnchorB:               anchorB,
		MomentumLookbackHours: getEnvInt("MOMENTUM_LOOKBACK_HOURS", 12),
		TrendUp:               getEnvFloat("TREND_UP_THRESHOLD", 1.15),
		TrendDown:             getEnvFloat("TREND_DOWN_THRESHOLD", 0.85),
		MomentumWeight:        getEnvFloat("MOMENTUM_BLEND_WEIGHT", 0.3),
		TrendWeight:           getEnvFloat("TREND_BLEND_WEIGHT", 0.7),
		ConfidencePct:         getEnvFloat("CONFIDENCE_PCT", 0.15),
		MarginMultiplier:      getEnvFloat("CONFIDENCE_MARGIN_MULTIPLIER", 1.5),
		RefreshInterval:       getEnvDuration("REPORT_REFRESH_INTERVAL", 5*time.Minute),
	}

	if config.WindowDays < 2 {
		return config, errors.New("WINDOW_DAYS must be at least 2")
	}
	if config.WeeksBack < 1 {
		return config, errors.New("HISTORY_WEEKS must be at least 1")
	}
	if config.MomentumLookbackHours < 1 {
		return config, errors.New("MOMENTUM_LOOKBACK_HOURS must be at least 1")
	}

	return config, nil
}

// parseWeekday resolves a weekday name like "Friday" or "fri".
func parseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
