package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string // sqlite, postgres or mysql
	DatabasePath    string // sqlite only
	DatabaseURL     string // postgres/mysql connection string
	SessionDuration time.Duration
	SessionSecret   string
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string

	AppBaseURL           string
	OAuthRedirectBaseURL string
	LinkedInClientID     string
	LinkedInClientSecret string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// BulkPointsStrict applies the single-entry [0,1] point range to the
	// bulk path as well. The quick win-counter UI submits accumulated
	// counts, so the default leaves the bulk path open.
	BulkPointsStrict bool
	TrendWindowDays  int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	// .env is optional, ignore a missing file
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./puzzleclash.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		SessionDuration: 30 * 24 * time.Hour,
		SessionSecret:   getEnv("SESSION_SECRET", "dev-insecure-secret"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),

		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		LinkedInClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "PuzzleClash"),

		BulkPointsStrict: getEnv("BULK_POINTS_RANGE", "open") == "strict",
		TrendWindowDays:  getEnvInt("TREND_WINDOW_DAYS", 30),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
