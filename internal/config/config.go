package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string

	JWTSecret string
	JWTTTL    time.Duration

	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// FrontendURL is the base URL used when building the links embedded in
	// verification and password-reset emails.
	FrontendURL string

	GoogleClientID    string
	GoogleRedirectURL string

	UserCacheTTL time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	jwtTTL, err := getEnvDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	verificationTTL, err := getEnvDuration("VERIFICATION_TOKEN_TTL", 48*time.Hour)
	if err != nil {
		return nil, err
	}

	resetTTL, err := getEnvDuration("RESET_TOKEN_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getEnvDuration("USER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:           port,
		DatabasePath:         getEnv("DATABASE_PATH", "./accounts.db"),
		JWTSecret:            jwtSecret,
		JWTTTL:               jwtTTL,
		VerificationTokenTTL: verificationTTL,
		ResetTokenTTL:        resetTTL,
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             smtpPort,
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		MailFrom:             getEnv("MAIL_FROM", "no-reply@localhost"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleRedirectURL:    getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/oauth2/callback/google"),
		UserCacheTTL:         cacheTTL,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return d, nil
}
