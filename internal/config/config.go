// backend/internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ResetSecret   string
	ResetTokenTTL time.Duration
	ResetURLBase  string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	LeaderboardRefreshCron string

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	return &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		JWTSecret:       jwtSecret,
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),

		ResetSecret:   getEnv("RESET_SECRET", jwtSecret),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", 72*time.Hour),
		ResetURLBase:  getEnv("RESET_URL_BASE", "http://localhost:3000/reset-password"),

		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		EmailSender:     os.Getenv("EMAIL_SENDER"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Quiz Platform"),

		LeaderboardRefreshCron: getEnv("LEADERBOARD_REFRESH_CRON", "@every 10m"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
