package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	CORSOrigin string
	// SiteURL prefixes links in push notifications
	SiteURL string

	FirebaseProjectID   string
	FirebaseCredentials string
	StorageBucket       string

	JWTSecret        string
	JWTSessionExpiry time.Duration

	MasterEmails []string
	MasterUIDs   []string

	GitHubUsername     string
	GitHubToken        string
	GitHubSyncInterval time.Duration

	BridgeAuthTimeout  time.Duration
	MobileRateLimitRPM int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		CORSOrigin:          getEnv("CORS_ORIGIN", ""),
		SiteURL:             strings.TrimRight(getEnv("SITE_URL", ""), "/"),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTSessionExpiry:    getDuration("JWT_SESSION_EXPIRY", 24*time.Hour),
		MasterEmails:        getList("MASTER_EMAILS"),
		MasterUIDs:          getList("MASTER_UIDS"),
		GitHubUsername:      getEnv("GITHUB_USERNAME", ""),
		GitHubToken:         getEnv("GITHUB_TOKEN", ""),
		GitHubSyncInterval:  getDuration("GITHUB_SYNC_INTERVAL", 6*time.Hour),
		BridgeAuthTimeout:   getDuration("BRIDGE_AUTH_TIMEOUT", 30*time.Second),
		MobileRateLimitRPM:  getInt("MOBILE_RATE_LIMIT_RPM", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getList splits a comma separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
