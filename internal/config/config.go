package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the API reads from the environment.
// A .env file is supported for local development; real deployments set
// the variables directly.
type Config struct {
	ServerPort        string
	DBDSN             string
	DBDSNReadOnly     string
	JWTSecret         string
	JWTExpiry         int64 // seconds
	GeminiAPIKey      string
	NATSURL           string // empty disables the pull broadcaster
	CORSOrigin        string
	PublicBaseURL     string
	UploadDir         string
	FeedRetentionDays int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBDSN:             getEnv("DB_DSN", ""),
		DBDSNReadOnly:     getEnv("DB_DSN_READONLY", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiry:         getEnvAsInt64("JWT_EXPIRY", 72*60*60), // 72 hours
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:5173"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		FeedRetentionDays: getEnvAsInt("FEED_RETENTION_DAYS", 14),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
