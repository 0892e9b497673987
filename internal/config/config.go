package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver string
	DBDSN    string

	StorageBackend   string // disk | gcs
	MediaDir         string
	MediaBaseURL     string
	GCSBucket        string
	GCSPublicBaseURL string
	GoogleCredsFile  string

	AuthMode          string // jwt | firebase
	JWTSecret         string
	FirebaseProjectID string

	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitMB     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	MetricsNamespace string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", "inventory.db"), // sqlite file in project root

		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", "disk")),
		MediaDir:         getEnv("MEDIA_DIR", "./media"),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		GCSPublicBaseURL: getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		GoogleCredsFile:  getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		AuthMode:          strings.ToLower(getEnv("AUTH_MODE", "jwt")),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),

		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		BodyLimitMB:     getEnvInt("BODY_LIMIT_MB", 8),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "inventory"),
	}
	cfg.MediaBaseURL = strings.TrimRight(getEnv("MEDIA_BASE_URL", "http://localhost:"+cfg.Port+"/media"), "/")

	log.Printf("[config] PORT=%s APP_ENV=%s DB_DRIVER=%s STORAGE_BACKEND=%s AUTH_MODE=%s",
		cfg.Port, cfg.Env, cfg.DBDriver, cfg.StorageBackend, cfg.AuthMode)
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
