package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Port                   string
	StorageDriver          string
	DatabaseURL            string
	DatabaseAutoMigrate    bool
	JWTSecret              string
	SessionTTL             time.Duration
	GoogleAudience         string
	AllowOrigins           []string
	LogLevel               string
	LogstashTCPAddr        string
	RedisAddr              string
	RedisPassword          string
	PlaceCacheTTL          time.Duration
	NatsURL                string
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinIOBucketProfile     string
	MinIOPublicURL         string
	ProfileImageMaxBytes   int64
	PlaceAllowedCategories []string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	driver := strings.ToLower(getenv("STORAGE_DRIVER", StorageDriverPostgres))
	databaseURL := getenv("DATABASE_URL", "")
	if driver == StorageDriverPostgres {
		databaseURL = must("DATABASE_URL")
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("PROFILE_IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	var allowedCategories []string
	if raw := getenv("PLACE_ALLOWED_CATEGORIES", ""); strings.TrimSpace(raw) != "" {
		allowedCategories = splitAndTrim(raw)
	}

	return Config{
		Port:                   getenv("PORT", "8080"),
		StorageDriver:          driver,
		DatabaseURL:            databaseURL,
		DatabaseAutoMigrate:    getenv("DATABASE_AUTO_MIGRATE", "true") == "true",
		JWTSecret:              must("JWT_SECRET"),
		SessionTTL:             duration("SESSION_TTL", 24*time.Hour),
		GoogleAudience:         getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:           splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:               getenv("LOG_LEVEL", "info"),
		LogstashTCPAddr:        getenv("LOGSTASH_TCP_ADDR", ""),
		RedisAddr:              getenv("REDIS_ADDR", ""),
		RedisPassword:          getenv("REDIS_PASSWORD", ""),
		PlaceCacheTTL:          duration("PLACE_CACHE_TTL", 5*time.Minute),
		NatsURL:                getenv("NATS_URL", ""),
		MinIOEndpoint:          getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:         getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:         getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:            getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketProfile:     getenv("MINIO_BUCKET_PROFILE", "placebook-profile"),
		MinIOPublicURL:         getenv("MINIO_PUBLIC_URL", ""),
		ProfileImageMaxBytes:   imageMax,
		PlaceAllowedCategories: allowedCategories,
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s %q, using %s", k, raw, d)
		return d
	}
	return v
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
