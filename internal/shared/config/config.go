package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration shared by the API and the worker.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	ObjectStoreType     string
	LocalStoreDir       string
	LocalStorePublicURL string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	SSEKMSKeyID         string

	SQSQueueURL string

	MaxUploadBytes   int64
	AllowedMimeTypes []string

	OCRLanguages   []string
	OCRTimeout     time.Duration
	OCRMaxAttempts int
	OCRBackoffBase time.Duration

	RetentionDays     int
	WorkerConcurrency int
	VisibilitySeconds int
	ShutdownTimeout   time.Duration
}

const (
	defaultMaxUploadBytes = 10 << 20
	defaultOCRTimeout     = 60 * time.Second
	defaultBackoffBase    = 2 * time.Second
	defaultMaxAttempts    = 3
)

var defaultAllowedTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/tiff",
	"text/plain",
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	allowed := splitAndTrim(getEnv("ALLOWED_MIME_TYPES", ""))
	if len(allowed) == 0 {
		allowed = defaultAllowedTypes
	}
	languages := splitAndTrim(getEnv("OCR_LANGUAGES", "eng"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		LocalStorePublicURL: strings.TrimRight(getEnv("LOCAL_STORE_PUBLIC_URL", "http://localhost:8080/files"), "/"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),

		SQSQueueURL: getEnv("SQS_QUEUE_URL", ""),

		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AllowedMimeTypes: allowed,

		OCRLanguages:   languages,
		OCRTimeout:     getEnvDuration("OCR_TIMEOUT", defaultOCRTimeout),
		OCRMaxAttempts: getEnvInt("OCR_MAX_ATTEMPTS", defaultMaxAttempts),
		OCRBackoffBase: getEnvDuration("OCR_BACKOFF_BASE", defaultBackoffBase),

		RetentionDays:     getEnvInt("RETENTION_DAYS", 0),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		VisibilitySeconds: getEnvInt("SQS_VISIBILITY_TIMEOUT_SECONDS", 120),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
