package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                 string
	HTTPAddr            string
	BackendAPIURL       string
	BackendAPIKey       string
	BackendTimeout      time.Duration
	AdminPassword       string
	AdminPasswordHash   string
	JWTSecret           string
	JWTExpirySeconds    int64
	SummaryLinkSecret   string
	SummaryLinkTTL      time.Duration
	DisplayTimezone     string
	CurrencyLabel       string
	CorsAllowedOrigins  []string
	MaxFileSizeBytes    int64
	ImageMaxSide        int
	ImageQuality        int
	RabbitMQURL         string
	RabbitMQWorkerMode  string
	WSHeartbeatInterval time.Duration

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8087"),
		BackendAPIURL:       getEnvFirst([]string{"BACKEND_API_URL", "VITE_API_URL"}, ""),
		BackendAPIKey:       getEnvFirst([]string{"BACKEND_API_KEY", "VITE_API_KEY"}, ""),
		BackendTimeout:      getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		AdminPassword:       getEnvFirst([]string{"ADMIN_PASSWORD", "VITE_ADMIN_PASSWORD"}, ""),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:    getEnvInt64("JWT_EXPIRY", 43200),
		SummaryLinkSecret:   getEnv("SUMMARY_LINK_SECRET", ""),
		SummaryLinkTTL:      getEnvDuration("SUMMARY_LINK_TTL", 15*time.Minute),
		DisplayTimezone:     getEnv("DISPLAY_TIMEZONE", "Africa/Cairo"),
		CurrencyLabel:       getEnv("CURRENCY_LABEL", "EGP"),
		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		MaxFileSizeBytes:    getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		ImageMaxSide:        int(getEnvInt64("IMAGE_MAX_SIDE", 1600)),
		ImageQuality:        int(getEnvInt64("IMAGE_QUALITY", 85)),
		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode:  getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		WSHeartbeatInterval: getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  int(getEnvInt64("LOG_MAX_SIZE_MB", 50)),
		LogMaxBackups: int(getEnvInt64("LOG_MAX_BACKUPS", 5)),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.ImageMaxSide <= 0 {
		cfg.ImageMaxSide = 1600
	}
	if cfg.ImageQuality <= 0 || cfg.ImageQuality > 100 {
		cfg.ImageQuality = 85
	}
	if cfg.JWTExpirySeconds <= 0 {
		cfg.JWTExpirySeconds = 43200
	}
	if cfg.SummaryLinkSecret == "" {
		cfg.SummaryLinkSecret = cfg.JWTSecret
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

func (c Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpirySeconds) * time.Second
}

func (c Config) ObjectStoreEnabled() bool {
	return strings.TrimSpace(c.ObjectStoreEndpoint) != "" &&
		strings.TrimSpace(c.ObjectStoreBucket) != "" &&
		strings.TrimSpace(c.ObjectStorePublicBaseURL) != ""
}

// DisplayLocation falls back to UTC when the configured zone is unknown.
func (c Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
