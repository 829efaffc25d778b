package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"

	CheckHTTP = "http"
	CheckGCS  = "gcs"
	CheckNone = "none"
)

// DefaultFirebaseJWKSURL publishes the keys that sign Firebase ID tokens.
const DefaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	LogLevel              string
	Port                  string
	ArtworkBackend        string
	DatabaseURL           string
	FirebaseProjectID     string
	FirebaseJWKSURL       string
	GoogleCredentialsFile string
	JWTSecret             string
	SessionTTL            time.Duration
	AdminEmails           []string
	AllowedOrigins        []string
	DraftPath             string
	AutosaveDelay         time.Duration
	CheckMode             string
	CheckTimeout          time.Duration
	RevalidateInterval    time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	RateLimitPerMin       int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		Port:                  getEnv("PORT", "8080"),
		ArtworkBackend:        strings.ToLower(getEnv("ARTWORK_BACKEND", BackendPostgres)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		FirebaseProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseJWKSURL:       getEnv("FIREBASE_JWKS_URL", DefaultFirebaseJWKSURL),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		SessionTTL:            time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 720)),
		AdminEmails:           getEnvList("ADMIN_EMAILS", true),
		AllowedOrigins:        getEnvList("CORS_ALLOWED_ORIGINS", false),
		DraftPath:             getEnv("DRAFT_STORAGE_PATH", "./data"),
		AutosaveDelay:         time.Millisecond * time.Duration(getEnvInt("AUTOSAVE_DELAY_MS", 1000)),
		CheckMode:             strings.ToLower(getEnv("IMAGE_CHECK_MODE", CheckHTTP)),
		CheckTimeout:          time.Second * time.Duration(getEnvInt("IMAGE_CHECK_TIMEOUT_SECONDS", 5)),
		RevalidateInterval:    time.Second * time.Duration(getEnvInt("GALLERY_REVALIDATE_SECONDS", 60)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.ArtworkBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendFirestore:
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return nil, fmt.Errorf("unknown ARTWORK_BACKEND %q", cfg.ArtworkBackend)
	}

	switch cfg.CheckMode {
	case CheckHTTP, CheckGCS, CheckNone:
	default:
		return nil, fmt.Errorf("unknown IMAGE_CHECK_MODE %q", cfg.CheckMode)
	}

	return cfg, nil
}

// IsAdmin reports whether email is on the admin allowlist.
func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}
