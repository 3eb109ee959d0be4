package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds S3-compatible object storage settings.
// Driver selects the client implementation: "minio" (default) or "s3" (AWS S3, Cloudflare R2).
type StorageConfig struct {
	Driver         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	ForcePathStyle bool
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
}

// ImagesConfig holds the upload policy and coordinator timings applied by the server.
type ImagesConfig struct {
	MaxSizeBytes     int64
	URLExpirySec     int
	PageSize         int
	DeleteConfirmSec int
	SweepIntervalSec int
	SweepGraceSec    int
}

// AppConfig is the centralized configuration struct for the server.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	LogLevel string
	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Images   ImagesConfig
}

// ClientConfig configures the imagevault CLI.
type ClientConfig struct {
	APIURL            string
	Token             string
	Concurrency       int
	ThumbnailMaxWidth int
	MaxSizeBytes      int64
	TimeoutSec        int
}

// Load reads server configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "minio"),
			Endpoint:       getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:         getEnv("STORAGE_BUCKET", ""),
			Region:         getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:         getEnvBool("STORAGE_USE_SSL", false),
			ForcePathStyle: getEnvBool("STORAGE_FORCE_PATH_STYLE", true),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Images: ImagesConfig{
			MaxSizeBytes:     getEnvInt64("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024),
			URLExpirySec:     getEnvInt("UPLOAD_URL_EXPIRY_SEC", 600),
			PageSize:         getEnvInt("PAGE_SIZE", 10),
			DeleteConfirmSec: getEnvInt("DELETE_CONFIRM_TIMEOUT_SEC", 30),
			SweepIntervalSec: getEnvInt("SWEEP_INTERVAL_SEC", 0),
			SweepGraceSec:    getEnvInt("SWEEP_GRACE_SEC", 3600),
		},
	}
}

// LoadClient reads CLI configuration from environment variables.
func LoadClient() *ClientConfig {
	return &ClientConfig{
		APIURL:            getEnv("IMAGEVAULT_API_URL", "http://localhost:8080"),
		Token:             getEnv("IMAGEVAULT_TOKEN", ""),
		Concurrency:       getEnvInt("UPLOAD_CONCURRENCY", 4),
		ThumbnailMaxWidth: getEnvInt("THUMBNAIL_MAX_WIDTH", 200),
		MaxSizeBytes:      getEnvInt64("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024),
		TimeoutSec:        getEnvInt("IMAGEVAULT_TIMEOUT_SEC", 120),
	}
}

// Location resolves the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
