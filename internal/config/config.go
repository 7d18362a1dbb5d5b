package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all process configuration, read from the environment at startup
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	JWTSecret []byte

	Database  DatabaseConfig
	S3        S3Config
	Avatar    AvatarConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig selects the GORM driver and connection string
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

// S3Config configures the object store client (S3 or MinIO)
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// AvatarConfig holds the avatar pipeline settings
type AvatarConfig struct {
	// StorageRoot is the key prefix for all avatar objects,
	// normalized to carry no leading or trailing slash.
	StorageRoot      string
	AllowedMIMETypes []string
	ThumbnailMaxSide int
	ProfileMaxSide   int
}

// RedisConfig configures the optional presigned-URL cache
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// TelemetryConfig configures optional OTLP tracing
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	Environment  string
	SamplingRate float64
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:   getEnvOrDefault("LOG_FILE", "user-service.log"),
		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		Database: DatabaseConfig{
			Driver: getEnvOrDefault("DB_DRIVER", "postgres"),
			DSN:    buildDSN(),
		},
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnvOrDefault("AWS_REGION", "us-east-1"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			PresignExpiry:   getEnvDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Avatar: AvatarConfig{
			StorageRoot:      normalizeStorageRoot(getEnvOrDefault("AVATAR_STORAGE_ROOT", "avatars")),
			AllowedMIMETypes: parseMIMEList(getEnvOrDefault("AVATAR_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp")),
			ThumbnailMaxSide: getEnvInt("AVATAR_THUMBNAIL_MAX_SIDE", 170),
			ProfileMaxSide:   getEnvInt("AVATAR_PROFILE_MAX_SIDE", 1080),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
			SamplingRate: getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
		},
	}

	if cfg.Avatar.StorageRoot == "" {
		return nil, fmt.Errorf("AVATAR_STORAGE_ROOT must not be empty")
	}
	if cfg.Avatar.ThumbnailMaxSide <= 0 || cfg.Avatar.ProfileMaxSide <= 0 {
		return nil, fmt.Errorf("avatar max side values must be positive")
	}

	return cfg, nil
}

// buildDSN assembles a Postgres DSN from DATABASE_URL or individual parts
func buildDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "user_service")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// normalizeStorageRoot strips leading and trailing slashes from the prefix
func normalizeStorageRoot(root string) string {
	return strings.Trim(strings.TrimSpace(root), "/")
}

// parseMIMEList splits a comma-separated MIME list, lower-casing and de-duplicating
func parseMIMEList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		mime := strings.ToLower(strings.TrimSpace(part))
		if mime == "" {
			continue
		}
		if _, ok := seen[mime]; ok {
			continue
		}
		seen[mime] = struct{}{}
		out = append(out, mime)
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
