package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "DIARY_"

// parseEnv overlays DIARY_* environment variables. A .env file in the working
// directory is loaded first; variables already set in the process win over it.
// Malformed numeric values are ignored.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	envInt(&config.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	envDuration(&config.DBConnMaxLifetime, "DB_CONN_MAX_LIFETIME")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.AccessTokenValidityDuration, "JWT_EXPIRES_IN")
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.Timezone, "TIMEZONE")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3PublicURL, "S3_PUBLIC_URL")
	if v, ok := os.LookupEnv(envPrefix + "MAX_UPLOAD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadBytes = n
		}
	}
	envInt(&config.MediaQueueSize, "MEDIA_QUEUE_SIZE")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFile, "LOG_FILE")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
