package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("DIARY_HTTP_ADDR", ":7000")
	t.Setenv("DIARY_DATABASE_DSN", "postgres://env")
	t.Setenv("DIARY_DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DIARY_JWT_SECRET", "env-secret")
	t.Setenv("DIARY_JWT_EXPIRES_IN", "2h")
	t.Setenv("DIARY_TIMEZONE", "Asia/Shanghai")
	t.Setenv("DIARY_S3_PUBLIC_URL", "https://media.example")
	t.Setenv("DIARY_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("DIARY_LOG_FILE", "/tmp/diary.log")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":7000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, 3, cfg.DBMaxOpenConns)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, "https://media.example", cfg.S3PublicURL)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, "/tmp/diary.log", cfg.LogFile)
}

func TestParseEnv_IgnoresMalformed(t *testing.T) {
	t.Setenv("DIARY_DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DIARY_JWT_EXPIRES_IN", "forever")
	t.Setenv("DIARY_MAX_UPLOAD_BYTES", "-1")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
}
