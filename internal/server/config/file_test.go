package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	jsonPath := writeTempJSON(t, dir, "diary.json", map[string]any{
		"endpoint_addr_http":             "www.example:9000",
		"database_dsn":                   "postgres://diary",
		"db_max_open_conns":              20,
		"db_conn_max_lifetime":           "5m",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "24h",
		"bcrypt_cost":                    12,
		"timezone":                       "Asia/Shanghai",
		"s3_root_user":                   "user",
		"s3_root_password":               "password",
		"s3_bucket":                      "bucket",
		"s3_region":                      "region",
		"s3_base_endpoint":               "base_endpoint",
		"s3_public_url":                  "https://cdn.example",
		"max_upload_bytes":               1024,
		"media_queue_size":               8,
		"log_level":                      "debug",
		"log_file":                       "/var/log/diary.log",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", jsonPath}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://diary", cfg.DatabaseDSN)
		assert.Equal(t, 20, cfg.DBMaxOpenConns)
		assert.Equal(t, 5, cfg.DBMaxIdleConns, "absent keys keep defaults")
		assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 24*time.Hour, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "https://cdn.example", cfg.S3PublicURL)
		assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
		assert.Equal(t, 8, cfg.MediaQueueSize)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "/var/log/diary.log", cfg.LogFile)
	})

	t.Run("loads from yaml", func(t *testing.T) {
		yamlPath := filepath.Join(dir, "diary.yaml")
		require.NoError(t, os.WriteFile(yamlPath, []byte(
			"endpoint_addr_http: \":8081\"\naccess_token_validity_duration: 90m\ntimezone: Europe/Riga\ns3_bucket: media\n"), 0o600))

		os.Args = []string{"testbin", "-c", yamlPath}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, ":8081", cfg.EndpointAddrHTTP)
		assert.Equal(t, 90*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "Europe/Riga", cfg.Timezone)
		assert.Equal(t, "media", cfg.S3Bucket)
		assert.Equal(t, "secretKey", cfg.SecretKey)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseFile(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.yaml")}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})
}
