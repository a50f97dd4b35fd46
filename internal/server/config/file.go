package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// both "15m" strings and integer nanoseconds. Zero values leave the current
// setting untouched.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	DBMaxOpenConns              int            `json:"db_max_open_conns" yaml:"db_max_open_conns"`
	DBMaxIdleConns              int            `json:"db_max_idle_conns" yaml:"db_max_idle_conns"`
	DBConnMaxLifetime           timex.Duration `json:"db_conn_max_lifetime" yaml:"db_conn_max_lifetime"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	Timezone                    string         `json:"timezone" yaml:"timezone"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicURL                 string         `json:"s3_public_url" yaml:"s3_public_url"`
	MaxUploadBytes              int64          `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	MediaQueueSize              int            `json:"media_queue_size" yaml:"media_queue_size"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	LogFile                     string         `json:"log_file" yaml:"log_file"`
}

// parseFile loads the file named by -c / -config into config. The format is
// chosen by extension: .yaml and .yml are YAML, anything else is JSON.
// Unreadable or malformed files panic, as a half-applied config is worse
// than not starting.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setInt(&c.DBMaxOpenConns, fc.DBMaxOpenConns)
	setInt(&c.DBMaxIdleConns, fc.DBMaxIdleConns)
	if fc.DBConnMaxLifetime.Duration > 0 {
		c.DBConnMaxLifetime = fc.DBConnMaxLifetime.Duration
	}
	setString(&c.SecretKey, fc.SecretKey)
	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	setInt(&c.BcryptCost, fc.BcryptCost)
	setString(&c.Timezone, fc.Timezone)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicURL, fc.S3PublicURL)
	if fc.MaxUploadBytes > 0 {
		c.MaxUploadBytes = fc.MaxUploadBytes
	}
	setInt(&c.MediaQueueSize, fc.MediaQueueSize)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFile, fc.LogFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
