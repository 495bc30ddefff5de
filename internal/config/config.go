// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting of the server. Role assignments are
// configuration, never code; the allow-lists below feed the access policy.
type Config struct {
	HTTPAddr string `env:"FORMCORE_HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"FORMCORE_LOG_LEVEL" envDefault:"info"`

	// Identity and access.
	OrgDomain    string   `env:"FORMCORE_ORG_DOMAIN,required"`
	AdminEmails  []string `env:"FORMCORE_ADMIN_EMAILS" envSeparator:","`
	LeaderEmails []string `env:"FORMCORE_LEADER_EMAILS" envSeparator:","`
	JWTSecret    string   `env:"FORMCORE_JWT_SECRET,required"`

	// Governed-state storage. Driver is one of memory, sqlite, postgres.
	StorageDriver string `env:"FORMCORE_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"FORMCORE_SQLITE_PATH" envDefault:"formcore.db"`
	PostgresDSN   string `env:"FORMCORE_POSTGRES_DSN"`

	// Uploaded-file storage. Driver is one of fs, s3, memory.
	BlobDriver        string `env:"FORMCORE_BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot        string `env:"FORMCORE_BLOB_FS_ROOT" envDefault:"./blobdata"`
	S3Region          string `env:"FORMCORE_S3_REGION"`
	S3Bucket          string `env:"FORMCORE_S3_BUCKET"`
	S3Endpoint        string `env:"FORMCORE_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"FORMCORE_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"FORMCORE_S3_SECRET_ACCESS_KEY"`
	S3SessionToken    string `env:"FORMCORE_S3_SESSION_TOKEN"`
	S3PathStyle       bool   `env:"FORMCORE_S3_PATH_STYLE" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.StorageDriver {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "postgres" && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("FORMCORE_POSTGRES_DSN required for the postgres driver")
	}
	if cfg.BlobDriver == "s3" && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("FORMCORE_S3_BUCKET required for the s3 blob driver")
	}
	return cfg, nil
}
