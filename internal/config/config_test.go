package config

import (
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FORMCORE_ORG_DOMAIN", "example.org")
	t.Setenv("FORMCORE_JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.StorageDriver != "sqlite" || cfg.BlobDriver != "fs" {
		t.Fatalf("defaults %+v", cfg)
	}
	if cfg.SQLitePath != "formcore.db" || cfg.BlobFSRoot != "./blobdata" {
		t.Fatalf("defaults %+v", cfg)
	}
}

func TestLoadSplitsAllowLists(t *testing.T) {
	setRequired(t)
	t.Setenv("FORMCORE_ADMIN_EMAILS", "root@example.org,ops@example.org")
	t.Setenv("FORMCORE_LEADER_EMAILS", "lead@example.org")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[1] != "ops@example.org" {
		t.Fatalf("admins %v", cfg.AdminEmails)
	}
	if len(cfg.LeaderEmails) != 1 {
		t.Fatalf("leaders %v", cfg.LeaderEmails)
	}
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	t.Setenv("FORMCORE_ORG_DOMAIN", "example.org")
	if _, err := Load(); err == nil {
		t.Fatal("missing jwt secret should fail")
	}
}

func TestLoadValidatesDrivers(t *testing.T) {
	setRequired(t)
	t.Setenv("FORMCORE_STORAGE_DRIVER", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatal("unknown storage driver should fail")
	}

	t.Setenv("FORMCORE_STORAGE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("postgres without DSN should fail")
	}
	t.Setenv("FORMCORE_POSTGRES_DSN", "postgres://localhost/formcore")
	if _, err := Load(); err != nil {
		t.Fatalf("postgres with DSN: %v", err)
	}

	t.Setenv("FORMCORE_BLOB_DRIVER", "s3")
	if _, err := Load(); err == nil {
		t.Fatal("s3 without bucket should fail")
	}
	t.Setenv("FORMCORE_S3_BUCKET", "uploads")
	if _, err := Load(); err != nil {
		t.Fatalf("s3 with bucket: %v", err)
	}
}
