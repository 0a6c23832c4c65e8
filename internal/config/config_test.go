package config

import (
	"os"
	"testing"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if val, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { os.Setenv(key, val) })
	}
	os.Unsetenv(key)
}

func TestLoad(t *testing.T) {
	t.Run("returns config with defaults when no env vars set", func(t *testing.T) {
		for _, key := range []string{"DB_DRIVER", "SERVER_PORT", "JWT_EXPIRATION_HOURS", "ALLOWED_EMAIL_DOMAINS", "POSTER_MAX_BYTES", "COOKIE_SECURE", "STORAGE_DRIVER"} {
			unsetEnv(t, key)
		}

		cfg := Load()
		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.DB.Driver != "postgres" {
			t.Errorf("expected DB.Driver 'postgres', got %s", cfg.DB.Driver)
		}
		if cfg.Server.Port != "5000" {
			t.Errorf("expected Server.Port '5000', got %s", cfg.Server.Port)
		}
		if cfg.JWT.ExpirationHours != 24 {
			t.Errorf("expected JWT.ExpirationHours 24, got %d", cfg.JWT.ExpirationHours)
		}
		if len(cfg.Auth.AllowedEmailDomains) != 1 || cfg.Auth.AllowedEmailDomains[0] != "unhas.ac.id" {
			t.Errorf("expected default allowed domain unhas.ac.id, got %v", cfg.Auth.AllowedEmailDomains)
		}
		if cfg.Storage.PosterMaxBytes != 5*1024*1024 {
			t.Errorf("expected 5MB poster limit, got %d", cfg.Storage.PosterMaxBytes)
		}
		if !cfg.Auth.CookieSecure {
			t.Error("expected secure cookies by default")
		}
		if cfg.Storage.Driver != "local" {
			t.Errorf("expected local storage driver, got %s", cfg.Storage.Driver)
		}
		if len(cfg.Seed.Categories) != 3 {
			t.Errorf("expected 3 seed categories, got %v", cfg.Seed.Categories)
		}
	})

	t.Run("reads environment variables", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "SQLite")
		t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("JWT_SECRET", "my-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "48")
		t.Setenv("COOKIE_SECURE", "false")
		t.Setenv("ALLOWED_EMAIL_DOMAINS", " unhas.ac.id, student.unhas.ac.id ,")
		t.Setenv("POSTER_MAX_BYTES", "1024")
		t.Setenv("STORAGE_DRIVER", "MinIO")

		cfg := Load()

		if cfg.DB.Driver != "sqlite" {
			t.Errorf("expected lowercased driver 'sqlite', got %s", cfg.DB.Driver)
		}
		if cfg.DB.SQLitePath != "/tmp/test.db" {
			t.Errorf("expected sqlite path, got %s", cfg.DB.SQLitePath)
		}
		if cfg.Server.Port != "9090" {
			t.Errorf("expected Server.Port '9090', got %s", cfg.Server.Port)
		}
		if cfg.JWT.Secret != "my-secret" || cfg.JWT.ExpirationHours != 48 {
			t.Errorf("unexpected JWT config %+v", cfg.JWT)
		}
		if cfg.Auth.CookieSecure {
			t.Error("expected COOKIE_SECURE=false to disable secure cookies")
		}
		domains := cfg.Auth.AllowedEmailDomains
		if len(domains) != 2 || domains[0] != "unhas.ac.id" || domains[1] != "student.unhas.ac.id" {
			t.Errorf("unexpected domains %v", domains)
		}
		if cfg.Storage.PosterMaxBytes != 1024 {
			t.Errorf("expected poster limit 1024, got %d", cfg.Storage.PosterMaxBytes)
		}
		if cfg.Storage.Driver != "minio" {
			t.Errorf("expected storage driver minio, got %s", cfg.Storage.Driver)
		}
	})

	t.Run("falls back on malformed values", func(t *testing.T) {
		t.Setenv("JWT_EXPIRATION_HOURS", "soon")
		t.Setenv("COOKIE_SECURE", "maybe")
		t.Setenv("ALLOWED_EMAIL_DOMAINS", " , ")

		cfg := Load()

		if cfg.JWT.ExpirationHours != 24 {
			t.Errorf("expected fallback expiration 24, got %d", cfg.JWT.ExpirationHours)
		}
		if !cfg.Auth.CookieSecure {
			t.Error("expected fallback secure cookie flag")
		}
		if len(cfg.Auth.AllowedEmailDomains) != 1 {
			t.Errorf("expected fallback domain list, got %v", cfg.Auth.AllowedEmailDomains)
		}
	})
}
