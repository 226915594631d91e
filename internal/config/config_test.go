package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
auth:
  jwt_ttl: 24h
  bcrypt_cost: 12
mail:
  code_ttl: 5m
catalog:
  default_page_size: 25
  default_poster_url: https://cdn.example.com/poster.png
reconcile:
  interval: 1h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTTTL.String() != "24h0m0s" {
		t.Fatalf("unexpected jwt ttl: %s", cfg.Auth.JWTTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected bcrypt cost: %d", cfg.Auth.BcryptCost)
	}
	if cfg.Mail.CodeTTL.String() != "5m0s" {
		t.Fatalf("unexpected mail code ttl: %s", cfg.Mail.CodeTTL)
	}
	if cfg.Catalog.DefaultPageSize != 25 {
		t.Fatalf("unexpected default page size: %d", cfg.Catalog.DefaultPageSize)
	}
	if cfg.Catalog.DefaultPosterURL != "https://cdn.example.com/poster.png" {
		t.Fatalf("unexpected default poster url: %s", cfg.Catalog.DefaultPosterURL)
	}
	if cfg.Reconcile.Interval.String() != "1h0m0s" {
		t.Fatalf("unexpected reconcile interval: %s", cfg.Reconcile.Interval)
	}

	if cfg.Catalog.MaxPageSize != 50 {
		t.Fatalf("max_page_size default should stay 50, got %d", cfg.Catalog.MaxPageSize)
	}
	if cfg.Mail.ResendMax != 5 {
		t.Fatalf("resend_max_per_hour default should stay 5, got %d", cfg.Mail.ResendMax)
	}
	if !cfg.Reconcile.Enabled {
		t.Fatalf("reconcile.enabled default should stay true")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Catalog.DefaultPageSize != 10 {
		t.Fatalf("unexpected default page size: %d", cfg.Catalog.DefaultPageSize)
	}
	if cfg.Auth.JWTTTL.String() != "168h0m0s" {
		t.Fatalf("unexpected default jwt ttl: %s", cfg.Auth.JWTTTL)
	}
	if cfg.Catalog.LanguageNames["en"] != "English" || cfg.Catalog.LanguageNames["ar"] != "Arabic" {
		t.Fatalf("unexpected language name defaults: %v", cfg.Catalog.LanguageNames)
	}
	if cfg.Reconcile.Interval.String() != "6h0m0s" {
		t.Fatalf("unexpected default reconcile interval: %s", cfg.Reconcile.Interval)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MAIL_CODE_TTL", "30m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Mail.CodeTTL.String() != "30m0s" {
		t.Fatalf("unexpected mail code ttl: %s", cfg.Mail.CodeTTL)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_REGION",
		"S3_PUBLIC_URL",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_TTL",
		"BCRYPT_COST",
		"MAIL_FROM",
		"SMTP_ADDR",
		"SMTP_USER",
		"SMTP_PASSWORD",
		"MAIL_CODE_TTL",
		"RECONCILE_ENABLED",
		"RECONCILE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}
