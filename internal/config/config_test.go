package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache = %+v, want redis with 1h ttl", cfg.Cache)
	}
	if cfg.Scan.DefaultAirport != "BVA" || cfg.Scan.DefaultBudget != 200 || cfg.Scan.DefaultLimit != 50 {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if cfg.Source.Kind != "fares" || cfg.Source.RetryDelay != 200*time.Millisecond {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Auth.AdminSessionTTL != 12*time.Hour || cfg.Auth.SecureCookie {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want two dev origins", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("ADMIN_EMAILS", "a@example.com,b@example.com")
	t.Setenv("SCAN_DEFAULT_AIRPORT", "CRL")
	t.Setenv("ADMIN_SECURE_COOKIE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Errorf("HTTP.Port = %q", cfg.HTTP.Port)
	}
	if cfg.Cache.Backend != "postgres" || cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if len(cfg.Auth.AdminEmails) != 2 || cfg.Auth.AdminEmails[1] != "b@example.com" {
		t.Errorf("AdminEmails = %v", cfg.Auth.AdminEmails)
	}
	if cfg.Scan.DefaultAirport != "CRL" {
		t.Errorf("DefaultAirport = %q", cfg.Scan.DefaultAirport)
	}
	if !cfg.Auth.SecureCookie {
		t.Error("SecureCookie should be set from env")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "http:\n  port: \"7070\"\nsource:\n  kind: fixture\n  fixture_path: /tmp/fares.json\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != "7070" {
		t.Errorf("HTTP.Port = %q, want 7070", cfg.HTTP.Port)
	}
	if cfg.Source.Kind != "fixture" || cfg.Source.FixturePath != "/tmp/fares.json" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{User: "u", Password: "p", Host: "db", Port: "5433", DBName: "fw", SSLMode: "require"}
	want := "postgres://u:p@db:5433/fw?sslmode=require"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
