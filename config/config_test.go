package config_test

import (
	"testing"
	"time"

	"github.com/oksasatya/user-management-api/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_EXPIRES_IN", "")

	cfg := config.Load()

	if cfg.Env != "development" {
		t.Fatalf("env: got %q", cfg.Env)
	}
	if cfg.CookieSecure {
		t.Fatalf("cookie should not be secure outside production")
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("store driver: got %q", cfg.StoreDriver)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Fatalf("jwt ttl: got %v", cfg.JWTExpiresIn)
	}
	if cfg.RateLimitMax != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("rate limit: got %d/%v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.UploadMaxBytes != 5<<20 {
		t.Fatalf("upload max: got %d", cfg.UploadMaxBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("JWT_EXPIRES_IN", "90m")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := config.Load()

	if !cfg.IsProduction() || !cfg.CookieSecure {
		t.Fatalf("production should default to secure cookies")
	}
	if cfg.StoreDriver != "mongo" {
		t.Fatalf("store driver: got %q", cfg.StoreDriver)
	}
	if cfg.JWTExpiresIn != 90*time.Minute {
		t.Fatalf("jwt ttl: got %v", cfg.JWTExpiresIn)
	}
	if cfg.RateLimitMax != 100 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.RateLimitMax)
	}
	origins := cfg.CORSOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("origins: got %v", origins)
	}
}
