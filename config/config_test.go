package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreBackend != BackendRedis {
		t.Fatalf("expected redis backend by default, got %q", cfg.StoreBackend)
	}
	if cfg.RedisDB != 8 || cfg.RedisKeyPrefix != "campus:" {
		t.Fatalf("unexpected redis defaults db=%d prefix=%q", cfg.RedisDB, cfg.RedisKeyPrefix)
	}
	if cfg.BannerTTL != 3*time.Second {
		t.Fatalf("expected 3s banner ttl, got %v", cfg.BannerTTL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Bolt ")
	t.Setenv("BOLT_PATH", "/tmp/records.db")
	t.Setenv("BANNER_TTL", "1500ms")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SEED_DATA", "false")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreBackend != BackendBolt || cfg.BoltPath != "/tmp/records.db" {
		t.Fatalf("unexpected store settings %+v", cfg)
	}
	if cfg.BannerTTL != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s banner ttl, got %v", cfg.BannerTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.SeedData {
		t.Fatalf("unexpected cors=%v seed=%v", cfg.CORSOrigins, cfg.SeedData)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown backend", "STORE_BACKEND", "etcd"},
		{"negative banner ttl", "BANNER_TTL", "-1s"},
		{"malformed redis db", "REDIS_DB", "eight"},
		{"zero session ttl", "SESSION_TTL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Parse(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
