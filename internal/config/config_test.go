package config

import (
	"testing"
	"time"
)

func TestLoadAPIDefaults(t *testing.T) {
	cfg := LoadAPIFromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("default addr %q", cfg.Addr)
	}
	if cfg.SelloutTickEvery != time.Second {
		t.Fatalf("default tick %v", cfg.SelloutTickEvery)
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		t.Fatalf("rate limit defaults must be positive: %+v", cfg)
	}
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SCALPR_SELLOUT_TICK_EVERY", "50ms")
	t.Setenv("SCALPR_RATE_LIMIT_BURST", "7")

	cfg := LoadAPIFromEnv()
	if cfg.Addr != ":9999" {
		t.Fatalf("PORT not applied: %q", cfg.Addr)
	}
	if cfg.SelloutTickEvery != 50*time.Millisecond {
		t.Fatalf("tick override not applied: %v", cfg.SelloutTickEvery)
	}
	if cfg.RateLimitBurst != 7 {
		t.Fatalf("burst override not applied: %d", cfg.RateLimitBurst)
	}
}

func TestEnvFallbacksOnGarbage(t *testing.T) {
	t.Setenv("SCALPR_SESSION_TTL", "not-a-duration")
	t.Setenv("SCALPR_RATE_LIMIT_RPS", "lots")

	cfg := LoadAPIFromEnv()
	if cfg.SessionTTL != 6*time.Hour {
		t.Fatalf("bad duration should fall back: %v", cfg.SessionTTL)
	}
	if cfg.RateLimitRPS != 20 {
		t.Fatalf("bad float should fall back: %v", cfg.RateLimitRPS)
	}
}
