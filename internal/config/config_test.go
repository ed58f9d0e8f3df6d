package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RecentRounds != 3 {
		t.Fatalf("RecentRounds = %d", cfg.RecentRounds)
	}
	if cfg.MatchMinYield != 3 {
		t.Fatalf("MatchMinYield = %d", cfg.MatchMinYield)
	}
	if cfg.SeasonTTL != time.Minute {
		t.Fatalf("SeasonTTL = %s", cfg.SeasonTTL)
	}
	if !cfg.UpstreamCircuitEnabled {
		t.Fatal("circuit breaker should default to enabled")
	}
	if len(cfg.ProxyAllowedHosts) != 2 {
		t.Fatalf("ProxyAllowedHosts = %v", cfg.ProxyAllowedHosts)
	}
	if _, ok := cfg.LeaguePages["premier"]; !ok {
		t.Fatal("default league pages must include premier")
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid SEASON_TTL")
	}
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FETCH_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for FETCH_WORKERS=0")
	}
}

func TestLoadUptraceRequiresDSN(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when UPTRACE_ENABLED without DSN")
	}
}

func TestParsePageMap(t *testing.T) {
	pages, err := parsePageMap("premier=https://example.test/season,liga2=")
	if err != nil {
		t.Fatalf("parsePageMap: %v", err)
	}
	if pages["premier"] != "https://example.test/season" {
		t.Fatalf("premier = %q", pages["premier"])
	}
	if url, ok := pages["liga2"]; !ok || url != "" {
		t.Fatalf("liga2 should be present with empty url, got %q ok=%v", url, ok)
	}

	if _, err := parsePageMap("nourl"); err == nil {
		t.Fatal("expected error for item without =")
	}
}
