package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_SECRET", "JWT_SESSION_EXPIRY", "MASTER_EMAILS", "BRIDGE_AUTH_TIMEOUT", "MOBILE_RATE_LIMIT_RPM"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port=%q want=8080", cfg.Port)
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("JWTSecret=%q want empty", cfg.JWTSecret)
	}
	if cfg.JWTSessionExpiry != 24*time.Hour {
		t.Fatalf("JWTSessionExpiry=%v", cfg.JWTSessionExpiry)
	}
	if cfg.BridgeAuthTimeout != 30*time.Second {
		t.Fatalf("BridgeAuthTimeout=%v", cfg.BridgeAuthTimeout)
	}
	if cfg.MobileRateLimitRPM != 30 {
		t.Fatalf("MobileRateLimitRPM=%d", cfg.MobileRateLimitRPM)
	}
	if len(cfg.MasterEmails) != 0 {
		t.Fatalf("MasterEmails=%v want empty", cfg.MasterEmails)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MASTER_EMAILS", " me@example.com, ,other@example.com ")
	t.Setenv("BRIDGE_AUTH_TIMEOUT", "5s")
	t.Setenv("GITHUB_SYNC_INTERVAL", "not-a-duration")
	t.Setenv("MOBILE_RATE_LIMIT_RPM", "0")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("Port=%q", cfg.Port)
	}
	if want := []string{"me@example.com", "other@example.com"}; !reflect.DeepEqual(cfg.MasterEmails, want) {
		t.Fatalf("MasterEmails=%v want=%v", cfg.MasterEmails, want)
	}
	if cfg.BridgeAuthTimeout != 5*time.Second {
		t.Fatalf("BridgeAuthTimeout=%v", cfg.BridgeAuthTimeout)
	}
	if cfg.GitHubSyncInterval != 6*time.Hour {
		t.Fatalf("invalid duration should fall back, got %v", cfg.GitHubSyncInterval)
	}
	if cfg.MobileRateLimitRPM != 0 {
		t.Fatalf("MobileRateLimitRPM=%d want=0", cfg.MobileRateLimitRPM)
	}
}
