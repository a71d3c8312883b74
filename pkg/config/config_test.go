package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Marketplace.BaseURL != "https://marketplace.example.com" {
		t.Fatalf("unexpected marketplace base url: %q", cfg.Marketplace.BaseURL)
	}
	if cfg.Batch.Workers != 3 {
		t.Fatalf("expected default worker count 3, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.BaseDelay != 2500*time.Millisecond {
		t.Fatalf("expected default base delay 2.5s, got %v", cfg.Batch.BaseDelay)
	}
	if cfg.Selection.MaxSuppliersPerRegion != 3 {
		t.Fatalf("expected default cap 3, got %d", cfg.Selection.MaxSuppliersPerRegion)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without URL or address")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvMarketplaceBaseURL, "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBadWorkerCount(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvBatchWorkers, "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected worker count below 1 to be rejected")
	}

	t.Setenv(EnvBatchWorkers, "11")
	if _, err := Load(); err == nil {
		t.Fatal("expected worker count above 10 to be rejected")
	}
}

func TestLoad_RejectsBadCap(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvMaxPerRegion, "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected zero cap to be rejected")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvMarketplaceBaseURL, "https://marketplace.example.com")
	t.Setenv(EnvMarketplaceAccount, "12345")
	t.Setenv(EnvMarketplaceUsername, "buyer")
	t.Setenv(EnvMarketplacePassword, "secret")
}
