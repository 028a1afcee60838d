package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Gateway.BaseURL != "http://gateway.internal/api" {
		t.Fatalf("unexpected gateway base url %q", cfg.Gateway.BaseURL)
	}
	if got := cfg.Session.FallbackTTL; got != 2*time.Hour {
		t.Fatalf("expected fallback ttl 2h, got %v", got)
	}
	if !cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("unexpected threshold %s", cfg.Pricing.FreeShippingThreshold)
	}
	if !cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.14")) {
		t.Fatalf("unexpected tax rate %s", cfg.Pricing.TaxRate)
	}
	if cfg.Pricing.Currency != "KSh" {
		t.Fatalf("unexpected currency %q", cfg.Pricing.Currency)
	}
	if cfg.Session.CookieName != "chieftain_session" {
		t.Fatalf("unexpected cookie name %q", cfg.Session.CookieName)
	}
	if cfg.App.Strict() {
		t.Fatalf("prod should not be strict by default")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownGatewayMode(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvGatewayMode, "grpc")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown gateway mode to fail")
	}
}

func TestLoad_RejectsTaxRateAboveOne(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPricingTaxRate, "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected tax rate above one to fail")
	}
}

func TestLoad_RejectsBlankCurrency(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPricingCurrency, " ")

	if _, err := Load(); err == nil {
		t.Fatal("expected blank currency to fail")
	}
}

func TestLoad_StrictOverride(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStrictInvariants, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.Strict() {
		t.Fatalf("expected explicit strict flag to win")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvGatewayMode, "http")
	t.Setenv(EnvGatewayBaseURL, "http://gateway.internal/api")
	t.Setenv(EnvSessionTTL, "2h")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}
	if !devConfig.Strict() {
		t.Fatalf("dev should default to strict invariants")
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
