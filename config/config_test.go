package config

import (
	"os"
	"testing"

	"leverflow/errs"
)

// writeTempConfig creates a minimal configuration file required for
// LoadConfig and returns its path.
func writeTempConfig(t *testing.T) string {
	t.Helper()
	content := `app:
  name: "leverflow"
  version: "1.0"
leverage:
  init: 1.0
  ref_price: 30000
  decay: 1.5
  min: 0.1
trading:
  quote: "USDT"
  base: "BTC"
  order_size: "0.001"
  no_order_limit: 60000
  max_init_price: 40000
  take_profit_limit_price: "90000"
`
	f, err := os.CreateTemp(t.TempDir(), "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("OKX_API_KEY", "key")
	t.Setenv("OKX_API_SECRET", "secret")
	t.Setenv("OKX_API_PASSPHRASE", "pass")
}

func TestLoadConfig(t *testing.T) {
	setCredentials(t)
	cfg, err := LoadConfig(writeTempConfig(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Exchange.BaseURL != "https://www.okx.com" {
		t.Fatalf("default base url missing: %q", cfg.Exchange.BaseURL)
	}
	if cfg.Trading.MarginMode != "cross" {
		t.Fatalf("default margin mode missing: %q", cfg.Trading.MarginMode)
	}
	if cfg.Trading.Market() != "BTC-USDT" {
		t.Fatalf("unexpected market: %q", cfg.Trading.Market())
	}
	if cfg.Exchange.Credentials.Secret != "secret" {
		t.Fatal("credentials not taken from environment")
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("OKX_API_KEY", "key")
	t.Setenv("OKX_API_SECRET", "")
	t.Setenv("OKX_API_PASSPHRASE", "pass")
	_, err := LoadConfig(writeTempConfig(t))
	if !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("LEVERAGE_INIT", "2.5")
	t.Setenv("ORDER_SIZE", "0.01")
	t.Setenv("TAKE_PROFIT_LIMIT_PRICE", "123456.7")
	cfg, err := LoadConfig(writeTempConfig(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Leverage.Init != 2.5 {
		t.Fatalf("LEVERAGE_INIT override not applied: %f", cfg.Leverage.Init)
	}
	if cfg.Trading.OrderSize != "0.01" {
		t.Fatalf("ORDER_SIZE override not applied: %q", cfg.Trading.OrderSize)
	}
	if cfg.Trading.TakeProfitLimit != "123456.7" {
		t.Fatalf("TAKE_PROFIT_LIMIT_PRICE override not applied: %q", cfg.Trading.TakeProfitLimit)
	}
}

func TestLoadConfigUnsupportedBase(t *testing.T) {
	setCredentials(t)
	t.Setenv("BASE", "DOGE")
	_, err := LoadConfig(writeTempConfig(t))
	if !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("expected config error for unsupported base, got %v", err)
	}
}

func TestAppEnvironmentAliases(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	if env := AppEnvironment(); env != EnvironmentProduction {
		t.Fatalf("alias not normalised: %q", env)
	}
	if !IsProductionLike(EnvironmentStaging) {
		t.Fatal("staging should be production-like")
	}
	if IsProductionLike(EnvironmentDevelopment) {
		t.Fatal("development should not be production-like")
	}
}
