package engine

import (
	"testing"

	"leverflow/config"
	"leverflow/errs"
	"leverflow/models"
)

func levParams() config.LeverageConfig {
	return config.LeverageConfig{Init: 1, RefPrice: 100, Decay: 1, Min: 0.1}
}

func TestTargetLeverageAtReferencePrice(t *testing.T) {
	got, err := TargetLeverage(levParams(), 100)
	if err != nil {
		t.Fatalf("target leverage: %v", err)
	}
	if got != 1.0 {
		t.Fatalf("expected 1.0 at the reference price, got %f", got)
	}
}

func TestTargetLeverageDecays(t *testing.T) {
	got, err := TargetLeverage(levParams(), 200)
	if err != nil {
		t.Fatalf("target leverage: %v", err)
	}
	if got != 0.5 {
		t.Fatalf("expected 0.5 at twice the reference price, got %f", got)
	}
}

func TestTargetLeverageFloorsAtMin(t *testing.T) {
	got, err := TargetLeverage(levParams(), 1000000)
	if err != nil {
		t.Fatalf("target leverage: %v", err)
	}
	if got != 0.1 {
		t.Fatalf("expected the minimum 0.1, got %f", got)
	}
}

func TestTargetLeverageRejectsNonPositiveAsk(t *testing.T) {
	for _, ask := range []float64{0, -50000} {
		if _, err := TargetLeverage(levParams(), ask); !errs.IsKind(err, errs.KindInvalidMarketData) {
			t.Fatalf("ask=%f: expected invalid market data, got %v", ask, err)
		}
	}
}

func TestCurrentLeverage(t *testing.T) {
	got, err := CurrentLeverage(models.AccountBalance{NotionalUSD: "150", TotalEquity: "100"})
	if err != nil {
		t.Fatalf("current leverage: %v", err)
	}
	if got != 1.5 {
		t.Fatalf("expected 1.5, got %f", got)
	}
}

func TestCurrentLeverageZeroEquity(t *testing.T) {
	_, err := CurrentLeverage(models.AccountBalance{NotionalUSD: "150", TotalEquity: "0"})
	if !errs.IsKind(err, errs.KindDegenerateAccount) {
		t.Fatalf("expected degenerate account state, got %v", err)
	}
}

func TestLiquidationEstimate(t *testing.T) {
	balance := models.AccountBalance{MaintMargin: "500"}
	coins := map[string]models.CurrencyBalance{
		"BTC":  {Currency: "BTC", CashBal: "0.5"},
		"USDT": {Currency: "USDT", CashBal: "100"},
	}
	risks := []models.RiskRecord{{BalData: []models.RiskBalance{{Currency: "USDT", Equity: "-9500"}}}}

	liq, ok := liquidationEstimate(balance, coins, risks, "BTC", "USDT")
	if !ok {
		t.Fatal("estimate should be available")
	}
	// (500 - (-9500)) / 0.5
	if liq != 20000 {
		t.Fatalf("unexpected liquidation estimate: %f", liq)
	}
}

func TestLiquidationEstimateUnavailable(t *testing.T) {
	balance := models.AccountBalance{MaintMargin: "500"}
	risks := []models.RiskRecord{{BalData: []models.RiskBalance{{Currency: "USDT", Equity: "-100"}}}}

	// Missing quote currency.
	coins := map[string]models.CurrencyBalance{"BTC": {Currency: "BTC", CashBal: "0.5"}}
	if _, ok := liquidationEstimate(balance, coins, risks, "BTC", "USDT"); ok {
		t.Fatal("estimate should be unavailable without the quote currency")
	}

	// Zero cash balance must not divide.
	coins = map[string]models.CurrencyBalance{
		"BTC":  {Currency: "BTC", CashBal: "0"},
		"USDT": {Currency: "USDT", CashBal: "100"},
	}
	if _, ok := liquidationEstimate(balance, coins, risks, "BTC", "USDT"); ok {
		t.Fatal("estimate should be unavailable with zero base cash")
	}

	// No risk records.
	coins["BTC"] = models.CurrencyBalance{Currency: "BTC", CashBal: "0.5"}
	if _, ok := liquidationEstimate(balance, coins, nil, "BTC", "USDT"); ok {
		t.Fatal("estimate should be unavailable without risk data")
	}
}
