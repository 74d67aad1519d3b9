package engine

import (
	"reflect"
	"testing"

	"leverflow/config"
	"leverflow/errs"
	"leverflow/models"
)

func tradeParams() config.TradingConfig {
	return config.TradingConfig{
		Quote:           "USDT",
		Base:            "BTC",
		OrderSize:       "0.01",
		NoOrderLimit:    60000,
		MaxInitPrice:    40000,
		TakeProfitLimit: "90000",
		MarginMode:      "cross",
	}
}

func book(bid, ask string) models.OrderBook {
	return models.OrderBook{
		Asks: [][]string{{ask, "1", "0", "1"}},
		Bids: [][]string{{bid, "1", "0", "1"}},
	}
}

func balance(totalEq, notional string, details ...models.CurrencyBalance) models.AccountBalance {
	return models.AccountBalance{
		TotalEquity: totalEq,
		NotionalUSD: notional,
		Details:     details,
	}
}

func TestDecideInitPriceGateWinsOverBuySignal(t *testing.T) {
	// Base currency entirely absent, bid above the max-init ceiling and
	// leverage far below target: the init gate must still win.
	snap := Snapshot{
		Balance: balance("1000", "0", models.CurrencyBalance{Currency: "USDT", AvailBal: "1000", CashBal: "1000", EquityUSD: "1000"}),
		Book:    book("50000", "50000"),
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 50000, Decay: 1, Min: 0.1}

	d, err := Decide(snap, lev, tradeParams())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Buy.Place || d.Buy.Reason != ReasonInitPriceTooHigh {
		t.Fatalf("expected init-price skip, got %+v", d.Buy)
	}
}

func TestDecideBidCeilingCheckedForFundedAccounts(t *testing.T) {
	// Base currency well above dust, so the init gate cannot match; the
	// no-order ceiling must still be checked.
	snap := Snapshot{
		Balance: balance("1000", "0", models.CurrencyBalance{Currency: "BTC", AvailBal: "0.5", CashBal: "0.5", EquityUSD: "35000"}),
		Book:    book("70000", "70001"),
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 70000, Decay: 1, Min: 0.1}

	d, err := Decide(snap, lev, tradeParams())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Buy.Place || d.Buy.Reason != ReasonAboveNoOrderLimit {
		t.Fatalf("expected no-order-limit skip, got %+v", d.Buy)
	}
}

func TestDecideLeverageRatioBoundary(t *testing.T) {
	lev := config.LeverageConfig{Init: 1, RefPrice: 100, Decay: 1, Min: 0.1}
	trade := tradeParams()
	details := models.CurrencyBalance{Currency: "BTC", AvailBal: "0", CashBal: "1", EquityUSD: "100"}

	// current/target exactly 0.99 is not below the threshold: skip.
	snap := Snapshot{
		Balance: balance("100", "99", details),
		Book:    book("100", "100"),
	}
	d, err := Decide(snap, lev, trade)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Buy.Place || d.Buy.Reason != ReasonLeverageSufficient {
		t.Fatalf("ratio of exactly 0.99 must skip, got %+v", d.Buy)
	}

	// Just below: place the configured size.
	snap.Balance = balance("100", "98.99", details)
	d, err = Decide(snap, lev, trade)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !d.Buy.Place || d.Buy.Size != "0.01" {
		t.Fatalf("ratio below 0.99 must buy the configured size, got %+v", d.Buy)
	}
}

func TestDecideSellDustBoundary(t *testing.T) {
	lev := config.LeverageConfig{Init: 1, RefPrice: 2, Decay: 1, Min: 0.1}
	trade := tradeParams()

	// avail * bid exactly 1.0 proceeds (the boundary is strictly < 1).
	snap := Snapshot{
		Balance: balance("100", "100", models.CurrencyBalance{Currency: "BTC", AvailBal: "0.5", CashBal: "0.5", EquityUSD: "100"}),
		Book:    book("2", "2"),
	}
	d, err := Decide(snap, lev, trade)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !d.Sell.Place {
		t.Fatalf("avail*bid == 1.0 must sell, got %+v", d.Sell)
	}
	if d.Sell.Price != "90000" || d.Sell.Size != "0.5" {
		t.Fatalf("sell must carry the take-profit price and the full available balance untransformed, got %+v", d.Sell)
	}

	// Just below one USD equivalent: dust skip.
	snap.Balance = balance("100", "100", models.CurrencyBalance{Currency: "BTC", AvailBal: "0.25", CashBal: "0.25", EquityUSD: "100"})
	d, err = Decide(snap, lev, trade)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Sell.Place || d.Sell.Reason != ReasonNoSellableBalance {
		t.Fatalf("avail*bid < 1 must dust-skip, got %+v", d.Sell)
	}
}

func TestDecideZeroBalanceScenario(t *testing.T) {
	// Fresh account holding a zero-value BTC entry, price above the init
	// ceiling: the buy skips on the init gate and the sell check still
	// runs (BTC is present) and dust-skips.
	snap := Snapshot{
		Balance: balance("1000", "0", models.CurrencyBalance{Currency: "BTC", AvailBal: "0", CashBal: "0", EquityUSD: "0"}),
		Book:    book("50000", "50000"),
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 50000, Decay: 1, Min: 0.1}

	d, err := Decide(snap, lev, tradeParams())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Buy.Place || d.Buy.Reason != ReasonInitPriceTooHigh {
		t.Fatalf("expected init-price skip, got %+v", d.Buy)
	}
	if d.Sell.Place || d.Sell.Reason != ReasonNoSellableBalance {
		t.Fatalf("expected no-sellable-balance skip, got %+v", d.Sell)
	}
}

func TestDecideDeterministic(t *testing.T) {
	snap := Snapshot{
		Balance: balance("100", "50", models.CurrencyBalance{Currency: "BTC", AvailBal: "0.1", CashBal: "0.1", EquityUSD: "5000"}),
		Risks:   []models.RiskRecord{{BalData: []models.RiskBalance{{Currency: "USDT", Equity: "-100"}}}},
		Book:    book("50000", "50001"),
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 50000, Decay: 1.5, Min: 0.1}

	a, err := Decide(snap, lev, tradeParams())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	b, err := Decide(snap, lev, tradeParams())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same snapshot produced different decisions:\n%+v\n%+v", a, b)
	}
}

func TestDecideRejectsBadMarketData(t *testing.T) {
	snap := Snapshot{
		Balance: balance("100", "50"),
		Book: models.OrderBook{
			Asks: [][]string{{"0", "1"}},
			Bids: [][]string{{"50000", "1"}},
		},
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 50000, Decay: 1, Min: 0.1}

	_, err := Decide(snap, lev, tradeParams())
	if !errs.IsKind(err, errs.KindInvalidMarketData) {
		t.Fatalf("expected invalid market data, got %v", err)
	}
}

func TestDecideZeroEquityIsDegenerate(t *testing.T) {
	snap := Snapshot{
		Balance: balance("0", "0"),
		Book:    book("50000", "50000"),
	}
	lev := config.LeverageConfig{Init: 1, RefPrice: 50000, Decay: 1, Min: 0.1}

	_, err := Decide(snap, lev, tradeParams())
	if !errs.IsKind(err, errs.KindDegenerateAccount) {
		t.Fatalf("expected degenerate account state, got %v", err)
	}
}
