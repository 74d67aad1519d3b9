// Package engine converts one account/market snapshot into a leverage
// target and an order-placement verdict. It performs no I/O and is
// deterministic: the same snapshot always yields the same decision.
package engine

import (
	"leverflow/config"
	"leverflow/models"
)

// Skip reasons, stable for log and test consumption.
const (
	ReasonInitPriceTooHigh   = "init price too high"
	ReasonAboveNoOrderLimit  = "above no-order limit"
	ReasonLeverageSufficient = "leverage sufficient"
	ReasonNoSellableBalance  = "no sellable balance"
	ReasonBaseNotHeld        = "base currency not held"
)

// The buy gate fires when the current/target ratio is below this
// fraction, leaving a small band so the bot does not chase exact parity.
const leverageRatioThreshold = 0.99

// A balance whose USD equivalent is below this is treated as dust.
const dustUSD = 1.0

// Snapshot is everything the engine looks at for one invocation.
type Snapshot struct {
	Balance   models.AccountBalance
	Positions map[string]models.Position
	Risks     []models.RiskRecord
	Book      models.OrderBook
}

// BuyVerdict says whether to place a market buy this invocation.
type BuyVerdict struct {
	Place  bool
	Reason string
	Size   string
}

// SellVerdict says whether to place the take-profit limit sell. The
// resulting order is always a post-only limit at the configured
// take-profit price for the full available base balance.
type SellVerdict struct {
	Place  bool
	Reason string
	Price  string
	Size   string
}

// Decision is the engine's output for one snapshot.
type Decision struct {
	Market          string
	TargetLeverage  float64
	CurrentLeverage float64
	BestAsk         float64
	BestBid         float64
	Buy             BuyVerdict
	Sell            SellVerdict

	// LiqPrice is a reporting-only estimate; LiqPriceOK is false when
	// the inputs to compute it were missing or degenerate.
	LiqPrice   float64
	LiqPriceOK bool
}

// Decide runs the full decision sequence against a snapshot.
func Decide(snap Snapshot, lev config.LeverageConfig, trade config.TradingConfig) (Decision, error) {
	coins := snap.Balance.IndexByCurrency()

	current, err := CurrentLeverage(snap.Balance)
	if err != nil {
		return Decision{}, err
	}

	ask, err := snap.Book.BestAsk()
	if err != nil {
		return Decision{}, err
	}
	bid, err := snap.Book.BestBid()
	if err != nil {
		return Decision{}, err
	}

	target, err := TargetLeverage(lev, ask)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Market:          trade.Market(),
		TargetLeverage:  target,
		CurrentLeverage: current,
		BestAsk:         ask,
		BestBid:         bid,
	}

	baseCoin, hasBase := coins[trade.Base]
	baseIsDust := !hasBase
	if hasBase {
		eqUSD, err := models.Float("eqUsd", baseCoin.EquityUSD)
		if err != nil {
			return Decision{}, err
		}
		baseIsDust = eqUSD < dustUSD
	}

	// Ordered gates; the first match wins. The bid-ceiling gate runs
	// whenever the init gate fails to match, regardless of which of its
	// clauses failed.
	switch {
	case baseIsDust && bid > trade.MaxInitPrice:
		d.Buy = BuyVerdict{Reason: ReasonInitPriceTooHigh}
	case bid > trade.NoOrderLimit:
		d.Buy = BuyVerdict{Reason: ReasonAboveNoOrderLimit}
	case current/target < leverageRatioThreshold:
		d.Buy = BuyVerdict{Place: true, Size: trade.OrderSize}
	default:
		d.Buy = BuyVerdict{Reason: ReasonLeverageSufficient}
	}

	if hasBase {
		avail, err := models.Float("availBal", baseCoin.AvailBal)
		if err != nil {
			return Decision{}, err
		}
		if avail*bid < dustUSD {
			d.Sell = SellVerdict{Reason: ReasonNoSellableBalance}
		} else {
			// Full available balance, passed through as the exchange
			// reported it so the order body carries the exact string.
			d.Sell = SellVerdict{Place: true, Price: trade.TakeProfitLimit, Size: baseCoin.AvailBal}
		}
	} else {
		d.Sell = SellVerdict{Reason: ReasonBaseNotHeld}
	}

	d.LiqPrice, d.LiqPriceOK = liquidationEstimate(snap.Balance, coins, snap.Risks, trade.Base, trade.Quote)

	return d, nil
}
