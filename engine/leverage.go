package engine

import (
	"math"

	"leverflow/config"
	"leverflow/errs"
	"leverflow/models"
)

// CurrentLeverage estimates the account's leverage as notional USD
// exposure over total equity. Zero equity makes the ratio undefined and
// is reported as a degenerate account state, never Inf or NaN.
func CurrentLeverage(balance models.AccountBalance) (float64, error) {
	notional, err := models.Float("notionalUsd", balance.NotionalUSD)
	if err != nil {
		return 0, err
	}
	totalEq, err := models.Float("totalEq", balance.TotalEquity)
	if err != nil {
		return 0, err
	}
	if totalEq == 0 {
		return 0, errs.New(errs.KindDegenerateAccount, "total equity is zero, leverage is undefined")
	}
	return notional / totalEq, nil
}

// TargetLeverage computes the desired leverage for the current ask
// price: max(init * (ref_price/ask)^decay, min). The target decays as
// price rises above the reference and is floored at the configured
// minimum.
func TargetLeverage(params config.LeverageConfig, bestAsk float64) (float64, error) {
	if bestAsk <= 0 {
		return 0, errs.New(errs.KindInvalidMarketData, "best ask %f is not positive", bestAsk)
	}
	return math.Max(params.Init*math.Pow(params.RefPrice/bestAsk, params.Decay), params.Min), nil
}

// liquidationEstimate backs an approximate liquidation price out of the
// maintenance margin, the quote-currency equity from the first risk
// record and the base currency's cash balance. It is informational only:
// any missing or degenerate input reports unavailable instead of failing
// the invocation.
func liquidationEstimate(balance models.AccountBalance, coins map[string]models.CurrencyBalance, risks []models.RiskRecord, base, quote string) (float64, bool) {
	baseCoin, hasBase := coins[base]
	if _, hasQuote := coins[quote]; !hasBase || !hasQuote || len(risks) == 0 {
		return 0, false
	}

	mmr, err := models.Float("mmr", balance.MaintMargin)
	if err != nil {
		return 0, false
	}
	quoteEq, ok := risks[0].QuoteEquity(quote)
	if !ok {
		return 0, false
	}
	// cashBal, not eqUsd: the USD figure would blow the estimate up.
	cash, err := models.Float("cashBal", baseCoin.CashBal)
	if err != nil || cash == 0 {
		return 0, false
	}

	return (mmr - quoteEq) / cash, true
}
