package bot

import (
	"leverflow/engine"
	"leverflow/logger"
	"leverflow/models"
)

// report logs the post-run account summary, most important information
// last. Everything here is informational; missing fields degrade to
// omitted lines, never to failures.
func (r *Runner) report(decision engine.Decision, balance models.AccountBalance, coins map[string]models.CurrencyBalance) {
	log := r.log.WithComponent("report")
	base := r.cfg.Trading.Base
	quote := r.cfg.Trading.Quote

	log.WithFields(logger.Fields{"imr": balance.InitialMargin}).Info("initial margin USD")
	log.WithFields(logger.Fields{"mmr": balance.MaintMargin}).Info("maintenance margin USD")

	// Logged whenever the field is present and numeric; a healthy zero
	// ratio still gets a line.
	if balance.MarginRatio != "" {
		if ratio, err := models.Float("mgnRatio", balance.MarginRatio); err == nil {
			log.WithFields(logger.Fields{"margin_ratio_pct": ratio * 100}).Info("margin ratio")
		}
	}

	for _, ccy := range []string{base, quote} {
		coin, ok := coins[ccy]
		if !ok {
			continue
		}
		log.WithFields(logger.Fields{
			"currency":      ccy,
			"balance_free":  coin.AvailBal,
			"balance_total": coin.CashBal,
			"balance_usd":   coin.EquityUSD,
		}).Info("coin balance")
	}

	log.WithFields(logger.Fields{"notional_usd": balance.NotionalUSD}).Info("total notional value USD")
	log.WithFields(logger.Fields{"adj_eq": balance.AdjustedEquity}).Info("total net USD")
	log.WithFields(logger.Fields{"best_ask": decision.BestAsk, "best_bid": decision.BestBid}).Info("top of book")
	log.WithFields(logger.Fields{"price": r.cfg.Trading.TakeProfitLimit}).Info("sell order price")

	if decision.LiqPriceOK {
		log.WithFields(logger.Fields{"liq_price_est": decision.LiqPrice}).Info("estimated liquidation price")
	} else {
		log.Info("estimated liquidation price unavailable")
	}

	log.WithFields(logger.Fields{"target": decision.TargetLeverage}).Info("current target leverage")
	log.WithFields(logger.Fields{"leverage": decision.CurrentLeverage}).Info("estimated leverage")
	log.WithFields(logger.Fields{"total_eq": balance.TotalEquity}).Info("total equity USD")
}
