// Package bot wires the signed client and the decision engine into one
// invocation: gather a snapshot, decide, place at most one buy and one
// sell, report. It keeps no state between invocations.
package bot

import (
	"context"
	"time"

	"leverflow/config"
	"leverflow/engine"
	"leverflow/logger"
	"leverflow/models"
)

// Exchange is the slice of the OKX client the bot needs. The concrete
// implementation is exchange/okx.Client.
type Exchange interface {
	GetBalances(ctx context.Context) (models.AccountBalance, error)
	GetPositions(ctx context.Context) (map[string]models.Position, error)
	GetAccountPositionRisk(ctx context.Context, instType string) ([]models.RiskRecord, error)
	GetOrderBook(ctx context.Context, instID string) (models.OrderBook, error)
	PlaceMarketOrder(ctx context.Context, instID, side, size, mode string) (models.OrderAck, error)
	PlaceLimitOrder(ctx context.Context, instID, side, size, mode, price string, postOnly bool) (models.OrderAck, error)
}

// Runner executes one decision cycle at a time. It assumes exclusive
// access to the account for the duration of a cycle; concurrent
// invocations must be serialized by the caller.
type Runner struct {
	exchange Exchange
	cfg      *config.Config
	log      *logger.Log
}

func NewRunner(exchange Exchange, cfg *config.Config, log *logger.Log) *Runner {
	return &Runner{exchange: exchange, cfg: cfg, log: log}
}

// Run performs one full invocation: balances, positions, risk, order
// book, decision, then zero to two order placements. The sequence is
// strictly ordered and aborts at the first failure.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	log := r.log.WithComponent("bot")
	market := r.cfg.Trading.Market()
	log.WithFields(logger.Fields{"market": market}).Info("spot market")

	balance, err := r.exchange.GetBalances(ctx)
	if err != nil {
		return err
	}
	positions, err := r.exchange.GetPositions(ctx)
	if err != nil {
		return err
	}
	risks, err := r.exchange.GetAccountPositionRisk(ctx, "MARGIN")
	if err != nil {
		return err
	}
	book, err := r.exchange.GetOrderBook(ctx, market)
	if err != nil {
		return err
	}

	snap := engine.Snapshot{Balance: balance, Positions: positions, Risks: risks, Book: book}
	log.WithFields(logger.Fields{"balance": balance, "positions": positions, "risks": risks}).Debug("account snapshot")

	decision, err := engine.Decide(snap, r.cfg.Leverage, r.cfg.Trading)
	if err != nil {
		return err
	}

	ordersPlaced, err := r.execute(ctx, decision)
	if err != nil {
		return err
	}

	r.report(decision, balance, balance.IndexByCurrency())

	log.LogMetric("bot", "EstimatedLeverage", decision.CurrentLeverage, "gauge", nil)
	log.LogMetric("bot", "TargetLeverage", decision.TargetLeverage, "gauge", nil)
	log.LogMetric("bot", "OrdersPlaced", ordersPlaced, "counter", nil)
	logger.LogPerformanceEntry(r.log.WithComponent("bot"), "bot", "invocation", time.Since(start), nil)

	return nil
}

// execute places the orders the decision calls for, buy side first.
func (r *Runner) execute(ctx context.Context, decision engine.Decision) (int, error) {
	log := r.log.WithComponent("bot")
	trade := r.cfg.Trading
	placed := 0

	if decision.Buy.Place {
		log.Warn("there is buying power available, placing market buy")
		ack, err := r.exchange.PlaceMarketOrder(ctx, decision.Market, models.SideBuy, decision.Buy.Size, trade.MarginMode)
		if err != nil {
			return placed, err
		}
		if err := ack.Err(); err != nil {
			return placed, err
		}
		placed++
		log.WithFields(logger.Fields{"ordId": ack.OrderID, "size": decision.Buy.Size}).Info("market buy placed")
	} else {
		log.WithFields(logger.Fields{"reason": decision.Buy.Reason}).Warn("no buy order this cycle")
	}

	switch {
	case decision.Sell.Place:
		ack, err := r.exchange.PlaceLimitOrder(ctx, decision.Market, models.SideSell, decision.Sell.Size, trade.MarginMode, decision.Sell.Price, false)
		if err != nil {
			return placed, err
		}
		if err := ack.Err(); err != nil {
			return placed, err
		}
		placed++
		log.WithFields(logger.Fields{"ordId": ack.OrderID, "price": decision.Sell.Price, "size": decision.Sell.Size}).Info("take-profit limit sell placed")
	case decision.Sell.Reason == engine.ReasonNoSellableBalance:
		log.Warn("there are no coins available for sell, maybe a limit order already holds them all")
	default:
		log.WithFields(logger.Fields{"reason": decision.Sell.Reason}).Debug("no sell order this cycle")
	}

	return placed, nil
}
