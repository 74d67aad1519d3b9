package models

import (
	"strconv"

	"leverflow/errs"
)

// OrderBook is the top element of GET /api/v5/market/books. Each level is
// [price, size, liquidated orders, order count] as decimal strings; only
// level 0 matters here.
type OrderBook struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
	TS   string     `json:"ts"`
}

// BestAsk returns the level-0 ask price. An absent level is a malformed
// response; a non-positive price is invalid market data.
func (b *OrderBook) BestAsk() (float64, error) {
	return bestPrice("asks", b.Asks)
}

// BestBid returns the level-0 bid price with the same failure rules as
// BestAsk.
func (b *OrderBook) BestBid() (float64, error) {
	return bestPrice("bids", b.Bids)
}

func bestPrice(side string, levels [][]string) (float64, error) {
	if len(levels) == 0 || len(levels[0]) == 0 {
		return 0, errs.New(errs.KindMalformedResponse, "order book has no %s levels", side)
	}
	px, err := strconv.ParseFloat(levels[0][0], 64)
	if err != nil {
		return 0, errs.Wrap(errs.KindMalformedResponse, err, "best %s price is not numeric: %q", side, levels[0][0])
	}
	if px <= 0 {
		return 0, errs.New(errs.KindInvalidMarketData, "best %s price %f is not positive", side, px)
	}
	return px, nil
}
