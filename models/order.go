package models

import "leverflow/errs"

// Order sides, trade modes and order types as OKX spells them on the wire.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	MarginModeCross = "cross"

	OrderTypeMarket   = "market"
	OrderTypePostOnly = "post_only"
)

// OrderRequest is the POST /api/v5/trade/order body. Size and price stay
// strings end to end so verdict values reach the wire untransformed.
type OrderRequest struct {
	InstID    string `json:"instId"`
	TradeMode string `json:"tdMode"`
	Side      string `json:"side"`
	OrderType string `json:"ordType"`
	Size      string `json:"sz"`
	Price     string `json:"px,omitempty"`
}

// OrderAck is one element of the order endpoint's data list.
type OrderAck struct {
	OrderID       string `json:"ordId"`
	ClientOrderID string `json:"clOrdId"`
	SCode         string `json:"sCode"`
	SMsg          string `json:"sMsg"`
}

// Err returns an exchange-rejected error when the ack carries a non-zero
// per-order status code, nil otherwise.
func (a *OrderAck) Err() error {
	if a.SCode != "" && a.SCode != "0" {
		return errs.Rejected(a.SCode, a.SMsg)
	}
	return nil
}
