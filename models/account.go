package models

import (
	"strconv"

	"leverflow/errs"
)

// CurrencyBalance is one entry of the balance snapshot's details list.
// OKX reports every figure as a decimal string.
type CurrencyBalance struct {
	Currency  string `json:"ccy"`
	AvailBal  string `json:"availBal"`
	CashBal   string `json:"cashBal"`
	EquityUSD string `json:"eqUsd"`
}

// AccountBalance is the account-level balance snapshot returned by
// GET /api/v5/account/balance.
type AccountBalance struct {
	TotalEquity    string            `json:"totalEq"`
	NotionalUSD    string            `json:"notionalUsd"`
	InitialMargin  string            `json:"imr"`
	MaintMargin    string            `json:"mmr"`
	AdjustedEquity string            `json:"adjEq"`
	MarginRatio    string            `json:"mgnRatio"`
	Details        []CurrencyBalance `json:"details"`
}

// IndexByCurrency reduces the details list into a map keyed by currency
// code. Duplicate codes overwrite; the last entry wins.
func (b *AccountBalance) IndexByCurrency() map[string]CurrencyBalance {
	coins := make(map[string]CurrencyBalance, len(b.Details))
	for _, d := range b.Details {
		coins[d.Currency] = d
	}
	return coins
}

// Position is a single open position from GET /api/v5/account/positions.
type Position struct {
	InstID     string `json:"instId"`
	MarginMode string `json:"mgnMode"`
	Pos        string `json:"pos"`
	AvgPrice   string `json:"avgPx"`
	Leverage   string `json:"lever"`
	UPL        string `json:"upl"`
	Liability  string `json:"liab"`
}

// RiskBalance is a per-currency equity entry inside a position-risk record.
type RiskBalance struct {
	Currency string `json:"ccy"`
	Equity   string `json:"eq"`
}

// RiskRecord is one element of GET /api/v5/account/account-position-risk.
type RiskRecord struct {
	AdjustedEquity string        `json:"adjEq"`
	BalData        []RiskBalance `json:"balData"`
}

// QuoteEquity returns the equity figure for the given currency from the
// record's balance data, or false when the currency is absent.
func (r *RiskRecord) QuoteEquity(ccy string) (float64, bool) {
	for _, b := range r.BalData {
		if b.Currency == ccy {
			v, err := strconv.ParseFloat(b.Equity, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

// Float parses an OKX decimal string, failing with a malformed-response
// error so callers never operate on a silently-zeroed figure.
func Float(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errs.Wrap(errs.KindMalformedResponse, err, "field %s is not numeric: %q", field, value)
	}
	return v, nil
}
