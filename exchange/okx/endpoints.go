package okx

import (
	"context"
	"encoding/json"
	"net/url"

	"leverflow/errs"
	"leverflow/models"
)

// GetBalance returns the balance snapshot scoped to a single currency.
func (c *Client) GetBalance(ctx context.Context, ccy string) (models.AccountBalance, error) {
	query := url.Values{}
	query.Set("ccy", ccy)
	data, err := c.get(ctx, "account/balance", query)
	if err != nil {
		return models.AccountBalance{}, err
	}
	return unwrapBalance(data)
}

// GetBalances returns the full account balance snapshot. The exchange
// wraps it in a single-element list; an empty list is a malformed
// response, never an index fault.
func (c *Client) GetBalances(ctx context.Context) (models.AccountBalance, error) {
	data, err := c.get(ctx, "account/balance", nil)
	if err != nil {
		return models.AccountBalance{}, err
	}
	return unwrapBalance(data)
}

func unwrapBalance(data json.RawMessage) (models.AccountBalance, error) {
	var balances []models.AccountBalance
	if err := json.Unmarshal(data, &balances); err != nil {
		return models.AccountBalance{}, errs.Wrap(errs.KindMalformedResponse, err, "failed to decode balance data")
	}
	if len(balances) == 0 {
		return models.AccountBalance{}, errs.New(errs.KindMalformedResponse, "balance data is empty")
	}
	return balances[0], nil
}

// GetPositions returns open positions keyed by instrument id. Duplicate
// instrument ids overwrite earlier entries; the last one wins.
func (c *Client) GetPositions(ctx context.Context) (map[string]models.Position, error) {
	data, err := c.get(ctx, "account/positions", nil)
	if err != nil {
		return nil, err
	}
	var list []models.Position
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errs.Wrap(errs.KindMalformedResponse, err, "failed to decode positions data")
	}
	positions := make(map[string]models.Position, len(list))
	for _, p := range list {
		positions[p.InstID] = p
	}
	return positions, nil
}

// GetAccountPositionRisk returns the risk records for the given
// instrument type, e.g. MARGIN.
func (c *Client) GetAccountPositionRisk(ctx context.Context, instType string) ([]models.RiskRecord, error) {
	query := url.Values{}
	query.Set("instType", instType)
	data, err := c.get(ctx, "account/account-position-risk", query)
	if err != nil {
		return nil, err
	}
	var risks []models.RiskRecord
	if err := json.Unmarshal(data, &risks); err != nil {
		return nil, errs.Wrap(errs.KindMalformedResponse, err, "failed to decode position risk data")
	}
	return risks, nil
}

// GetOrderBook returns the order book for the given instrument. The book
// is unwrapped from the exchange's single-element list and its top of
// book is verified non-empty so the decision engine never sees a
// malformed snapshot.
func (c *Client) GetOrderBook(ctx context.Context, instID string) (models.OrderBook, error) {
	query := url.Values{}
	query.Set("instId", instID)
	query.Set("sz", "100")
	data, err := c.get(ctx, "market/books", query)
	if err != nil {
		return models.OrderBook{}, err
	}
	var books []models.OrderBook
	if err := json.Unmarshal(data, &books); err != nil {
		return models.OrderBook{}, errs.Wrap(errs.KindMalformedResponse, err, "failed to decode order book data")
	}
	if len(books) == 0 {
		return models.OrderBook{}, errs.New(errs.KindMalformedResponse, "order book data is empty")
	}
	book := books[0]
	if len(book.Asks) == 0 || len(book.Bids) == 0 {
		return models.OrderBook{}, errs.New(errs.KindMalformedResponse, "order book for %s has an empty side", instID)
	}
	return book, nil
}

// PlaceMarketOrder submits a market order and returns the exchange ack.
func (c *Client) PlaceMarketOrder(ctx context.Context, instID, side, size, mode string) (models.OrderAck, error) {
	return c.placeOrder(ctx, models.OrderRequest{
		InstID:    instID,
		TradeMode: mode,
		Side:      side,
		Size:      size,
		OrderType: models.OrderTypeMarket,
	})
}

// PlaceLimitOrder submits a limit order. The postOnly flag is accepted
// for interface compatibility but the order type sent is always
// post_only; the flag has never been honored and changing that would
// alter live trading behaviour.
func (c *Client) PlaceLimitOrder(ctx context.Context, instID, side, size, mode, price string, postOnly bool) (models.OrderAck, error) {
	_ = postOnly
	return c.placeOrder(ctx, models.OrderRequest{
		InstID:    instID,
		TradeMode: mode,
		Side:      side,
		Size:      size,
		Price:     price,
		OrderType: models.OrderTypePostOnly,
	})
}

func (c *Client) placeOrder(ctx context.Context, order models.OrderRequest) (models.OrderAck, error) {
	data, err := c.post(ctx, "trade/order", order)
	if err != nil {
		return models.OrderAck{}, err
	}
	var acks []models.OrderAck
	if err := json.Unmarshal(data, &acks); err != nil {
		return models.OrderAck{}, errs.Wrap(errs.KindMalformedResponse, err, "failed to decode order ack")
	}
	if len(acks) == 0 {
		return models.OrderAck{}, errs.New(errs.KindMalformedResponse, "order ack data is empty")
	}
	return acks[0], nil
}
