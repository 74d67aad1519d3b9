// Package okx implements the signed OKX v5 REST client used by leverflow.
// Every logical operation issues exactly one authenticated HTTP call and
// returns the envelope's data payload, or fails with a typed error.
package okx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leverflow/config"
	"leverflow/errs"
	"leverflow/logger"
)

const apiPrefix = "/api/v5/"

// Client is the authenticated OKX REST client. It is safe for the
// strictly sequential call pattern the bot uses; it keeps no state
// between calls beyond the connection pool.
type Client struct {
	creds      config.Credentials
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Log

	// now is the clock used for signing timestamps; replaced in tests.
	now func() time.Time
}

// Option configures optional client behaviour.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at a different host, typically a test
// server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithClock replaces the signing clock.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient builds a client from the exchange configuration. Missing
// credential fields are a configuration error; they are rejected here so
// no unsigned or half-signed request can ever be sent.
func NewClient(cfg config.ExchangeConfig, opts ...Option) (*Client, error) {
	creds := cfg.Credentials
	if creds.Key == "" || creds.Secret == "" || creds.Passphrase == "" {
		return nil, errs.New(errs.KindConfig, "exchange credentials are incomplete")
	}

	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateLimit.BurstSize
	if burst <= 0 {
		burst = 1
	}

	transport := &http.Transport{
		MaxIdleConns:    cfg.ConnectionPool.MaxIdleConns,
		MaxConnsPerHost: cfg.ConnectionPool.MaxConnsPerHost,
		IdleConnTimeout: cfg.ConnectionPool.IdleConnTimeout,
	}

	c := &Client{
		creds:   creds,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: userAgentTransport{agent: "leverflow", base: transport},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     logger.GetLogger(),
		now:     time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = "https://www.okx.com"
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// envelope is the outer JSON shape of every OKX v5 response.
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// get issues a signed GET request for the given endpoint path (relative to
// /api/v5/) and returns the envelope's data field.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, path, query, nil)
}

// post issues a signed POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "rate limiter wait failed")
	}

	// Finalize path, query and body before signing. The signed request
	// path must be byte-identical to what goes on the wire.
	requestPath := apiPrefix + path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, err, "failed to encode request body")
		}
	}

	ts := signTimestamp(c.now())
	signature := sign(c.creds.Secret, ts, method, requestPath, bodyBytes)

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, reader)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OK-ACCESS-KEY", c.creds.Key)
	req.Header.Set("OK-ACCESS-SIGN", signature)
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.creds.Passphrase)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "%s %s failed", method, requestPath)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "failed to read response body")
	}

	return c.processResponse(method, requestPath, resp.StatusCode, raw)
}

// processResponse decodes the response envelope. When the body is not
// JSON the HTTP status decides the failure: a non-2xx status becomes a
// transport error carrying that status, a 2xx non-JSON body is a
// malformed response. A well-formed envelope with a non-zero code is an
// exchange rejection surfaced before data is unwrapped, so business
// errors riding inside a 200 never reach callers as data.
func (c *Client) processResponse(method, requestPath string, status int, raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status < 200 || status >= 300 {
			return nil, errs.HTTP(status, "%s %s returned HTTP %d", method, requestPath, status)
		}
		return nil, errs.Wrap(errs.KindMalformedResponse, err, "%s %s returned a non-JSON body", method, requestPath)
	}

	if env.Code != "" && env.Code != "0" {
		return nil, errs.Rejected(env.Code, env.Msg)
	}

	return env.Data, nil
}
