// Package errs provides the structured error values used across leverflow.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the top-level boundary can report it
// without inspecting messages.
type Kind string

const (
	// KindConfig indicates a missing or invalid configuration value.
	// These are detected before any network call is made.
	KindConfig Kind = "config"
	// KindTransport indicates a network or HTTP-level failure.
	KindTransport Kind = "transport"
	// KindMalformedResponse indicates an exchange payload whose shape was
	// unexpected, such as an empty wrapping collection.
	KindMalformedResponse Kind = "malformed_response"
	// KindExchangeRejected indicates a business error reported by the
	// exchange inside a well-formed response envelope.
	KindExchangeRejected Kind = "exchange_rejected"
	// KindDegenerateAccount indicates account figures that make the
	// leverage computation undefined, such as zero total equity.
	KindDegenerateAccount Kind = "degenerate_account"
	// KindInvalidMarketData indicates unusable market figures, such as a
	// non-positive top-of-book price.
	KindInvalidMarketData Kind = "invalid_market_data"
)

// E is the error value raised by the client and the decision engine.
type E struct {
	Kind    Kind
	Message string
	// HTTPStatus carries the transport status when the failure surfaced
	// from an HTTP response, zero otherwise.
	HTTPStatus int
	// RawCode and RawMsg carry the exchange's own error fields for
	// exchange-rejected failures.
	RawCode string
	RawMsg  string

	cause error
}

// New constructs an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// HTTP constructs a transport error carrying the response status.
func HTTP(status int, format string, args ...interface{}) *E {
	return &E{Kind: KindTransport, Message: fmt.Sprintf(format, args...), HTTPStatus: status}
}

// Rejected constructs an exchange-rejected error from the envelope's
// code and message fields.
func Rejected(code, msg string) *E {
	return &E{
		Kind:    KindExchangeRejected,
		Message: fmt.Sprintf("exchange rejected request: code=%s msg=%q", code, msg),
		RawCode: code,
		RawMsg:  msg,
	}
}

func (e *E) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *E) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is (or wraps) an *E of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or an empty Kind when err does not
// carry one.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
