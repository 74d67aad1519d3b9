package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := New(KindInvalidMarketData, "best ask is %f", -1.0)
	if !IsKind(err, KindInvalidMarketData) {
		t.Fatalf("expected invalid market data kind, got %q", KindOf(err))
	}
	if IsKind(err, KindTransport) {
		t.Fatal("kind should not match transport")
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := HTTP(502, "request failed")
	outer := fmt.Errorf("order placement: %w", inner)
	if !IsKind(outer, KindTransport) {
		t.Fatal("kind lost through fmt.Errorf wrapping")
	}
	var e *E
	if !errors.As(outer, &e) {
		t.Fatal("errors.As failed")
	}
	if e.HTTPStatus != 502 {
		t.Fatalf("expected status 502, got %d", e.HTTPStatus)
	}
}

func TestRejectedCarriesRawFields(t *testing.T) {
	err := Rejected("51000", "Parameter instId error")
	if err.RawCode != "51000" || err.RawMsg != "Parameter instId error" {
		t.Fatalf("raw fields not carried: %+v", err)
	}
	if !IsKind(err, KindExchangeRejected) {
		t.Fatal("wrong kind")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindTransport, cause, "GET /market/books")
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable via errors.Is")
	}
	if err.Error() != "GET /market/books: connection reset" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestKindOfForeignError(t *testing.T) {
	if k := KindOf(errors.New("plain")); k != "" {
		t.Fatalf("expected empty kind, got %q", k)
	}
}
