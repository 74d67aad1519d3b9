package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// timestampLayout renders UTC time the way OKX expects it signed:
// ISO-8601 with millisecond precision and a literal trailing Z,
// e.g. 2024-01-01T00:00:00.000Z. Always 24 characters.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// signTimestamp formats t for both the signature payload and the
// OK-ACCESS-TIMESTAMP header. The same string must be used for both.
func signTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// sign computes base64(HMAC-SHA256(secret, timestamp||method||requestPath||body)).
// requestPath must be the final URL-encoded path including the query string;
// any mutation of path or body after signing invalidates the signature.
func sign(secret, timestamp, method, requestPath string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte(requestPath))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
