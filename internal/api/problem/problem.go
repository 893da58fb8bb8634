// Package problem is the single funnel every handler and middleware uses
// to emit an error response, so the wire shape of a failure never drifts
// between call sites.
package problem

import (
	"encoding/json"
	"net/http"
)

// envelope is the literal error shape required on the wire: {error, code}
// plus an optional retry_after_seconds carried only by 429 responses.
type envelope struct {
	Error            string `json:"error"`
	Code             int    `json:"code"`
	RetryAfterSecond *int   `json:"retry_after_seconds,omitempty"`
}

// Write sends the standard error envelope with the given status and
// message.
func Write(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: message, Code: status})
}

// WriteRateLimited sends a 429 with the retry_after_seconds field the
// token-bucket limiter's window requires.
func WriteRateLimited(w http.ResponseWriter, message string, retryAfterSeconds int) {
	if message == "" {
		message = http.StatusText(http.StatusTooManyRequests)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(envelope{
		Error:            message,
		Code:             http.StatusTooManyRequests,
		RetryAfterSecond: &retryAfterSeconds,
	})
}
