package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/openai/openai-go"
	"google.golang.org/api/googleapi"
)

// ErrEmptyOutput marks responses that arrived but carried no usable text.
// Empty output is treated the same as a transient provider failure: the call
// is eligible for the single fallback hop.
var ErrEmptyOutput = errors.New("provider returned empty output")

// IsTransient reports whether a generation error is worth the one permitted
// fallback attempt: timeouts, rate limits, provider-side 5xx, and empty or
// malformed output. Everything else (bad credentials, invalid request) is
// permanent and fails the call outright.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrEmptyOutput) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}

	var oerr *openai.Error
	if errors.As(err, &oerr) {
		return oerr.StatusCode == 429 || oerr.StatusCode >= 500
	}

	// Some SDK paths surface rate limiting as plain text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout")
}
