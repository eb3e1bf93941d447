// Package netutil classifies failures of outbound Bot API calls.
package netutil

import (
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"
)

// MaxFloodWait caps how long a caller waits on a single flood-control reply.
const MaxFloodWait = 5 * time.Second

// ShouldRetry reports whether a Bot API call failed for a transient reason.
// Flood control replies qualify when their retry_after fits under
// MaxFloodWait; other API rejections never do.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if wait, ok := RetryAfter(err); ok {
		return wait <= MaxFloodWait
	}

	switch {
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED):
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, io.EOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// RetryAfter extracts the wait Telegram asked for in a 429 reply.
func RetryAfter(err error) (time.Duration, bool) {
	var flood tele.FloodError
	if !errors.As(err, &flood) {
		return 0, false
	}
	return time.Duration(flood.RetryAfter) * time.Second, true
}
