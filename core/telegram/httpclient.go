package telegram

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultRequestTimeout    = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
)

// HTTPClientOptions tunes the client used for Bot API calls.
type HTTPClientOptions struct {
	// RequestTimeout bounds a single API call; 0 selects the default.
	RequestTimeout time.Duration
	// LongPollTimeout is added to RequestTimeout so getUpdates is not cut short.
	LongPollTimeout time.Duration
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls. Retries
// are not done here: outbound sends retry through sender.Sender and the long
// poller simply polls again.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if opts.LongPollTimeout > 0 {
		timeout += opts.LongPollTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
