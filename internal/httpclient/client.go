// Package httpclient builds the shared connection pool and per-request
// builder described in spec.md §4.3 and §4.2 (Request Builder). It is
// adapted from the teacher's internal/httpclient/client.go, generalized to
// read pooling and policy knobs from a run's TestConfig rather than a bare
// timeout.
package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/torosent/loadrush/internal/errkind"
)

// ClientConfig carries the connection-policy knobs a shared *http.Client
// needs, decoupled from the engine package to avoid an import cycle.
type ClientConfig struct {
	Concurrency        int
	Timeout            time.Duration
	HTTP2              bool
	DisableKeepAlive   bool
	DisableRedirects   bool
	DisableCompression bool
	Proxy              string
}

// NewClient builds the single shared HTTP client every Worker issues
// requests through. The idle pool is capped at 2x concurrency in total and
// at concurrency per host (spec.md §4.3); in-flight requests are bounded by
// the worker count itself, since each Worker has at most one outstanding.
func NewClient(cfg ClientConfig) (*http.Client, error) {
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	idleTimeout := 30 * time.Second
	if cfg.DisableKeepAlive {
		idleTimeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     cfg.HTTP2,
		DisableKeepAlives:     cfg.DisableKeepAlive,
		DisableCompression:    cfg.DisableCompression,
		MaxIdleConns:          2 * concurrency,
		MaxIdleConnsPerHost:   concurrency,
		IdleConnTimeout:       idleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if strings.TrimSpace(cfg.Proxy) != "" {
		proxyURL, err := proxyFromString(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}

	if cfg.DisableRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// Classify maps a transport-level error into the error taxonomy. Context
// cancellation and deadline handling are left to the caller (the Worker),
// which can distinguish a run-level cancellation from a per-request
// timeout by inspecting both the parent and request contexts; Classify only
// handles the remaining network-layer failures: a net.Error that reports a
// timeout becomes Timeout, and everything else (DNS, connection refused,
// TLS, mid-request read/write failures) becomes NetworkError.
func Classify(err error) (kind errkind.Kind, message string) {
	if err == nil {
		return errkind.None, ""
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errkind.Timeout, err.Error()
	}
	return errkind.NetworkError, err.Error()
}

// WithTrace attaches an httptrace.ClientTrace to ctx that records DNS and
// connection-create timings, per spec.md §4.3: sampling is best-effort and
// produces nothing when a cached connection is reused (the start callbacks
// simply never fire in that case).
func WithTrace(ctx context.Context) (context.Context, *ConnTiming) {
	timing := &ConnTiming{}
	return traceContext(ctx, timing), timing
}

// ConnTiming holds the connection-phase samples gathered for one request.
type ConnTiming struct {
	DNS         time.Duration
	DNSSampled  bool
	Connect     time.Duration
	ConnSampled bool
}
