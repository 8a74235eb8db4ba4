package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"
)

func traceContext(ctx context.Context, timing *ConnTiming) context.Context {
	var dnsStart, connStart time.Time

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !dnsStart.IsZero() {
				timing.DNS = time.Since(dnsStart)
				timing.DNSSampled = true
			}
		},
		ConnectStart: func(string, string) {
			connStart = time.Now()
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil && !connStart.IsZero() {
				timing.Connect = time.Since(connStart)
				timing.ConnSampled = true
			}
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil && !connStart.IsZero() {
				timing.Connect = time.Since(connStart)
				timing.ConnSampled = true
			}
		},
	}
	// The "connect sample" covers TCP/TLS connection establishment as a
	// single phase: it runs from ConnectStart to ConnectDone, and on to
	// TLSHandshakeDone when a TLS handshake follows, matching the original
	// implementation's single connection-create sample.
	return httptrace.WithClientTrace(ctx, trace)
}

func proxyFromString(proxy string) (*url.URL, error) {
	proxy = strings.TrimSpace(proxy)
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address %q: %w", proxy, err)
	}
	return u, nil
}
