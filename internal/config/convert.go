package config

import (
	"fmt"
	"strings"

	"github.com/torosent/loadrush/internal/engine"
	"github.com/torosent/loadrush/internal/httpclient"
)

// ToTestConfig converts a host-facing Config into the engine's
// TestConfig. It does not call Validate — the caller (cmd/loadrush) is
// expected to do that right before constructing the Engine, so
// validation errors are reported at one consistent point.
func (c *Config) ToTestConfig() (*engine.TestConfig, error) {
	if len(c.URLs) == 0 {
		return nil, fmt.Errorf("config: at least one --url is required")
	}
	if !isValidMethod(c.Method) {
		return nil, fmt.Errorf("config: unsupported method %q", c.Method)
	}

	tc := &engine.TestConfig{
		URLs:        c.URLs,
		Method:      strings.ToUpper(c.Method),
		NumRequests: c.NumRequests,
		Duration:    c.Duration,
		Concurrency: c.Concurrency,
		RateLimit:   c.RateLimit,
		Timeout:     c.Timeout,

		Headers:     c.Headers,
		Body:        []byte(c.Body),
		BodyFile:    c.BodyFile,
		ContentType: c.ContentType,

		HasBasicAuth:  c.BasicAuthUser != "" || c.BasicAuthPass != "",
		BasicAuthUser: c.BasicAuthUser,
		BasicAuthPass: c.BasicAuthPass,

		Proxy:              c.Proxy,
		HTTP2:              c.HTTP2,
		Host:               c.Host,
		DisableCompression: c.DisableCompression,
		DisableKeepAlive:   c.DisableKeepAlive,
		DisableRedirects:   c.DisableRedirects,
	}

	for _, raw := range c.FormFields {
		key, value, ok := parseHeader(raw)
		if !ok {
			return nil, fmt.Errorf("config: invalid --form entry %q, expected key=value", raw)
		}
		tc.FormFields = append(tc.FormFields, httpclient.FormField{Key: key, Value: value})
	}
	for _, ref := range c.FormFiles {
		tc.FormFiles = append(tc.FormFiles, engine.FormFileRef{Key: ref.Key, Path: ref.Path})
	}

	if c.Ramp != nil {
		tc.Ramp = &engine.RampPlan{
			Initial:   c.Ramp.Initial,
			Max:       c.Ramp.Max,
			Interval:  c.Ramp.Interval,
			Increment: c.Ramp.Increment,
		}
	}
	if c.Assertion != nil {
		tc.Assertion = &engine.AssertionSpec{
			ExpectStatus:    c.Assertion.ExpectStatus,
			HasStatus:       c.Assertion.HasStatus,
			BodyContains:    c.Assertion.BodyContains,
			MaxResponseTime: c.Assertion.MaxResponseTime,
			HasMaxRT:        c.Assertion.HasMaxRT,
		}
	}

	return tc, nil
}
