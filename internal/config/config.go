// Package config loads a run's configuration from CLI flags and an
// optional config file, the way the teacher's internal/config package
// does (cobra/pflag for flags, viper for file settings, flag values
// override file settings). The field set is trimmed to what
// engine.TestConfig needs: URL rotation, method, load shape, body/form
// encoding, auth/proxy/host knobs, and assertions — the teacher's
// websocket/SSE/gRPC/feeder/extractor/HAR/threshold sections have no
// home here since those protocols and programmability features are
// explicit Non-goals.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// RampConfig mirrors ramp.Plan in plain field form; ToTestConfig
// converts it into an engine.RampPlan.
type RampConfig struct {
	Initial   int
	Max       int
	Interval  time.Duration
	Increment int
}

// AssertionConfig mirrors assert.Spec in plain field form.
type AssertionConfig struct {
	ExpectStatus    int
	HasStatus       bool
	BodyContains    string
	MaxResponseTime time.Duration
	HasMaxRT        bool
}

// FormFileConfig is one key=path form-file entry before its contents
// are read.
type FormFileConfig struct {
	Key  string
	Path string
}

// Config is the fully-resolved, host-facing configuration for one run,
// produced by Loader.Load and converted to an engine.TestConfig by
// ToTestConfig.
type Config struct {
	URLs        []string
	Method      string
	NumRequests int
	Duration    time.Duration
	Concurrency int
	RateLimit   float64
	Timeout     time.Duration

	Headers     map[string]string
	Body        string
	BodyFile    string
	ContentType string

	BasicAuthUser string
	BasicAuthPass string

	Proxy              string
	HTTP2              bool
	Host               string
	DisableCompression bool
	DisableKeepAlive   bool
	DisableRedirects   bool

	FormFields []string // key=value
	FormFiles  []FormFileConfig

	Ramp      *RampConfig
	Assertion *AssertionConfig

	ConfigFile string
	JSONOutput bool
	LogErrors  bool
	OutputFile string
}

var allowedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodHead: true, http.MethodOptions: true,
}

// parseHeader splits a "Key: value" or "Key=value" CLI argument into a
// trimmed key and trimmed value. The key's case is kept as given.
func parseHeader(raw string) (string, string, bool) {
	sep := "="
	idx := strings.Index(raw, sep)
	if idx < 0 {
		sep = ":"
		idx = strings.Index(raw, sep)
	}
	if idx < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(raw[:idx])
	value := strings.TrimSpace(raw[idx+len(sep):])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

func isValidMethod(method string) bool {
	return allowedMethods[strings.ToUpper(strings.TrimSpace(method))]
}

// Validate checks the issues a Config can have on its own, before it is
// translated into an engine.TestConfig — missing target URLs and an
// unsupported method, the two things a user is likely to get wrong on
// the command line. It also prints the same high-rate/high-concurrency
// authorization warnings as the teacher's Config.Validate, since those
// apply equally to an HTTP-only load generator.
func (c Config) Validate() error {
	var issues []string

	if len(c.URLs) == 0 {
		issues = append(issues, "at least one --url is required (use --help for usage information)")
	}
	if strings.TrimSpace(c.Method) != "" && !isValidMethod(c.Method) {
		issues = append(issues, fmt.Sprintf("unsupported method %q", c.Method))
	}

	if c.RateLimit > 1000 {
		fmt.Fprintf(os.Stderr, "WARNING: High rate limit configured (%.0f RPS per worker). Ensure you have authorization to test the target system.\n", c.RateLimit)
	}
	if c.Concurrency > 500 {
		fmt.Fprintf(os.Stderr, "WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.\n", c.Concurrency)
	}

	if len(issues) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	return nil
}
