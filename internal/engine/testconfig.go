// Package engine owns the run lifecycle: validating a TestConfig,
// spawning and ramping the Worker population, enforcing the
// duration/count termination policy, and reducing the drained Sink into
// a Summary. The Supervisor algorithm is grounded on the teacher's
// Runner.Run (internal/runner/runner.go) context-layering idiom,
// generalized from a single scheduler+permit-channel shape to the
// Dispatcher/Worker split spec.md §4.5 describes, and on
// original_source/pyrush/models.py for the TestConfig field set.
package engine

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/torosent/loadrush/internal/assert"
	"github.com/torosent/loadrush/internal/httpclient"
	"github.com/torosent/loadrush/internal/ramp"
)

// RampPlan defines the open-loop ramp-up schedule; see package ramp.
type RampPlan = ramp.Plan

// AssertionSpec is the declarative response-check triple; see package
// assert.
type AssertionSpec = assert.Spec

// FormFileRef is one unresolved key=path form-file entry as supplied by
// the host (CLI/config layer), before Validate reads it into memory.
type FormFileRef struct {
	Key  string
	Path string
}

var allowedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodHead: true, http.MethodOptions: true,
}

// TestConfig is the immutable-after-Validate description of one run.
// Construct it, call Validate once, then treat it as read-only: it is
// shared across every Worker goroutine for the lifetime of the run.
type TestConfig struct {
	URLs        []string
	Method      string
	NumRequests int
	Duration    time.Duration
	Concurrency int
	RateLimit   float64
	Timeout     time.Duration

	Headers     map[string]string
	Body        []byte
	BodyFile    string
	ContentType string

	HasBasicAuth  bool
	BasicAuthUser string
	BasicAuthPass string

	Proxy              string
	HTTP2              bool
	Host               string
	DisableCompression bool
	DisableKeepAlive   bool
	DisableRedirects   bool

	FormFields []httpclient.FormField
	FormFiles  []FormFileRef

	Ramp      *RampPlan
	Assertion *AssertionSpec

	resolvedBody      []byte
	resolvedFormFiles []httpclient.FormFile
	validated         bool
}

// Validate checks every invariant spec.md §3 and §9 assigns to
// TestConfig, resolves body-file/form-file contents into memory exactly
// once (per spec.md §9's "read once at run start" recommendation for
// both body-from-file and form-file lifetime), and freezes the config
// for sharing across Worker goroutines. It is an error to call Run with
// an unvalidated TestConfig.
func (c *TestConfig) Validate() error {
	if len(c.URLs) == 0 {
		return errors.New("testconfig: at least one URL is required")
	}

	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return fmt.Errorf("testconfig: unsupported method %q", c.Method)
	}
	c.Method = method

	if c.Concurrency <= 0 {
		return errors.New("testconfig: concurrency must be positive")
	}

	if c.Duration <= 0 && c.NumRequests <= 0 {
		return errors.New("testconfig: one of num_requests or duration must be set")
	}
	if c.Duration <= 0 && c.NumRequests < c.Concurrency {
		return errors.New("testconfig: num_requests must be >= concurrency")
	}

	if len(c.Body) > 0 && c.BodyFile != "" {
		return errors.New("testconfig: body and body_file are mutually exclusive")
	}
	if c.HasBasicAuth && c.BasicAuthUser == "" {
		return errors.New("testconfig: basic auth requires a username")
	}
	if c.Timeout <= 0 {
		return errors.New("testconfig: timeout must be positive")
	}

	if c.BodyFile != "" {
		data, err := os.ReadFile(c.BodyFile)
		if err != nil {
			return fmt.Errorf("testconfig: read body_file: %w", err)
		}
		c.resolvedBody = data
	} else {
		c.resolvedBody = c.Body
	}

	resolvedFiles := make([]httpclient.FormFile, 0, len(c.FormFiles))
	for _, ref := range c.FormFiles {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return fmt.Errorf("testconfig: read form file %q: %w", ref.Key, err)
		}
		resolvedFiles = append(resolvedFiles, httpclient.FormFile{
			Key:      ref.Key,
			Filename: fileNameOf(ref.Path),
			Data:     data,
		})
	}
	c.resolvedFormFiles = resolvedFiles

	if c.Ramp != nil {
		if err := c.Ramp.Validate(c.Concurrency); err != nil {
			return fmt.Errorf("testconfig: %w", err)
		}
	}

	c.validated = true
	return nil
}

func fileNameOf(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
