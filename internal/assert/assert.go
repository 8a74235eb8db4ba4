// Package assert implements the Assertion Evaluator: optional post-response
// checks that reclassify an otherwise-successful response as failed.
package assert

import (
	"fmt"
	"strings"
	"time"

	"github.com/torosent/loadrush/internal/errkind"
)

// Spec is the declarative triple of checks a response may be held to.
// Each field is optional; a zero Spec never fails anything.
type Spec struct {
	// ExpectStatus, when HasStatus is true, is the status code a response
	// must match exactly.
	ExpectStatus int
	HasStatus    bool

	// BodyContains, when non-empty, must appear as a substring of the
	// leniently-decoded response body.
	BodyContains string

	// MaxResponseTime, when HasMaxRT is true, is the upper bound a
	// response time must not exceed.
	MaxResponseTime time.Duration
	HasMaxRT        bool
}

// Outcome describes a failed assertion.
type Outcome struct {
	Kind    errkind.Kind
	Message string
}

// Evaluate runs every configured check against a response. Checks are
// independent and do not short-circuit: if more than one fails, the last
// one evaluated (status, then body, then max response time) determines the
// returned Outcome, matching the original implementation this behavior was
// distilled from. Returns nil when the response passes (or no checks are
// configured).
func (s *Spec) Evaluate(statusCode int, body []byte, responseTime time.Duration) *Outcome {
	if s == nil {
		return nil
	}

	var outcome *Outcome

	if s.HasStatus && statusCode != s.ExpectStatus {
		outcome = &Outcome{
			Kind:    errkind.AssertStatus,
			Message: fmt.Sprintf("expected status %d, got %d", s.ExpectStatus, statusCode),
		}
	}

	if s.BodyContains != "" {
		decoded := strings.ToValidUTF8(string(body), "")
		if !strings.Contains(decoded, s.BodyContains) {
			outcome = &Outcome{
				Kind:    errkind.AssertBody,
				Message: fmt.Sprintf("body does not contain %q", s.BodyContains),
			}
		}
	}

	if s.HasMaxRT && responseTime > s.MaxResponseTime {
		outcome = &Outcome{
			Kind:    errkind.AssertMaxRT,
			Message: fmt.Sprintf("response time %s exceeds max %s", responseTime, s.MaxResponseTime),
		}
	}

	return outcome
}
