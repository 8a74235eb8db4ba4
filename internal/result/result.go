// Package result defines the per-request outcome record produced by a
// Worker and consumed by the Result Sink and Statistics Engine.
package result

import (
	"time"

	"github.com/torosent/loadrush/internal/errkind"
)

// RequestResult captures the outcome of a single attempted request. Once
// submitted to the Sink it is treated as immutable.
type RequestResult struct {
	URL          string        `json:"url"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseSize int           `json:"response_size"`
	ErrorKind    errkind.Kind  `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
}

// Failed reports whether the result carries any error or assertion failure.
func (r RequestResult) Failed() bool {
	return r.ErrorKind != errkind.None
}
