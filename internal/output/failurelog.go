package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/torosent/loadrush/internal/result"
)

// FailureLogger receives each failed request as it is produced, letting
// the engine's OnProgress hook drive live diagnostics without coupling
// the engine itself to any particular output format.
type FailureLogger interface {
	LogFailure(r result.RequestResult)
}

// StderrFailureLogger writes one line per failed request to w, guarded
// by a mutex so that concurrent LogFailure calls never interleave their
// lines. (The Sink's collector itself invokes OnProgress from its single
// goroutine.)
type StderrFailureLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStderrFailureLogger creates a FailureLogger writing to w.
func NewStderrFailureLogger(w io.Writer) *StderrFailureLogger {
	return &StderrFailureLogger{w: w}
}

func (l *StderrFailureLogger) LogFailure(r result.RequestResult) {
	if !r.Failed() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[loadrush] request failed: url=%s kind=%s status=%d: %s\n",
		r.URL, r.ErrorKind, r.StatusCode, r.ErrorMessage)
}
