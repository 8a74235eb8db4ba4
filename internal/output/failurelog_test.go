package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/torosent/loadrush/internal/errkind"
	"github.com/torosent/loadrush/internal/result"
)

func TestStderrFailureLoggerSkipsSuccesses(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStderrFailureLogger(&buf)
	logger.LogFailure(result.RequestResult{URL: "http://example.com", StatusCode: 200})
	if buf.Len() != 0 {
		t.Fatalf("expected no output for a successful result, got %q", buf.String())
	}
}

func TestStderrFailureLoggerWritesFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStderrFailureLogger(&buf)
	logger.LogFailure(result.RequestResult{
		URL:          "http://example.com",
		ErrorKind:    errkind.Timeout,
		ErrorMessage: "context deadline exceeded",
	})
	out := buf.String()
	if !strings.Contains(out, "http://example.com") || !strings.Contains(out, "Timeout") {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestStderrFailureLoggerIsConcurrencySafe(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStderrFailureLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogFailure(result.RequestResult{ErrorKind: errkind.NetworkError, ErrorMessage: "boom"})
		}()
	}
	wg.Wait()

	if strings.Count(buf.String(), "boom") != 50 {
		t.Fatalf("expected 50 log lines, got: %q", buf.String())
	}
}
