package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/loadrush/internal/stats"
)

func TestPrintSummaryIncludesCoreFields(t *testing.T) {
	s := stats.Summary{
		Total:                   10,
		Successful:              9,
		Failed:                  1,
		SuccessRate:             90,
		TotalDuration:           2 * time.Second,
		RequestsPerSecond:       5,
		MeanResponseTime:        15 * time.Millisecond,
		P99:                     40 * time.Millisecond,
		StatusCodeDistribution:  map[int]int{200: 9, 500: 1},
		ErrorDistribution:       map[string]int{"NetworkError": 1},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, "run-123", time.Now(), time.Now(), s)
	out := buf.String()

	for _, want := range []string{"run-123", "Total Requests:    10", "Successful:        9", "200: 9", "NetworkError: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintSummaryOmitsLatencySectionWhenNoSuccesses(t *testing.T) {
	s := stats.Summary{Total: 3, Failed: 3}
	var buf bytes.Buffer
	PrintSummary(&buf, "run-empty", time.Now(), time.Now(), s)
	if strings.Contains(buf.String(), "Response Time:") {
		t.Fatal("expected no Response Time section when there were zero successes")
	}
}
