// Package output renders a completed run's RunResult as human-readable
// text, JSON, and per-failure log lines, mirroring the teacher's
// internal/output report/progress split.
package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/torosent/loadrush/internal/stats"
)

// PrintSummary writes the human-readable report spec.md §6 describes.
func PrintSummary(w io.Writer, runID string, start, end time.Time, s stats.Summary) {
	fmt.Fprintln(w, "\n--- loadrush Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", runID)
	fmt.Fprintf(w, "Total Requests:    %d\n", s.Total)
	fmt.Fprintf(w, "Successful:        %d\n", s.Successful)
	fmt.Fprintf(w, "Failed:            %d\n", s.Failed)
	fmt.Fprintf(w, "Success Rate:      %.2f%%\n", s.SuccessRate)
	fmt.Fprintf(w, "Duration:          %s\n", s.TotalDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", s.RequestsPerSecond)
	fmt.Fprintf(w, "Throughput:        %.2f B/s\n", s.ThroughputBytesPerSecond)

	if s.Successful > 0 {
		fmt.Fprintln(w, "\nResponse Time:")
		fmt.Fprintf(w, "  Min:             %s\n", s.MinResponseTime)
		fmt.Fprintf(w, "  Max:             %s\n", s.MaxResponseTime)
		fmt.Fprintf(w, "  Mean:            %s\n", s.MeanResponseTime)
		fmt.Fprintf(w, "  StdDev:          %s\n", s.StdDevResponseTime)
		fmt.Fprintf(w, "  P25:             %s\n", s.P25)
		fmt.Fprintf(w, "  P50:             %s\n", s.P50)
		fmt.Fprintf(w, "  P75:             %s\n", s.P75)
		fmt.Fprintf(w, "  P90:             %s\n", s.P90)
		fmt.Fprintf(w, "  P95:             %s\n", s.P95)
		fmt.Fprintf(w, "  P99:             %s\n", s.P99)
		fmt.Fprintln(w, "\nResponse Size:")
		fmt.Fprintf(w, "  Min:             %d bytes\n", s.MinResponseSize)
		fmt.Fprintf(w, "  Max:             %d bytes\n", s.MaxResponseSize)
		fmt.Fprintf(w, "  Mean:            %.1f bytes\n", s.MeanResponseSize)
		fmt.Fprintf(w, "  Median:          %.1f bytes\n", s.MedianResponseSize)
	}

	if s.MeanDNS > 0 || s.MeanConnect > 0 {
		fmt.Fprintln(w, "\nConnection:")
		fmt.Fprintf(w, "  DNS mean/max:     %s / %s\n", s.MeanDNS, s.MaxDNS)
		fmt.Fprintf(w, "  Connect mean/max: %s / %s\n", s.MeanConnect, s.MaxConnect)
	}

	if len(s.StatusCodeDistribution) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		codes := make([]int, 0, len(s.StatusCodeDistribution))
		for code := range s.StatusCodeDistribution {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %d: %d\n", code, s.StatusCodeDistribution[code])
		}
	}

	if len(s.ErrorDistribution) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		kinds := make([]string, 0, len(s.ErrorDistribution))
		for kind := range s.ErrorDistribution {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", kind, s.ErrorDistribution[kind])
		}
	}
}
