// Package stats reduces a drained sink.Snapshot into the aggregate
// metrics spec.md §4.6 describes. It is grounded on pyrush's
// generate_statistics/statistics.quantiles reduction, translated into a
// Go sort-and-interpolate routine rather than adopted via the teacher's
// HdrHistogram dependency: HdrHistogram buckets response times
// logarithmically and cannot reproduce the exact linear-interpolation
// "inclusive" percentile spec.md requires over the raw sample.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/torosent/loadrush/internal/errkind"
	"github.com/torosent/loadrush/internal/sink"
)

// Summary is the full statistics map spec.md §4.6 and §6 describe.
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	SuccessRate float64

	TotalDuration            time.Duration
	RequestsPerSecond        float64
	ThroughputBytesPerSecond float64

	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	MeanResponseTime   time.Duration
	MedianResponseTime time.Duration
	StdDevResponseTime time.Duration
	P25                time.Duration
	P50                time.Duration
	P75                time.Duration
	P90                time.Duration
	P95                time.Duration
	P99                time.Duration

	StatusCodeDistribution map[int]int
	ErrorDistribution       map[string]int

	MinResponseSize    int
	MaxResponseSize    int
	MeanResponseSize   float64
	MedianResponseSize float64

	MeanDNS     time.Duration
	MaxDNS      time.Duration
	MeanConnect time.Duration
	MaxConnect  time.Duration
}

// Compute reduces a drained Snapshot plus the run's wall-clock window
// into a Summary. start and end must be the Supervisor's recorded
// start_time/end_time, not derived from the results themselves: the
// Supervisor takes end_time only after every Worker has exited and every
// pulled ID has been acknowledged.
func Compute(snap sink.Snapshot, start, end time.Time) Summary {
	s := Summary{
		Total:                  len(snap.Results),
		StatusCodeDistribution: map[int]int{},
		ErrorDistribution:      map[string]int{},
	}

	totalDuration := end.Sub(start)
	s.TotalDuration = totalDuration
	if totalDuration > 0 {
		s.RequestsPerSecond = float64(s.Total) / totalDuration.Seconds()
	}

	var successTimes []time.Duration
	var sizes []int
	var totalBytes int64

	for _, r := range snap.Results {
		// A response was actually received whenever the error kind (if
		// any) is an assertion failure rather than a transport-level
		// failure; those still carry a meaningful status_code. Per
		// spec.md §9's open question on this point, such responses are
		// counted into status_code_distribution (the server did
		// reply) even though they count as failed overall.
		receivedResponse := !r.Failed() || isAssertionFailure(r.ErrorKind)

		if r.Failed() {
			s.Failed++
			key := string(r.ErrorKind)
			if key == "" {
				key = string(errkind.NetworkError)
			}
			s.ErrorDistribution[key]++
		} else {
			s.Successful++
			successTimes = append(successTimes, r.ResponseTime)
			sizes = append(sizes, r.ResponseSize)
			totalBytes += int64(r.ResponseSize)
		}

		if receivedResponse {
			s.StatusCodeDistribution[r.StatusCode]++
		}
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.Total) * 100
	}
	if totalDuration > 0 {
		s.ThroughputBytesPerSecond = float64(totalBytes) / totalDuration.Seconds()
	}

	if len(successTimes) > 0 {
		sorted := append([]time.Duration(nil), successTimes...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		s.MinResponseTime = sorted[0]
		s.MaxResponseTime = sorted[len(sorted)-1]
		s.MeanResponseTime = meanDuration(sorted)
		s.MedianResponseTime = percentile(sorted, 50)
		s.StdDevResponseTime = stdDevDuration(sorted, s.MeanResponseTime)
		s.P25 = percentile(sorted, 25)
		s.P50 = percentile(sorted, 50)
		s.P75 = percentile(sorted, 75)
		s.P90 = percentile(sorted, 90)
		s.P95 = percentile(sorted, 95)
		s.P99 = percentile(sorted, 99)
	}

	if len(sizes) > 0 {
		sortedSizes := append([]int(nil), sizes...)
		sort.Ints(sortedSizes)
		s.MinResponseSize = sortedSizes[0]
		s.MaxResponseSize = sortedSizes[len(sortedSizes)-1]
		s.MeanResponseSize = meanInt(sortedSizes)
		s.MedianResponseSize = percentileInt(sortedSizes, 50)
	}

	if len(snap.DNS) > 0 {
		s.MeanDNS = meanDuration(snap.DNS)
		s.MaxDNS = maxDuration(snap.DNS)
	}
	if len(snap.Connect) > 0 {
		s.MeanConnect = meanDuration(snap.Connect)
		s.MaxConnect = maxDuration(snap.Connect)
	}

	return s
}

func isAssertionFailure(kind errkind.Kind) bool {
	switch kind {
	case errkind.AssertStatus, errkind.AssertBody, errkind.AssertMaxRT, errkind.DecodeError:
		return true
	default:
		return false
	}
}

// percentile computes the linear-interpolation "inclusive" percentile
// (matching Python's statistics.quantiles / numpy's "linear" method)
// over an already-sorted sample. rank is in [0, 100].
func percentile(sorted []time.Duration, rank float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	pos := (rank / 100) * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	lower := float64(sorted[lo])
	upper := float64(sorted[hi])
	return time.Duration(lower + frac*(upper-lower))
}

func percentileInt(sorted []int, rank float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return float64(sorted[0])
	}
	pos := (rank / 100) * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if hi >= n {
		return float64(sorted[n-1])
	}
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}

func meanDuration(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range samples {
		sum += d
	}
	return sum / time.Duration(len(samples))
}

func maxDuration(samples []time.Duration) time.Duration {
	max := samples[0]
	for _, d := range samples[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

func meanInt(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int
	for _, v := range samples {
		sum += v
	}
	return float64(sum) / float64(len(samples))
}

// stdDevDuration computes the population standard deviation (not
// sample), matching spec.md §4.6; returns 0 for a single sample rather
// than propagating a divide-by-one edge case into a nonzero artifact.
func stdDevDuration(samples []time.Duration, mean time.Duration) time.Duration {
	if len(samples) <= 1 {
		return 0
	}
	var sumSquares float64
	meanF := float64(mean)
	for _, d := range samples {
		diff := float64(d) - meanF
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(len(samples))
	return time.Duration(math.Sqrt(variance))
}

// ToMap renders the Summary as the plain statistics map spec.md §6
// refers to, keyed the way a report/export layer would serialize it.
func (s Summary) ToMap() map[string]any {
	m := map[string]any{
		"total":                       s.Total,
		"successful":                  s.Successful,
		"failed":                      s.Failed,
		"success_rate":                s.SuccessRate,
		"total_duration_seconds":      s.TotalDuration.Seconds(),
		"requests_per_second":         s.RequestsPerSecond,
		"throughput_bytes_per_second": s.ThroughputBytesPerSecond,
		"status_code_distribution":    s.StatusCodeDistribution,
		"error_distribution":          s.ErrorDistribution,
	}
	if s.Successful > 0 {
		m["min_response_time_ms"] = s.MinResponseTime.Seconds() * 1000
		m["max_response_time_ms"] = s.MaxResponseTime.Seconds() * 1000
		m["mean_response_time_ms"] = s.MeanResponseTime.Seconds() * 1000
		m["median_response_time_ms"] = s.MedianResponseTime.Seconds() * 1000
		m["stddev_response_time_ms"] = s.StdDevResponseTime.Seconds() * 1000
		m["p25_ms"] = s.P25.Seconds() * 1000
		m["p50_ms"] = s.P50.Seconds() * 1000
		m["p75_ms"] = s.P75.Seconds() * 1000
		m["p90_ms"] = s.P90.Seconds() * 1000
		m["p95_ms"] = s.P95.Seconds() * 1000
		m["p99_ms"] = s.P99.Seconds() * 1000
		m["min_response_size"] = s.MinResponseSize
		m["max_response_size"] = s.MaxResponseSize
		m["mean_response_size"] = s.MeanResponseSize
		m["median_response_size"] = s.MedianResponseSize
	}
	if len(s.ErrorDistribution) == 0 {
		delete(m, "error_distribution")
		m["error_distribution"] = map[string]int{}
	}
	if s.MeanDNS > 0 || s.MaxDNS > 0 {
		m["dns_mean_ms"] = s.MeanDNS.Seconds() * 1000
		m["dns_max_ms"] = s.MaxDNS.Seconds() * 1000
	}
	if s.MeanConnect > 0 || s.MaxConnect > 0 {
		m["connect_mean_ms"] = s.MeanConnect.Seconds() * 1000
		m["connect_max_ms"] = s.MaxConnect.Seconds() * 1000
	}
	return m
}
