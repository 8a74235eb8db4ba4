// Package sink owns the single goroutine that collects RequestResult
// values from every Worker. Unlike the teacher's metrics.Collector, which
// guards shared accumulators with a mutex, Sink consumes a channel from a
// dedicated goroutine: every Worker that isn't the sink owner only ever
// sends, never shares memory, matching spec.md §9's note that the
// channel form is preferable to a mutex-guarded collector at this
// fan-in shape. The shape itself (buffered results channel, drain loop,
// Stats.Finalize-equivalent Close) is carried over from the example
// pack's harugeniee-g0 RunWithStatsAndChannel collector goroutine.
package sink

import (
	"time"

	"github.com/torosent/loadrush/internal/httpclient"
	"github.com/torosent/loadrush/internal/result"
)

// sizeSample carries one of the two auxiliary measurements a Worker
// reports alongside a RequestResult, the response body size; the other,
// connection phase timings, arrives as an httpclient.ConnTiming. Each
// kind travels over its own internal channel.
type sizeSample struct {
	size int
}

// Snapshot is the immutable set of raw samples gathered over one run,
// handed to stats.Compute once the run has fully drained.
type Snapshot struct {
	Results []result.RequestResult
	DNS     []time.Duration
	Connect []time.Duration
	Sizes   []int
}

// Sink fans in results, response sizes, and connection timings from every
// Worker goroutine onto one owning goroutine.
type Sink struct {
	results chan result.RequestResult
	conns   chan httpclient.ConnTiming
	sizes   chan sizeSample
	done    chan Snapshot

	// OnSubmit, if set, is invoked by the sink goroutine for every result
	// as it arrives, letting callers (e.g. a progress reporter) observe
	// the run live without taking ownership of the data. It must return
	// quickly: it runs on the sink's single consuming goroutine and a
	// slow callback paces back-pressure onto every Worker's Submit call.
	OnSubmit func(result.RequestResult)
}

// New creates a Sink and starts its collector goroutine. buffer sizes the
// internal channels; a reasonable default is a small multiple of worker
// concurrency so Submit rarely blocks on a healthy run.
// onSubmit, if non-nil, is wired in at construction time (rather than
// set on the field afterward) so the collector goroutine never observes
// a partially-initialized Sink: it is read only by the goroutine New
// starts, and never written again.
func New(buffer int, onSubmit func(result.RequestResult)) *Sink {
	if buffer <= 0 {
		buffer = 1
	}
	s := &Sink{
		results:  make(chan result.RequestResult, buffer),
		conns:    make(chan httpclient.ConnTiming, buffer),
		sizes:    make(chan sizeSample, buffer),
		done:     make(chan Snapshot, 1),
		OnSubmit: onSubmit,
	}
	go s.run()
	return s
}

func (s *Sink) run() {
	var snap Snapshot
	resultsClosed, connsClosed, sizesClosed := false, false, false

	for !resultsClosed || !connsClosed || !sizesClosed {
		select {
		case r, ok := <-s.results:
			if !ok {
				s.results = nil
				resultsClosed = true
				continue
			}
			snap.Results = append(snap.Results, r)
			if s.OnSubmit != nil {
				s.OnSubmit(r)
			}
		case c, ok := <-s.conns:
			if !ok {
				s.conns = nil
				connsClosed = true
				continue
			}
			if c.DNSSampled {
				snap.DNS = append(snap.DNS, c.DNS)
			}
			if c.ConnSampled {
				snap.Connect = append(snap.Connect, c.Connect)
			}
		case sz, ok := <-s.sizes:
			if !ok {
				s.sizes = nil
				sizesClosed = true
				continue
			}
			snap.Sizes = append(snap.Sizes, sz.size)
		}
	}

	s.done <- snap
}

// Submit records one completed request's outcome. Safe for concurrent
// use by every Worker.
func (s *Sink) Submit(r result.RequestResult) {
	s.results <- r
}

// SampleConn records the DNS/connect timings observed for one request, if
// any were sampled (httptrace callbacks never fire on a reused
// connection).
func (s *Sink) SampleConn(t httpclient.ConnTiming) {
	s.conns <- t
}

// SampleSize records the response body size observed for one request.
func (s *Sink) SampleSize(n int) {
	s.sizes <- sizeSample{size: n}
}

// Close signals that no further samples will arrive, then blocks until
// the collector goroutine has drained every channel and returns the
// accumulated Snapshot. Callers must stop calling Submit/SampleConn/
// SampleSize before calling Close.
func (s *Sink) Close() Snapshot {
	close(s.results)
	close(s.conns)
	close(s.sizes)
	return <-s.done
}
