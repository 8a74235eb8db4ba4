package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/loadrush/internal/clock"
	"github.com/torosent/loadrush/internal/dispatcher"
	"github.com/torosent/loadrush/internal/httpclient"
	"github.com/torosent/loadrush/internal/ramp"
	"github.com/torosent/loadrush/internal/result"
	"github.com/torosent/loadrush/internal/sink"
	"github.com/torosent/loadrush/internal/stats"
	"github.com/torosent/loadrush/internal/worker"
)

// RunResult is the host-facing view of a completed run: spec.md §6's
// "RunResult exposing the ordered RequestResult sequence, start/end
// time, and computed statistics".
type RunResult struct {
	RunID     string
	Results   []result.RequestResult
	StartTime time.Time
	EndTime   time.Time
	Stats     stats.Summary
}

// Engine owns one run's shared HTTP client and request builder; Run
// creates the Dispatcher and Sink for the run. Build it once from a
// validated TestConfig and call Run exactly once.
type Engine struct {
	cfg     *TestConfig
	client  *http.Client
	builder *httpclient.RequestBuilder

	// OnProgress, if set, is invoked once per submitted result — wired
	// straight through to the Sink's OnSubmit hook, per spec.md §9's
	// "progress reporting as a collaborator" note.
	OnProgress func(result.RequestResult)
}

// New builds the shared HTTP client and request builder for cfg. cfg
// must have already passed Validate.
func New(cfg *TestConfig) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("engine: cfg is nil")
	}
	if !cfg.validated {
		return nil, fmt.Errorf("engine: cfg has not been validated")
	}

	client, err := httpclient.NewClient(httpclient.ClientConfig{
		Concurrency:        cfg.Concurrency,
		Timeout:            cfg.Timeout,
		HTTP2:              cfg.HTTP2,
		DisableKeepAlive:   cfg.DisableKeepAlive,
		DisableRedirects:   cfg.DisableRedirects,
		DisableCompression: cfg.DisableCompression,
		Proxy:              cfg.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: build http client: %w", err)
	}

	headers := http.Header{}
	for k, v := range cfg.Headers {
		headers.Add(k, v)
	}

	builder, err := httpclient.NewRequestBuilder(httpclient.BuilderConfig{
		Method:        cfg.Method,
		Headers:       headers,
		ContentType:   cfg.ContentType,
		Body:          cfg.resolvedBody,
		HasBasicAuth:  cfg.HasBasicAuth,
		BasicAuthUser: cfg.BasicAuthUser,
		BasicAuthPass: cfg.BasicAuthPass,
		Host:          cfg.Host,
		FormFields:    cfg.FormFields,
		FormFiles:     cfg.resolvedFormFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: build request builder: %w", err)
	}

	return &Engine{cfg: cfg, client: client, builder: builder}, nil
}

// Run executes the full Supervisor algorithm from spec.md §4.5:
// initialize the Dispatcher and Sink, spawn the initial worker
// population (and ramp it up if configured), enforce the duration cap
// or wait for natural completion, drain, and reduce the Sink into a
// Summary.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	cfg := e.cfg
	startTime := time.Now()

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	limit := dispatcher.Unbounded
	if cfg.Duration <= 0 {
		limit = cfg.NumRequests
	}
	d := dispatcher.New(limit)

	s := sink.New(cfg.Concurrency*4, e.OnProgress)

	var fatalMu sync.Mutex
	var fatalErr error
	recordFatal := func(err error) {
		fatalMu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		fatalMu.Unlock()
	}

	var wg sync.WaitGroup
	spawn := func(n int) {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go e.runWorker(runCtx, d, s, &wg, recordFatal)
		}
	}

	spawn(initialWorkerCount(cfg))

	var rampDone chan struct{}
	if cfg.Ramp != nil {
		rampDone = make(chan struct{})
		controller := ramp.New(*cfg.Ramp, spawn)
		go func() {
			controller.Run(runCtx)
			close(rampDone)
		}()
	}

	if cfg.Duration > 0 {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		go func() {
			select {
			case <-timer.C:
				runCancel()
			case <-runCtx.Done():
			}
		}()
	}

	wg.Wait()
	if rampDone != nil {
		<-rampDone
	}
	d.Wait()

	endTime := time.Now()
	snapshot := s.Close()

	if fatalErr != nil {
		return nil, fmt.Errorf("engine: worker failure: %w", fatalErr)
	}

	runID := ulid.Make().String()
	summary := stats.Compute(snapshot, startTime, endTime)

	return &RunResult{
		RunID:     runID,
		Results:   snapshot.Results,
		StartTime: startTime,
		EndTime:   endTime,
		Stats:     summary,
	}, nil
}

// runWorker wraps a single Worker goroutine with panic recovery, per
// spec.md §9's "worker exit on internal exception is silent; report
// per-worker fatal errors to the Supervisor" note.
func (e *Engine) runWorker(runCtx context.Context, d *dispatcher.Dispatcher, s *sink.Sink, wg *sync.WaitGroup, recordFatal func(error)) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			recordFatal(fmt.Errorf("worker panic: %v", r))
		}
	}()

	w := worker.New(worker.Config{
		URLs:       e.cfg.URLs,
		Method:     e.cfg.Method,
		Client:     e.client,
		Builder:    e.builder,
		Limiter:    clock.NewLimiter(e.cfg.RateLimit),
		Assertion:  e.cfg.Assertion,
		Dispatcher: d,
		Sink:       s,
		Timeout:    e.cfg.Timeout,
	})
	w.Run(runCtx)
}

func initialWorkerCount(cfg *TestConfig) int {
	if cfg.Ramp != nil {
		return cfg.Ramp.Initial
	}
	return cfg.Concurrency
}
