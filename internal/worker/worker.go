// Package worker implements the per-goroutine request loop described in
// spec.md §4.2, grounded on pyrush's worker()/make_request() coroutines
// (original_source/pyrush/requestor.py) and on the teacher's
// Requester.Do shape (cmd/crankfire/http_requester.go) for how a single
// attempt is executed, classified, and recorded.
package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/torosent/loadrush/internal/assert"
	"github.com/torosent/loadrush/internal/clock"
	"github.com/torosent/loadrush/internal/dispatcher"
	"github.com/torosent/loadrush/internal/errkind"
	"github.com/torosent/loadrush/internal/httpclient"
	"github.com/torosent/loadrush/internal/result"
	"github.com/torosent/loadrush/internal/sink"
)

// maxBodyReadSize caps how much of a response body is buffered for
// assertion evaluation and size accounting, matching the teacher's
// constant of the same purpose in cmd/crankfire/http_requester.go.
const maxBodyReadSize = 16 * 1024 * 1024

// Config bundles everything a Worker needs to run its loop. The Engine
// builds one per Worker, each with its own Limiter, while the client,
// builder, Dispatcher and Sink it points at are shared by every Worker;
// nothing in it is mutated after construction.
type Config struct {
	URLs       []string
	Method     string
	Client     *http.Client
	Builder    *httpclient.RequestBuilder
	Limiter    *clock.Limiter
	Assertion  *assert.Spec
	Dispatcher *dispatcher.Dispatcher
	Sink       *sink.Sink
	Timeout    time.Duration
}

// Worker pulls IDs from a shared Dispatcher until it observes STOP or its
// run context is cancelled, issuing one HTTP request per pulled ID.
type Worker struct {
	cfg Config
}

// New constructs a Worker bound to cfg. cfg must not be mutated for the
// lifetime of the run.
func New(cfg Config) *Worker {
	return &Worker{cfg: cfg}
}

// Run executes the PullID -> Pace -> BuildReq -> Execute -> Evaluate ->
// Submit -> Ack loop until the Dispatcher signals STOP or runCtx is
// cancelled. runCtx is the run-level cancellation signal (duration timer
// or external abort); it is distinct from the per-request deadline
// derived from cfg.Timeout, so a Worker can tell a run-level
// cancellation apart from an ordinary per-request timeout.
func (w *Worker) Run(runCtx context.Context) {
	urlCount := len(w.cfg.URLs)

	for {
		id, ok := w.cfg.Dispatcher.Next(runCtx)
		if !ok {
			return
		}

		if err := w.cfg.Limiter.Wait(runCtx); err != nil {
			// Cancelled while pacing: an ID was already pulled, so it
			// must still be acknowledged and recorded, per spec.md §4.2.
			w.cfg.Sink.Submit(result.RequestResult{
				ErrorKind:    errkind.Cancelled,
				ErrorMessage: err.Error(),
				Timestamp:    time.Now(),
			})
			w.cfg.Dispatcher.Ack(id)
			return
		}

		url := w.cfg.URLs[int(id)%urlCount]
		res := w.safeExecute(runCtx, url)
		w.cfg.Sink.Submit(res)
		if !res.Failed() {
			w.cfg.Sink.SampleSize(res.ResponseSize)
		}
		w.cfg.Dispatcher.Ack(id)
	}
}

// safeExecute wraps execute with panic recovery so that a single
// request-level panic (a bug in a RoundTripper, an assertion, or
// anywhere downstream) never leaves its pulled ID unacknowledged: an
// unrecovered panic here would otherwise hang the Supervisor's
// Dispatcher.Wait forever, since Ack is only reached after this
// returns.
func (w *Worker) safeExecute(runCtx context.Context, url string) (res result.RequestResult) {
	defer func() {
		if r := recover(); r != nil {
			res = result.RequestResult{
				URL: url, Method: w.cfg.Method,
				Timestamp: time.Now(), ErrorKind: errkind.NetworkError,
				ErrorMessage: fmt.Sprintf("recovered panic: %v", r),
			}
		}
	}()
	return w.execute(runCtx, url)
}

// execute runs PullID's remaining states (BuildReq through Evaluate) for
// one pulled ID and returns the resulting RequestResult. It never
// panics on a request-level failure; every error path returns a
// populated RequestResult instead.
func (w *Worker) execute(runCtx context.Context, url string) result.RequestResult {
	timestamp := time.Now()

	reqCtx := runCtx
	var cancel context.CancelFunc
	if w.cfg.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(runCtx, w.cfg.Timeout)
		defer cancel()
	}

	traceCtx, timing := httpclient.WithTrace(reqCtx)

	req, err := w.cfg.Builder.Build(traceCtx, url)
	if err != nil {
		return result.RequestResult{
			URL: url, Method: w.cfg.Method,
			Timestamp: timestamp, ErrorKind: errkind.FileError, ErrorMessage: err.Error(),
		}
	}

	start := time.Now()
	resp, err := w.cfg.Client.Do(req)
	if err != nil {
		kind := w.classifyRequestError(runCtx, reqCtx, err)
		return result.RequestResult{
			URL: url, Method: w.cfg.Method,
			ResponseTime: time.Since(start), Timestamp: timestamp,
			ErrorKind: kind, ErrorMessage: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	responseTime := time.Since(start)
	if readErr != nil {
		kind := w.classifyRequestError(runCtx, reqCtx, readErr)
		return result.RequestResult{
			URL: url, Method: w.cfg.Method, StatusCode: resp.StatusCode,
			ResponseTime: responseTime, Timestamp: timestamp,
			ErrorKind: kind, ErrorMessage: readErr.Error(),
		}
	}

	w.cfg.Sink.SampleConn(*timing)

	res := result.RequestResult{
		URL: url, Method: w.cfg.Method, StatusCode: resp.StatusCode,
		ResponseTime: responseTime, Timestamp: timestamp, ResponseSize: len(body),
	}

	if outcome := w.cfg.Assertion.Evaluate(resp.StatusCode, body, responseTime); outcome != nil {
		res.ErrorKind = outcome.Kind
		res.ErrorMessage = outcome.Message
	}

	return res
}

// classifyRequestError distinguishes a run-level cancellation from a
// per-request timeout before falling back to httpclient.Classify for
// ordinary network-layer failures, per spec.md §4.2's "Cancelled only if
// an ID had already been pulled" rule and §9's Timeout/Cancelled split.
func (w *Worker) classifyRequestError(runCtx, reqCtx context.Context, err error) errkind.Kind {
	if runCtx.Err() != nil {
		return errkind.Cancelled
	}
	if reqCtx.Err() == context.DeadlineExceeded {
		return errkind.Timeout
	}
	kind, _ := httpclient.Classify(err)
	return kind
}
