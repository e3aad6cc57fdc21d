// Package browser drives a headless Chrome session and turns CDP events
// into supply-chain observations. It owns no analysis; script bodies are
// handed back to the caller.
package browser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/khanhnv2901/supplywatch/internal/drift"
	"github.com/khanhnv2901/supplywatch/internal/shared/constants"
)

// Config bounds one browsing session.
type Config struct {
	SiteURL string
	// Timeout caps the whole browsing phase; expiry is not an error,
	// analysis proceeds with whatever was observed.
	Timeout time.Duration
	// Settle is how long to keep listening after the initial navigation
	// so late XHRs, sockets and workers are observed.
	Settle time.Duration
}

// Script is one script response body retrieved during the session.
type Script struct {
	URL  string
	Host string
	Body string
}

type session struct {
	agg    *drift.Aggregator
	logger *zap.SugaredLogger

	mu       sync.Mutex
	pending  map[network.RequestID]string // script responses awaiting loadingFinished
	scripts  []Script
	draining bool // once set, no new body fetches may start
	wg       sync.WaitGroup
}

// beginDrain stops new fetch goroutines from starting. The CDP listener
// stays attached until the context is cancelled, so without this a late
// loadingFinished event could Add on the WaitGroup while Browse is
// already in Wait.
func (s *session) beginDrain() {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()
}

// Browse navigates to cfg.SiteURL, records observed hosts into agg and
// returns the script bodies it managed to retrieve. Body retrieval is
// asynchronous per response; the aggregator's adds are idempotent so
// completion order does not matter.
func Browse(ctx context.Context, cfg Config, agg *drift.Aggregator, logger *zap.SugaredLogger) ([]Script, error) {
	browseCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(browseCtx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithErrorf(logger.Debugf))
	defer cancelTask()

	s := &session{
		agg:     agg,
		logger:  logger,
		pending: make(map[network.RequestID]string),
	}
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		s.handleEvent(taskCtx, ev)
	})

	settle := cfg.Settle
	if settle <= 0 {
		settle = 3 * time.Second
	}

	err := chromedp.Run(taskCtx,
		network.Enable(),
		runtime.Enable(),
		target.SetDiscoverTargets(true),
		chromedp.Navigate(cfg.SiteURL),
		chromedp.Sleep(settle),
	)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err != nil {
		logger.Infow("browse timeout reached, proceeding with partial observations", "site", cfg.SiteURL)
	}

	s.beginDrain()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scripts, nil
}

func (s *session) handleEvent(ctx context.Context, ev interface{}) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		s.handleResponse(e)
	case *network.EventLoadingFinished:
		s.handleLoadingFinished(ctx, e.RequestID)
	case *network.EventWebSocketCreated:
		s.recordURL(drift.CategoryWebSocketHosts, e.URL)
	case *target.EventTargetCreated:
		if e.TargetInfo == nil {
			return
		}
		switch e.TargetInfo.Type {
		case "worker", "shared_worker", "service_worker":
			s.recordURL(drift.CategoryWebWorkerHosts, e.TargetInfo.URL)
		}
	case *runtime.EventConsoleAPICalled:
		if e.Type == runtime.APITypeError {
			s.logger.Warnw("page console error",
				"text", consoleText(e.Args), "url", consoleOrigin(e.StackTrace))
		}
	}
}

func (s *session) handleResponse(e *network.EventResponseReceived) {
	if e.Response == nil {
		return
	}
	switch e.Type {
	case network.ResourceTypeScript:
		s.recordURL(drift.CategoryScriptHosts, e.Response.URL)
		s.mu.Lock()
		s.pending[e.RequestID] = e.Response.URL
		s.mu.Unlock()
	case network.ResourceTypeXHR, network.ResourceTypeFetch:
		s.recordURL(drift.CategoryXHRHosts, e.Response.URL)
	}
}

// handleLoadingFinished retrieves a script body once the browser has it
// in full. Runs detached; failures are logged and skip only this script.
func (s *session) handleLoadingFinished(ctx context.Context, id network.RequestID) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	url, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
		// Add under the lock so it cannot race the drain-then-Wait
		// sequence in Browse.
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	go func() {
		defer s.wg.Done()

		c := chromedp.FromContext(ctx)
		body, err := network.GetResponseBody(id).Do(cdp.WithExecutor(ctx, c.Target))
		if err != nil {
			s.logger.Warnw("fetch script body failed", "url", url, "error", err)
			return
		}

		host, err := drift.HostFromURL(url)
		if err != nil {
			s.logger.Warnw("script url unparsable", "url", url, "error", err)
			return
		}

		if len(body) > constants.MaxScriptBytes {
			s.logger.Infow("truncating oversized script body", "url", url, "bytes", len(body))
			body = body[:constants.MaxScriptBytes]
		}

		s.mu.Lock()
		s.scripts = append(s.scripts, Script{URL: url, Host: host, Body: string(body)})
		s.mu.Unlock()
	}()
}

// consoleText flattens console arguments for logging. Objects carry a
// Description; primitives only have the raw JSON value.
func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		switch {
		case a.Description != "":
			parts = append(parts, a.Description)
		case len(a.Value) > 0:
			parts = append(parts, string(a.Value))
		}
	}
	return strings.Join(parts, " ")
}

// consoleOrigin returns the URL of the frame that emitted the message.
func consoleOrigin(trace *runtime.StackTrace) string {
	if trace == nil || len(trace.CallFrames) == 0 || trace.CallFrames[0] == nil {
		return ""
	}
	return trace.CallFrames[0].URL
}

func (s *session) recordURL(cat drift.Category, rawURL string) {
	if err := s.agg.RecordURL(cat, rawURL); err != nil {
		s.logger.Debugw("skip unparsable resource url", "category", string(cat), "url", rawURL, "error", err)
	}
}
