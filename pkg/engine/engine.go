// Package engine fans out parameter×payload probes against a target and
// accumulates confirmed reflections.
package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Nishanath123/rxss-scanner/pkg/config"
	"github.com/Nishanath123/rxss-scanner/pkg/detector"
	"github.com/Nishanath123/rxss-scanner/pkg/logger"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
	"github.com/Nishanath123/rxss-scanner/pkg/payloads"
)

// maxBodySize caps how much of a response is read per probe.
const maxBodySize = 10 << 20

// Transport sends one HTTP request. network.Client satisfies it; tests
// substitute their own. Implementations shared across workers must be
// safe for concurrent use.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Stats summarizes one scan run.
type Stats struct {
	Probes   int `json:"probes"`   // probes dispatched
	Skipped  int `json:"skipped"`  // probes lost to transport errors or timeouts
	Findings int `json:"findings"` // confirmed reflections
}

// probe is one (parameter, payload) injection attempt.
type probe struct {
	param   string
	payload payloads.Payload
}

// Engine enumerates probes, runs them under a bounded worker pool and
// feeds every response to the detector. The findings list is the only
// shared mutable state; it is guarded by a mutex.
type Engine struct {
	cfg       *models.ScanConfig
	transport Transport
	catalog   *payloads.Catalog
	detector  *detector.Detector
	log       *logger.Logger

	workers    int
	timeout    time.Duration
	payloadSet []payloads.Payload

	mu       sync.Mutex
	findings []models.Finding
	stats    Stats
}

// New creates an Engine for one scan configuration. The configuration is
// validated here so Scan itself cannot fail on a malformed target.
func New(cfg *models.ScanConfig, transport Transport, catalog *payloads.Catalog, det *detector.Detector, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New(0)
	}
	return &Engine{
		cfg:        cfg,
		transport:  transport,
		catalog:    catalog,
		detector:   det,
		log:        log,
		workers:    config.DefaultWorkers,
		timeout:    config.DefaultTimeout,
		payloadSet: catalog.All(),
	}, nil
}

// SetWorkers overrides the worker pool size.
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// SetTimeout overrides the per-probe timeout.
func (e *Engine) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// SetPayloads scopes the scan to a payload subset, typically one catalog
// bucket from ForContext.
func (e *Engine) SetPayloads(ps []payloads.Payload) {
	e.payloadSet = ps
}

// Stats returns the counters of the most recent scan.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Scan runs the full parameter×payload cross product and returns the
// findings once every probe has drained. Zero parameters or an empty
// payload set completes with an empty list. Probe failures are counted
// and skipped, never fatal; the returned error is non-nil only when ctx
// is canceled before the scan drains.
func (e *Engine) Scan(ctx context.Context) ([]models.Finding, error) {
	e.mu.Lock()
	e.findings = nil
	e.stats = Stats{}
	e.mu.Unlock()

	jobs := make(chan probe)
	var wg sync.WaitGroup

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				e.runProbe(ctx, p)
			}
		}()
	}

	params := uniqueParams(e.cfg.Params)

	total := len(params) * len(e.payloadSet)
	e.log.V("dispatching %d probes (%d params x %d payloads)", total, len(params), len(e.payloadSet))

produce:
	for _, param := range params {
		for _, pl := range e.payloadSet {
			select {
			case jobs <- probe{param: param, payload: pl}:
			case <-ctx.Done():
				break produce
			}
		}
	}
	close(jobs)
	wg.Wait()

	e.mu.Lock()
	out := make([]models.Finding, len(e.findings))
	copy(out, e.findings)
	e.mu.Unlock()

	return out, ctx.Err()
}

// uniqueParams drops repeated parameter names, keeping first-seen
// order. A duplicate probe could only produce a duplicate finding.
func uniqueParams(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// runProbe sends one request and classifies the response. Transport
// errors and timeouts skip the probe; the rest of the scan continues.
func (e *Engine) runProbe(ctx context.Context, p probe) {
	e.mu.Lock()
	e.stats.Probes++
	e.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, reqURL, err := e.buildRequest(probeCtx, p)
	if err != nil {
		e.skip(p, err)
		return
	}

	resp, err := e.transport.Do(req)
	if err != nil {
		e.skip(p, err)
		return
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		e.skip(p, err)
		return
	}

	result := e.detector.Detect(string(bodyBytes), p.payload)
	if !result.Reflected {
		return
	}

	e.log.Detail("reflected: param=%s context=%s offset=%d", p.param, result.Context, result.Position)

	e.mu.Lock()
	e.findings = append(e.findings, models.Finding{
		Param:    p.param,
		Payload:  p.payload.Value,
		Context:  result.Context,
		Snippet:  result.Snippet,
		Position: result.Position,
		URL:      reqURL,
	})
	e.stats.Findings++
	e.mu.Unlock()
}

func (e *Engine) skip(p probe, err error) {
	e.mu.Lock()
	e.stats.Skipped++
	e.mu.Unlock()
	e.log.VV("probe skipped: param=%s err=%v", p.param, err)
}

// buildRequest substitutes the payload into exactly one parameter. For
// GET the payload is query-encoded onto the target URL; for POST it is
// form-encoded into the body. Other parameters already present on the
// target URL are preserved untouched.
func (e *Engine) buildRequest(ctx context.Context, p probe) (*http.Request, string, error) {
	var req *http.Request
	var err error
	var reqURL string

	switch e.cfg.Method {
	case models.MethodPOST:
		form := url.Values{}
		form.Set(p.param, p.payload.Value)
		reqURL = e.cfg.URL
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		u, perr := url.Parse(e.cfg.URL)
		if perr != nil {
			return nil, "", perr
		}
		q := u.Query()
		q.Set(p.param, p.payload.Value)
		u.RawQuery = q.Encode()
		reqURL = u.String()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}
	if err != nil {
		return nil, "", err
	}

	req.Header.Set("User-Agent", config.DefaultUserAgent)
	for k, v := range e.cfg.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range e.cfg.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return req, reqURL, nil
}
