package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/Nishanath123/rxss-scanner/pkg/detector"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
	"github.com/Nishanath123/rxss-scanner/pkg/payloads"
)

// transportFunc adapts a function to the Transport interface.
type transportFunc func(req *http.Request) (*http.Response, error)

func (f transportFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func newTestEngine(t *testing.T, cfg *models.ScanConfig, tr Transport) *Engine {
	t.Helper()
	catalog := payloads.NewCatalog()
	e, err := New(cfg, tr, catalog, detector.New(catalog.Marker()), nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

// reflectServer echoes the named parameter, unescaped, into a text node.
func reflectServer(param string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		fmt.Fprintf(w, "<html><body>result: %s</body></html>", r.Form.Get(param))
	}))
}

func TestEngine_Scan_FindsReflectedParam(t *testing.T) {
	server := reflectServer("q")
	defer server.Close()

	cfg := &models.ScanConfig{
		URL:    server.URL + "/search",
		Params: []string{"q", "safe"},
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	total := len(payloads.NewCatalog().All())
	if len(findings) != total {
		t.Fatalf("expected %d findings (every payload reflects via q), got %d", total, len(findings))
	}
	for _, f := range findings {
		if f.Param != "q" {
			t.Errorf("finding reported for non-reflecting param %q", f.Param)
		}
		if f.Position < 0 {
			t.Errorf("finding has negative position: %+v", f)
		}
	}

	stats := e.Stats()
	if stats.Probes != 2*total {
		t.Errorf("expected %d probes, got %d", 2*total, stats.Probes)
	}
	if stats.Skipped != 0 {
		t.Errorf("expected no skips, got %d", stats.Skipped)
	}
}

func TestEngine_Scan_DuplicateParamsProbeOnce(t *testing.T) {
	server := reflectServer("q")
	defer server.Close()

	cfg := &models.ScanConfig{
		URL:    server.URL,
		Params: []string{"q", "q", "other", "q"},
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	total := len(payloads.NewCatalog().All())
	if len(findings) != total {
		t.Errorf("expected %d findings despite repeated -p q, got %d", total, len(findings))
	}
	if probes := e.Stats().Probes; probes != 2*total {
		t.Errorf("expected %d probes (q and other once each), got %d", 2*total, probes)
	}
}

func TestEngine_Scan_POSTBody(t *testing.T) {
	server := reflectServer("comment")
	defer server.Close()

	cfg := &models.ScanConfig{
		URL:    server.URL,
		Params: []string{"comment"},
		Method: models.MethodPOST,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(findings) == 0 {
		t.Fatal("expected findings from POST body reflection")
	}
}

func TestEngine_Scan_ClassifiesAttributeReflection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<input type="text" value="%s">`, r.URL.Query().Get("name"))
	}))
	defer server.Close()

	cfg := &models.ScanConfig{
		URL:    server.URL,
		Params: []string{"name"},
		Method: models.MethodGET,
	}
	catalog := payloads.NewCatalog()
	e := newTestEngine(t, cfg, http.DefaultClient)

	textBucket, _ := catalog.ForContext(models.ContextText)
	e.SetPayloads(textBucket[:1]) // bare marker only

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Context != models.ContextAttributeValue {
		t.Errorf("expected attribute_value, got %s", findings[0].Context)
	}
}

func TestEngine_Scan_Idempotent(t *testing.T) {
	server := reflectServer("q")
	defer server.Close()

	cfg := &models.ScanConfig{
		URL:    server.URL,
		Params: []string{"q", "other"},
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)

	key := func(f models.Finding) string {
		return f.Param + "|" + f.Payload + "|" + string(f.Context)
	}
	sorted := func(fs []models.Finding) []string {
		keys := make([]string, len(fs))
		for i, f := range fs {
			keys[i] = key(f)
		}
		sort.Strings(keys)
		return keys
	}

	first, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan() error: %v", err)
	}
	second, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan() error: %v", err)
	}

	a, b := sorted(first), sorted(second)
	if len(a) != len(b) {
		t.Fatalf("finding counts differ between runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("finding sets differ at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestEngine_Scan_ExactFindingsUnderConcurrency(t *testing.T) {
	// Only two of the parameters reflect; the findings list must hold
	// exactly one entry per reflecting probe, no duplicates, no losses.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fmt.Fprintf(w, "<p>%s%s</p>", q.Get("a"), q.Get("b"))
	}))
	defer server.Close()

	params := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	cfg := &models.ScanConfig{
		URL:    server.URL,
		Params: params,
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)
	e.SetWorkers(15)

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	perParam := len(payloads.NewCatalog().All())
	want := 2 * perParam
	if len(findings) != want {
		t.Fatalf("expected exactly %d findings, got %d", want, len(findings))
	}

	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Param != "a" && f.Param != "b" {
			t.Errorf("unexpected finding for param %q", f.Param)
		}
		k := f.Param + "|" + f.Payload
		if seen[k] {
			t.Errorf("duplicate finding: %s", k)
		}
		seen[k] = true
	}
}

func TestEngine_Scan_TransportFailureSkipsProbes(t *testing.T) {
	tr := transportFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial timeout")
	})

	cfg := &models.ScanConfig{
		URL:    "http://unreachable.invalid/",
		Params: []string{"q"},
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, tr)
	e.SetTimeout(100 * time.Millisecond)

	done := make(chan struct{})
	var findings []models.Finding
	var err error
	go func() {
		findings, err = e.Scan(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scan hung on failing transport")
	}

	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}

	stats := e.Stats()
	if stats.Skipped != stats.Probes || stats.Probes == 0 {
		t.Errorf("expected every probe skipped, got %+v", stats)
	}
}

func TestEngine_Scan_NoParams(t *testing.T) {
	cfg := &models.ScanConfig{
		URL:    "http://example.com/",
		Method: models.MethodGET,
	}
	e := newTestEngine(t, cfg, http.DefaultClient)

	findings, err := e.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected empty findings for zero params, got %d", len(findings))
	}
	if e.Stats().Probes != 0 {
		t.Errorf("expected zero probes, got %d", e.Stats().Probes)
	}
}

func TestEngine_New_InvalidConfig(t *testing.T) {
	catalog := payloads.NewCatalog()
	_, err := New(&models.ScanConfig{URL: "", Method: models.MethodGET}, http.DefaultClient, catalog, detector.New(catalog.Marker()), nil)
	if err == nil {
		t.Fatal("expected error for missing URL")
	}
}
