package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nishanath123/rxss-scanner/pkg/config"
	"github.com/Nishanath123/rxss-scanner/pkg/detector"
	"github.com/Nishanath123/rxss-scanner/pkg/engine"
	"github.com/Nishanath123/rxss-scanner/pkg/logger"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
	"github.com/Nishanath123/rxss-scanner/pkg/network"
	"github.com/Nishanath123/rxss-scanner/pkg/output"
	"github.com/Nishanath123/rxss-scanner/pkg/params"
	"github.com/Nishanath123/rxss-scanner/pkg/payloads"
	"github.com/Nishanath123/rxss-scanner/pkg/report"
)

var (
	// Target options
	paramList []string
	method    string
	discover  bool

	// Request options
	headerList []string
	cookies    string
	proxyURL   string
	timeout    int
	workers    int
	rateLimit  float64

	// Payload options
	contextList []string

	// Output options
	format       string
	outputFile   string
	reportFormat string
	verbose      bool
	debug        bool
	silent       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rxss [target_url]",
		Short: "Reflected XSS scanner " + config.Version,
		Long: `rxss probes URL and form parameters with marker payloads and reports
where the marker reflects into the response, classified by the HTML
context it lands in (text, attribute, script string, tag).

It never executes JavaScript; classification is static analysis of the
response markup, which keeps scans fast and safe to point at anything
you are authorized to test.`,
		Example: `  # Scan known parameters
  rxss "https://example.com/search" -p q -p page

  # Discover parameters from forms, then probe them
  rxss "https://example.com/search?q=test" --discover

  # POST probes through Burp with a session cookie
  rxss "https://example.com/login" -p username -X POST \
    --proxy http://127.0.0.1:8080 -c "session=abc123"

  # Only attribute and script payloads, JSON lines on stdout
  rxss "https://example.com/" -p q --context attribute_value \
    --context js_string --format json

  # Full scan with an HTML report
  rxss "https://example.com/search" --discover -o report.html --report-format html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(args[0])
		},
	}

	rootCmd.Flags().StringArrayVarP(&paramList, "param", "p", nil, "Parameter to probe. Can be used multiple times.")
	rootCmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method for probes (GET, POST)")
	rootCmd.Flags().BoolVar(&discover, "discover", false, "Discover parameters from the target's query string and forms")

	rootCmd.Flags().StringArrayVarP(&headerList, "header", "H", nil, "Extra request header (\"Name: value\"). Can be used multiple times.")
	rootCmd.Flags().StringVarP(&cookies, "cookie", "c", "", "Cookie header value (e.g. \"session=abc123; token=xyz\")")
	rootCmd.Flags().StringVar(&proxyURL, "proxy", "", "Proxy URL (e.g. http://127.0.0.1:8080)")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", int(config.DefaultTimeout/time.Second), "Per-probe timeout in seconds")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", config.DefaultWorkers, "Number of concurrent probe workers")
	rootCmd.Flags().Float64Var(&rateLimit, "rate", 0, "Max requests per second (0 = unlimited)")

	rootCmd.Flags().StringArrayVar(&contextList, "context", nil, "Restrict payloads to a context (text, attribute_value, attribute_name, js_string, tag_name). Can be used multiple times.")

	rootCmd.Flags().StringVar(&format, "format", "human", "Stdout format (human, json, url)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write a report file")
	rootCmd.Flags().StringVar(&reportFormat, "report-format", "json", "Report file format (json, html)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose progress on stderr")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Per-probe debug output on stderr")
	rootCmd.Flags().BoolVar(&silent, "silent", false, "Findings only, no banner or summary")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(target string) error {
	log := newLogger()

	if !silent {
		log.Info("rxss %s by %s", config.Version, config.Author)
	}

	headers, err := parseHeaders(headerList)
	if err != nil {
		return err
	}

	cfg := &models.ScanConfig{
		URL:     target,
		Params:  paramList,
		Method:  models.Method(strings.ToUpper(method)),
		Headers: headers,
		Cookies: parseCookies(cookies),
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	client := network.NewClient(time.Duration(timeout)*time.Second, proxyURL, workers, rateLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if discover || len(cfg.Params) == 0 {
		found, err := params.Discover(ctx, client, target)
		if err != nil {
			return fmt.Errorf("parameter discovery failed: %w", err)
		}
		cfg.Params = mergeParams(cfg.Params, found)
		log.V("discovered %d parameter(s): %s", len(found), strings.Join(found, ", "))
	}
	if len(cfg.Params) == 0 {
		return fmt.Errorf("no parameters to probe; pass -p or use --discover on a page with forms")
	}

	catalog := payloads.NewCatalog()
	set, err := selectPayloads(catalog, contextList)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, client, catalog, detector.New(catalog.Marker()), log)
	if err != nil {
		return err
	}
	eng.SetWorkers(workers)
	eng.SetTimeout(time.Duration(timeout) * time.Second)
	eng.SetPayloads(set)

	log.V("probing %d parameter(s) with %d payload(s), %d workers", len(cfg.Params), len(set), workers)

	start := time.Now()
	findings, err := eng.Scan(ctx)
	if err != nil {
		log.Error("scan interrupted: %v", err)
	}

	for _, f := range findings {
		fmt.Println(output.Format(f, format))
	}
	if format == "human" && !silent {
		fmt.Println(output.Summary(eng.Stats(), target, time.Since(start)))
	}

	if outputFile != "" {
		res := &report.Result{
			Target:    target,
			StartedAt: start,
			Duration:  time.Since(start).Round(time.Millisecond).String(),
			Stats:     eng.Stats(),
			Findings:  findings,
		}
		if err := report.New(reportFormat).Generate(res, outputFile); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if !silent {
			log.Info("report saved to %s", outputFile)
		}
	}

	return nil
}

func newLogger() *logger.Logger {
	switch {
	case silent:
		return logger.New(0)
	case debug:
		return logger.New(2)
	case verbose:
		return logger.New(1)
	default:
		return logger.New(0)
	}
}

// parseHeaders turns "Name: value" strings into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid header format: %q (expected \"Name: value\")", h)
		}
		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}

// parseCookies turns a "a=b; c=d" string into a cookie map. Entries
// without an equals sign are ignored.
func parseCookies(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	cookies := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] != "" {
			cookies[kv[0]] = kv[1]
		}
	}
	return cookies
}

func mergeParams(existing, found []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p] = true
	}
	merged := existing
	for _, p := range found {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	return merged
}

// selectPayloads returns the payloads for the requested contexts, or
// the full catalog when none are given.
func selectPayloads(catalog *payloads.Catalog, labels []string) ([]payloads.Payload, error) {
	if len(labels) == 0 {
		return catalog.All(), nil
	}
	var set []payloads.Payload
	for _, label := range labels {
		ctx, err := models.ParseContext(label)
		if err != nil {
			return nil, err
		}
		ps, err := catalog.ForContext(ctx)
		if err != nil {
			return nil, err
		}
		set = append(set, ps...)
	}
	return set, nil
}
