// Package params harvests candidate injection parameters from a target
// page: form field names plus whatever is already on the URL query.
package params

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nishanath123/rxss-scanner/pkg/config"
)

// Client sends the single discovery request.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// Discover fetches targetURL once and returns the union of query
// parameter names and form field names found in the markup, sorted and
// deduplicated. A page without forms still yields the query names.
func Discover(ctx context.Context, client Client, targetURL string) ([]string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	seen := make(map[string]bool)
	for name := range u.Query() {
		seen[name] = true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing target markup: %w", err)
	}

	doc.Find("input[name], select[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
		if name, ok := s.Attr("name"); ok && name != "" {
			seen[name] = true
		}
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
