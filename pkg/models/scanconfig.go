package models

import (
	"fmt"
	"net/url"
)

// Method is the HTTP method used for every probe of a scan.
type Method string

const (
	MethodGET  Method = "GET"
	MethodPOST Method = "POST"
)

// ScanConfig describes one scan. It is immutable for the scan's
// duration; the engine never writes back into it.
type ScanConfig struct {
	URL     string            `json:"url"`
	Params  []string          `json:"params"`
	Method  Method            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Cookies map[string]string `json:"cookies,omitempty"`
}

// Validate checks the scan configuration before any probe is built.
func (c *ScanConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("target URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	switch c.Method {
	case MethodGET, MethodPOST:
	case "":
		return fmt.Errorf("HTTP method is required")
	default:
		return fmt.Errorf("invalid HTTP method: %s", c.Method)
	}

	return nil
}
