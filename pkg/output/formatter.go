package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Nishanath123/rxss-scanner/pkg/engine"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
)

var (
	cHeader = color.New(color.FgHiMagenta, color.Bold)
	cLabel  = color.New(color.FgMagenta)
	cValue  = color.New(color.FgHiWhite)
	cBad    = color.New(color.FgHiRed)
	cGood   = color.New(color.FgHiGreen)
)

// Format returns the formatted finding string based on the selected format
func Format(f models.Finding, format string) string {
	switch format {
	case "url":
		// URL-only format for piping into other tools
		return f.URL

	case "human":
		var sb strings.Builder

		sb.WriteString(cHeader.Sprint("\n[+] Reflected XSS Found\n"))
		sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("URL:     "), cValue.Sprint(f.URL)))
		sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Param:   "), cValue.Sprint(f.Param)))
		sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Context: "), cBad.Sprint(string(f.Context))))
		sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Payload: "), cValue.Sprint(f.Payload)))
		if f.Snippet != "" {
			sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Snippet: "), cValue.Sprint(trimSnippet(f.Snippet))))
		}
		return sb.String()

	case "json":
		out, err := json.Marshal(f)
		if err != nil {
			return fmt.Sprintf("{\"error\":\"failed to marshal finding: %v\"}", err)
		}
		return string(out)

	default:
		return f.URL
	}
}

// Summary renders the end-of-scan totals. Only meaningful for human
// output; callers using url or json format should skip it.
func Summary(stats engine.Stats, target string, elapsed time.Duration) string {
	var sb strings.Builder

	sb.WriteString(cHeader.Sprint("\n[*] Scan Complete\n"))
	sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Target:  "), cValue.Sprint(target)))
	sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Probes:  "), cValue.Sprint(stats.Probes)))
	if stats.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Skipped: "), cBad.Sprint(stats.Skipped)))
	}

	findings := cGood.Sprint("0")
	if stats.Findings > 0 {
		findings = cBad.Sprint(stats.Findings)
	}
	sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Findings:"), findings))
	sb.WriteString(fmt.Sprintf("    %s  %s\n", cLabel.Sprint("Elapsed: "), cValue.Sprint(elapsed.Round(time.Millisecond))))

	return sb.String()
}

// trimSnippet collapses newlines so a snippet stays on one output line.
func trimSnippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}
