// Package report writes scan results to disk as JSON or as a
// self-contained HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/Nishanath123/rxss-scanner/pkg/engine"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
)

// Result is the serializable outcome of a full scan.
type Result struct {
	Target    string           `json:"target"`
	StartedAt time.Time        `json:"started_at"`
	Duration  string           `json:"duration"`
	Stats     engine.Stats     `json:"stats"`
	Findings  []models.Finding `json:"findings"`
}

// Reporter generates scan reports in the selected format
type Reporter struct {
	format string
}

// New creates a new reporter with the specified format
func New(format string) *Reporter {
	return &Reporter{format: strings.ToLower(format)}
}

// Generate writes the report to outputPath
func (r *Reporter) Generate(result *Result, outputPath string) error {
	switch r.format {
	case "html":
		return r.generateHTML(result, outputPath)
	default:
		return r.generateJSON(result, outputPath)
	}
}

func (r *Reporter) generateJSON(result *Result, outputPath string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return os.WriteFile(outputPath, data, 0644)
}

func (r *Reporter) generateHTML(result *Result, outputPath string) error {
	tmpl := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>rxss Scan Report - {{.Target}}</title>
    <style>
        :root {
            --bg: #12121c;
            --card: #1c1c2e;
            --accent: #b06bff;
            --text: #eaeaf2;
            --muted: #9a9aac;
            --danger: #ff5566;
            --ok: #3ddc97;
            --border: rgba(255, 255, 255, 0.08);
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
            background: var(--bg);
            color: var(--text);
            min-height: 100vh;
            line-height: 1.6;
        }

        .container { max-width: 1100px; margin: 0 auto; padding: 40px 20px; }

        .header {
            text-align: center;
            padding: 40px;
            background: var(--card);
            border: 1px solid var(--border);
            border-radius: 16px;
            margin-bottom: 30px;
        }

        .header h1 {
            font-size: 2.2rem;
            color: var(--accent);
            margin-bottom: 10px;
        }

        .header .target {
            display: inline-block;
            background: rgba(176, 107, 255, 0.1);
            border: 1px solid rgba(176, 107, 255, 0.3);
            border-radius: 10px;
            padding: 10px 20px;
            font-family: 'Consolas', monospace;
            word-break: break-all;
        }

        .header .meta { margin-top: 15px; color: var(--muted); font-size: 0.9rem; }

        .stats {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 16px;
            margin-bottom: 30px;
        }

        .stat {
            background: var(--card);
            border: 1px solid var(--border);
            border-radius: 12px;
            padding: 24px;
            text-align: center;
        }

        .stat .value { font-size: 2rem; font-weight: 700; }
        .stat .label { color: var(--muted); font-size: 0.85rem; text-transform: uppercase; letter-spacing: 1px; }
        .stat.danger .value { color: var(--danger); }
        .stat.ok .value { color: var(--ok); }

        .section {
            background: var(--card);
            border: 1px solid var(--border);
            border-radius: 16px;
            padding: 28px;
        }

        .section h2 { margin-bottom: 20px; font-size: 1.3rem; }

        .finding {
            border: 1px solid rgba(255, 85, 102, 0.25);
            border-left: 4px solid var(--danger);
            border-radius: 0 10px 10px 0;
            padding: 20px;
            margin-bottom: 16px;
        }

        .finding:last-child { margin-bottom: 0; }

        .row {
            display: grid;
            grid-template-columns: 110px 1fr;
            gap: 12px;
            margin-bottom: 10px;
            align-items: start;
        }

        .row:last-child { margin-bottom: 0; }

        .k { color: var(--muted); font-size: 0.85rem; text-transform: uppercase; letter-spacing: 0.5px; }

        .v {
            font-family: 'Consolas', monospace;
            font-size: 0.9rem;
            word-break: break-all;
            background: rgba(0, 0, 0, 0.25);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 8px 12px;
        }

        .v.payload { color: var(--danger); }
        .v.context { color: var(--accent); }

        .clean { text-align: center; padding: 40px; }
        .clean h3 { color: var(--ok); font-size: 1.5rem; margin-bottom: 8px; }
        .clean p { color: var(--muted); }

        .footer { text-align: center; padding: 24px; color: var(--muted); font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <header class="header">
            <h1>Reflected XSS Scan Report</h1>
            <div class="target">{{.Target}}</div>
            <div class="meta">{{.StartedAt.Format "2006-01-02 15:04:05"}} &middot; duration {{.Duration}}</div>
        </header>

        <div class="stats">
            <div class="stat {{if gt .Stats.Findings 0}}danger{{else}}ok{{end}}">
                <div class="value">{{.Stats.Findings}}</div>
                <div class="label">Findings</div>
            </div>
            <div class="stat">
                <div class="value">{{.Stats.Probes}}</div>
                <div class="label">Probes Sent</div>
            </div>
            <div class="stat {{if gt .Stats.Skipped 0}}danger{{else}}ok{{end}}">
                <div class="value">{{.Stats.Skipped}}</div>
                <div class="label">Skipped</div>
            </div>
        </div>

        <section class="section">
            <h2>Findings</h2>
            {{if .Findings}}
                {{range .Findings}}
                <div class="finding">
                    <div class="row"><span class="k">URL</span><span class="v">{{.URL}}</span></div>
                    <div class="row"><span class="k">Parameter</span><span class="v">{{.Param}}</span></div>
                    <div class="row"><span class="k">Context</span><span class="v context">{{.Context}}</span></div>
                    <div class="row"><span class="k">Payload</span><span class="v payload">{{.Payload}}</span></div>
                    {{if .Snippet}}
                    <div class="row"><span class="k">Snippet</span><span class="v">{{.Snippet}}</span></div>
                    {{end}}
                </div>
                {{end}}
            {{else}}
                <div class="clean">
                    <h3>No Reflections Found</h3>
                    <p>No parameter reflected its probe into the response.</p>
                </div>
            {{end}}
        </section>

        <footer class="footer">
            Report generated by rxss on {{now.Format "2006-01-02 15:04:05 MST"}}
        </footer>
    </div>
</body>
</html>`

	funcMap := template.FuncMap{
		"now": time.Now,
	}

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return t.Execute(file, result)
}
