package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/kherrera/stampede/internal/profile"
	"github.com/kherrera/stampede/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Target           string
	Result           profile.LoadResult
	ThresholdResults []threshold.Result
}

// GenerateHTMLReport writes a standalone HTML summary of a load run.
func GenerateHTMLReport(w io.Writer, target string, res profile.LoadResult, thresholds []threshold.Result) error {
	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Target:           target,
		Result:           res,
		ThresholdResults: thresholds,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>stampede load report {{.Result.RunID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1f2430; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d4dc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f2f4f8; }
.pass { color: #15803d; }
.fail { color: #b91c1c; }
.meta { color: #6b7280; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Load Test Report</h1>
<p class="meta">Run {{.Result.RunID}} against {{.Target}} &mdash; generated {{.GeneratedAt}}</p>

<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Actors</td><td>{{.Result.Actors}}</td></tr>
<tr><td>Total Calls</td><td>{{.Result.Total}}</td></tr>
<tr><td>Successes</td><td>{{.Result.Successes}}</td></tr>
<tr><td>Failures</td><td>{{.Result.Failures}}</td></tr>
<tr><td>Error Rate</td><td>{{formatFloat .Result.ErrorRate}}%</td></tr>
<tr><td>Throughput</td><td>{{formatFloat .Result.Throughput}} calls/s</td></tr>
<tr><td>Mean Latency</td><td>{{formatFloat .Result.MeanLatencyMs}} ms</td></tr>
<tr><td>Min Latency</td><td>{{formatFloat .Result.MinLatencyMs}} ms</td></tr>
<tr><td>Max Latency</td><td>{{formatFloat .Result.MaxLatencyMs}} ms</td></tr>
<tr><td>P50</td><td>{{formatFloat .Result.P50LatencyMs}} ms</td></tr>
<tr><td>P90</td><td>{{formatFloat .Result.P90LatencyMs}} ms</td></tr>
<tr><td>P99</td><td>{{formatFloat .Result.P99LatencyMs}} ms</td></tr>
</table>

{{if .ThresholdResults}}
<h2>Thresholds</h2>
<table>
<tr><th>Assertion</th><th>Actual</th><th>Outcome</th></tr>
{{range .ThresholdResults}}
<tr>
<td>{{.Threshold.Raw}}</td>
<td>{{formatFloat .Actual}}</td>
{{if .Pass}}<td class="pass">pass</td>{{else}}<td class="fail">fail</td>{{end}}
</tr>
{{end}}
</table>
{{end}}

</body>
</html>
`
