package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/amosWeiskopf/serpsmith/internal/models"
)

// Format names a report output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Reporter handles report generation in various formats
type Reporter struct {
	tmpl *template.Template
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{
		tmpl: template.Must(template.New("report").Funcs(template.FuncMap{
			"pct":     func(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) + "%" },
			"ranking": ranking,
		}).Parse(htmlTemplate)),
	}
}

// GenerateReport renders the report in the specified format.
func (r *Reporter) GenerateReport(report *models.Report, format Format) (string, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, report, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders the report to w.
func (r *Reporter) Write(w io.Writer, report *models.Report, format Format) error {
	if report == nil {
		return fmt.Errorf("no report to render")
	}

	switch format {
	case FormatJSON, "":
		return r.writeJSON(w, report)
	case FormatHTML:
		return r.writeHTML(w, report)
	case FormatMarkdown, "md":
		return r.writeMarkdown(w, report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Reporter) writeJSON(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return nil
}

func (r *Reporter) writeHTML(w io.Writer, report *models.Report) error {
	if err := r.tmpl.Execute(w, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func (r *Reporter) writeMarkdown(w io.Writer, report *models.Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("SEO Opportunity Report: " + report.Site)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04 MST")},
			{"Content gaps", strconv.Itoa(report.Summary.TotalGaps)},
			{"Average priority", strconv.FormatFloat(report.Summary.AvgPriority, 'f', 1, 64)},
			{"Potential clicks", strconv.FormatInt(report.Summary.TotalPotential, 10)},
			{"High alerts", strconv.Itoa(report.Summary.HighAlerts)},
			{"Medium alerts", strconv.Itoa(report.Summary.MediumAlerts)},
		},
	})
	md.PlainText("")

	writeAlertBanner(md, report.Summary)
	writeGaps(md, report.Gaps)
	writeAlerts(md, report.Alerts)

	return md.Build()
}

func writeAlertBanner(md *markdown.Markdown, s models.Summary) {
	switch {
	case s.HighAlerts > 0:
		md.Cautionf("%d metric(s) dropped by half or more since the previous period.", s.HighAlerts)
	case s.MediumAlerts > 0:
		md.Warningf("%d metric(s) regressed past the alert threshold.", s.MediumAlerts)
	case s.TotalGaps > 0:
		md.Tip("No regressions detected. Focus on the content gaps below.")
	default:
		md.Note("No regressions or content gaps found.")
	}
	md.PlainText("")
}

func writeGaps(md *markdown.Markdown, gaps []models.ContentGap) {
	md.H2("Content Gaps")
	md.PlainText("")
	if len(gaps) == 0 {
		md.PlainText("No content gaps found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(gaps))
	counts := make(map[models.GapType]uint64)
	for _, g := range gaps {
		counts[g.GapType]++
		rows = append(rows, []string{
			g.Keyword,
			string(g.GapType),
			strconv.Itoa(g.PriorityScore),
			strconv.Itoa(g.Difficulty) + " (" + string(g.DifficultyLevel) + ")",
			strconv.FormatInt(g.SearchVolume, 10),
			strconv.FormatInt(g.PotentialClicks, 10),
			strconv.Itoa(g.CompetitorRanking),
			ranking(g.YourRanking),
			strconv.Itoa(g.RequiredWordCount),
			strconv.FormatInt(g.RequiredBacklinks, 10),
			strconv.Itoa(g.EstimatedTimeToRank),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Keyword", "Type", "Priority", "Difficulty", "Volume", "Potential clicks",
			"Competitor", "You", "Words", "Backlinks", "Months"},
		Rows: rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(io.Discard, piechart.WithTitle("Gap Types"), piechart.WithShowData(true))
	for _, t := range []models.GapType{models.GapMissing, models.GapUnderperforming, models.GapOpportunity} {
		if counts[t] > 0 {
			chart.LabelAndIntValue(string(t), counts[t])
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func writeAlerts(md *markdown.Markdown, alerts []models.Alert) {
	md.H2("Anomalies")
	md.PlainText("")
	if len(alerts) == 0 {
		md.PlainText("No anomalies detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{
			a.Item,
			string(a.Type),
			string(a.Severity),
			strconv.FormatFloat(a.Change*100, 'f', 1, 64) + "%",
			strconv.FormatFloat(a.Previous, 'f', -1, 64),
			strconv.FormatFloat(a.Current, 'f', -1, 64),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Item", "Type", "Severity", "Change", "Previous", "Current"},
		Rows:   rows,
	})
	md.PlainText("")
}

func ranking(pos *int) string {
	if pos == nil || *pos <= 0 {
		return "-"
	}
	return strconv.Itoa(*pos)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SEO Opportunity Report - {{.Site}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 2rem;
            border-radius: 10px;
            margin-bottom: 2rem;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 1rem;
        }
        .value { font-size: 2rem; font-weight: bold; color: #667eea; }
        .label { color: #666; font-size: 0.9rem; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #eee; }
        .HIGH { color: #dc3545; font-weight: bold; }
        .MEDIUM { color: #fd7e14; }
    </style>
</head>
<body>
    <div class="header">
        <h1>SEO Opportunity Report for {{.Site}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006"}}</p>
    </div>

    <div class="card">
        <h2>Summary</h2>
        <div class="grid">
            <div><div class="value">{{.Summary.TotalGaps}}</div><div class="label">Content gaps</div></div>
            <div><div class="value">{{printf "%.1f" .Summary.AvgPriority}}</div><div class="label">Average priority</div></div>
            <div><div class="value">{{.Summary.TotalPotential}}</div><div class="label">Potential clicks</div></div>
            <div><div class="value">{{.Summary.HighAlerts}}</div><div class="label">High alerts</div></div>
            <div><div class="value">{{.Summary.MediumAlerts}}</div><div class="label">Medium alerts</div></div>
        </div>
    </div>

    {{if .Gaps}}
    <div class="card">
        <h2>Content Gaps</h2>
        <table>
            <tr><th>Keyword</th><th>Type</th><th>Priority</th><th>Difficulty</th><th>Volume</th><th>Potential clicks</th><th>Competitor</th><th>You</th><th>Words</th></tr>
            {{range .Gaps}}
            <tr><td>{{.Keyword}}</td><td>{{.GapType}}</td><td>{{.PriorityScore}}</td><td>{{.Difficulty}} ({{.DifficultyLevel}})</td><td>{{.SearchVolume}}</td><td>{{.PotentialClicks}}</td><td>{{.CompetitorRanking}}</td><td>{{ranking .YourRanking}}</td><td>{{.RequiredWordCount}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}

    {{if .Alerts}}
    <div class="card">
        <h2>Anomalies</h2>
        <table>
            <tr><th>Item</th><th>Type</th><th>Severity</th><th>Change</th></tr>
            {{range .Alerts}}
            <tr><td>{{.Item}}</td><td>{{.Type}}</td><td class="{{.Severity}}">{{.Severity}}</td><td>{{pct .Change}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}
</body>
</html>
`
