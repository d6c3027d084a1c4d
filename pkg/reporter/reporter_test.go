package reporter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/serpsmith/internal/models"
)

func sampleReport() *models.Report {
	nine := 9
	gaps := []models.ContentGap{
		{Keyword: "trail shoes", GapType: models.GapUnderperforming, PriorityScore: 84, Difficulty: 20,
			DifficultyLevel: models.CompetitionLow, SearchVolume: 8000, PotentialClicks: 1200,
			CompetitorRanking: 2, YourRanking: &nine, RequiredWordCount: 2400},
		{Keyword: "<script>alert(1)</script>", GapType: models.GapMissing, PriorityScore: 28, Difficulty: 90,
			DifficultyLevel: models.CompetitionVeryHigh, CompetitorRanking: 15},
	}
	alerts := []models.Alert{
		{Type: models.AlertClicksDrop, Severity: models.SeverityHigh, Change: 0.6, Item: "kw", Previous: 100, Current: 40},
	}
	return models.NewReport("example.com", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), gaps, alerts)
}

func TestGenerateJSON(t *testing.T) {
	out, err := New().GenerateReport(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var back models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, "example.com", back.Site)
	assert.Equal(t, 2, back.Summary.TotalGaps)
	assert.Len(t, back.Alerts, 1)
}

func TestGenerateHTMLEscapes(t *testing.T) {
	out, err := New().GenerateReport(sampleReport(), FormatHTML)
	require.NoError(t, err)

	assert.Contains(t, out, "SEO Opportunity Report for example.com")
	assert.Contains(t, out, "March 1, 2026")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "<td>9</td>")
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestGenerateMarkdown(t *testing.T) {
	out, err := New().GenerateReport(sampleReport(), FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "# SEO Opportunity Report: example.com")
	assert.Contains(t, out, "## Content Gaps")
	assert.Contains(t, out, "trail shoes")
	assert.Contains(t, out, "[!CAUTION]")
	assert.Contains(t, out, "CLICKS_DROP")
	assert.Contains(t, out, "```mermaid")
}

func TestGenerateMarkdownEmpty(t *testing.T) {
	report := models.NewReport("quiet.com", time.Now(), nil, nil)
	out, err := New().GenerateReport(report, FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "No content gaps found.")
	assert.Contains(t, out, "No anomalies detected.")
	assert.Contains(t, out, "[!NOTE]")
}

func TestGenerateReportErrors(t *testing.T) {
	_, err := New().GenerateReport(sampleReport(), "pdf")
	assert.Error(t, err)

	_, err = New().GenerateReport(nil, FormatJSON)
	assert.Error(t, err)
}
