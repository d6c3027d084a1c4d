package models

import "time"

// Report bundles the output of an analysis run for rendering.
type Report struct {
	Site        string       `json:"site"`
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     Summary      `json:"summary"`
	Gaps        []ContentGap `json:"gaps,omitempty"`
	Alerts      []Alert      `json:"alerts,omitempty"`
}

// Summary provides high-level counts for a Report.
type Summary struct {
	TotalGaps        int      `json:"total_gaps"`
	AvgPriority      float64  `json:"avg_priority"`
	TotalPotential   int64    `json:"total_potential_clicks"`
	HighAlerts       int      `json:"high_alerts"`
	MediumAlerts     int      `json:"medium_alerts"`
	TopOpportunities []string `json:"top_opportunities,omitempty"`
}

// NewReport builds a Report and fills in its Summary.
func NewReport(site string, generatedAt time.Time, gaps []ContentGap, alerts []Alert) *Report {
	r := &Report{
		Site:        site,
		GeneratedAt: generatedAt,
		Gaps:        gaps,
		Alerts:      alerts,
	}

	total := 0
	for i, g := range gaps {
		total += g.PriorityScore
		r.Summary.TotalPotential += g.PotentialClicks
		if i < 3 {
			r.Summary.TopOpportunities = append(r.Summary.TopOpportunities, g.Keyword)
		}
	}
	r.Summary.TotalGaps = len(gaps)
	if len(gaps) > 0 {
		r.Summary.AvgPriority = float64(total) / float64(len(gaps))
	}

	for _, a := range alerts {
		switch a.Severity {
		case SeverityHigh:
			r.Summary.HighAlerts++
		case SeverityMedium:
			r.Summary.MediumAlerts++
		}
	}
	return r
}
