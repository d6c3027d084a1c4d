// Package anomaly compares two reporting periods and flags regressions.
package anomaly

import (
	"math"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
	"github.com/amosWeiskopf/serpsmith/pkg/utils"
)

// Detector flags clicks, CTR and position regressions between periods.
type Detector struct {
	model tuning.AnomalyModel
}

// New creates a Detector.
func New(model tuning.AnomalyModel) *Detector {
	return &Detector{model: model}
}

var defaultDetector = New(tuning.DefaultAnomaly())

// tolerance absorbs the rounding of CTR ratios so that a drop of exactly the
// threshold size still meets it.
const tolerance = 1e-12

// DetectAnomalies runs the default detector.
func DetectAnomalies(current, previous []models.AggregateMetric, threshold float64) []models.Alert {
	return defaultDetector.Detect(current, previous, threshold)
}

// Detect emits an alert for every metric of an entity present in both
// periods whose relative regression reaches threshold. Improvements never
// alert. Alerts follow the order of current, and within an entity the order
// clicks, CTR, position. A threshold that is not positive falls back to the
// model default.
func (d *Detector) Detect(current, previous []models.AggregateMetric, threshold float64) []models.Alert {
	if math.IsNaN(threshold) || threshold <= 0 {
		threshold = d.model.DefaultThreshold
	}

	prevByEntity := make(map[string]models.AggregateMetric, len(previous))
	for _, p := range previous {
		key := utils.FoldEntity(p.Entity)
		if _, dup := prevByEntity[key]; !dup {
			prevByEntity[key] = p
		}
	}

	alerts := make([]models.Alert, 0)
	for _, cur := range current {
		prev, ok := prevByEntity[utils.FoldEntity(cur.Entity)]
		if !ok {
			continue
		}

		clicksChange := float64(prev.TotalClicks-cur.TotalClicks) / math.Max(float64(prev.TotalClicks), 1)
		ctrChange := (prev.AvgCTR - cur.AvgCTR) / math.Max(prev.AvgCTR, d.model.CTREpsilon)
		// A larger position number is a worse ranking.
		positionChange := (cur.AvgPosition - prev.AvgPosition) / math.Max(prev.AvgPosition, 1)

		checks := []struct {
			kind    models.AlertType
			change  float64
			prev    float64
			current float64
		}{
			{models.AlertClicksDrop, clicksChange, float64(prev.TotalClicks), float64(cur.TotalClicks)},
			{models.AlertCTRDrop, ctrChange, prev.AvgCTR, cur.AvgCTR},
			{models.AlertPositionDrop, positionChange, prev.AvgPosition, cur.AvgPosition},
		}
		for _, c := range checks {
			if math.IsNaN(c.change) || c.change <= 0 || c.change+tolerance < threshold {
				continue
			}
			alerts = append(alerts, models.Alert{
				Type:     c.kind,
				Severity: d.severity(c.change),
				Change:   c.change,
				Item:     cur.Entity,
				Previous: c.prev,
				Current:  c.current,
			})
		}
	}
	return alerts
}

func (d *Detector) severity(change float64) models.Severity {
	if change+tolerance >= d.model.HighSeverity {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}
