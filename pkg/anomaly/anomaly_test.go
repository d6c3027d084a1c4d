package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/serpsmith/internal/models"
)

func TestDetectAnomaliesScenario(t *testing.T) {
	current := []models.AggregateMetric{{Entity: "kw", TotalClicks: 40, TotalImpressions: 1000, AvgCTR: 0.04, AvgPosition: 8}}
	previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: 100, TotalImpressions: 1000, AvgCTR: 0.10, AvgPosition: 5}}

	alerts := DetectAnomalies(current, previous, 0.2)
	require.Len(t, alerts, 3)

	wantTypes := []models.AlertType{models.AlertClicksDrop, models.AlertCTRDrop, models.AlertPositionDrop}
	for i, a := range alerts {
		assert.Equal(t, wantTypes[i], a.Type)
		assert.Equal(t, models.SeverityHigh, a.Severity)
		assert.InDelta(t, 0.6, a.Change, 1e-9)
		assert.Equal(t, "kw", a.Item)
	}
	assert.Equal(t, 5.0, alerts[2].Previous)
	assert.Equal(t, 8.0, alerts[2].Current)
}

func TestDetectAnomaliesIdenticalPeriods(t *testing.T) {
	period := []models.AggregateMetric{
		{Entity: "a", TotalClicks: 10, TotalImpressions: 100, AvgCTR: 0.1, AvgPosition: 3},
		{Entity: "b", TotalClicks: 0, TotalImpressions: 0, AvgCTR: 0, AvgPosition: 1},
	}
	for _, threshold := range []float64{0.01, 0.2, 0.5, 0.99, 0, -1} {
		assert.Empty(t, DetectAnomalies(period, period, threshold))
	}
}

func TestDetectAnomaliesSkipsUnmatchedEntities(t *testing.T) {
	current := []models.AggregateMetric{{Entity: "new", TotalClicks: 0, AvgCTR: 0, AvgPosition: 90}}
	previous := []models.AggregateMetric{{Entity: "gone", TotalClicks: 900, AvgCTR: 0.5, AvgPosition: 1}}
	assert.Empty(t, DetectAnomalies(current, previous, 0.1))
}

func TestDetectAnomaliesIgnoresImprovements(t *testing.T) {
	current := []models.AggregateMetric{{Entity: "kw", TotalClicks: 200, AvgCTR: 0.2, AvgPosition: 2}}
	previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: 100, AvgCTR: 0.1, AvgPosition: 5}}
	assert.Empty(t, DetectAnomalies(current, previous, 0.05))
}

func TestDetectAnomaliesSeverityBoundary(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur int64
		threshold float64
		want      []models.Severity
	}{
		{"exactly half is high", 100, 50, 0.5, []models.Severity{models.SeverityHigh}},
		{"below threshold", 100, 81, 0.2, nil},
		{"at threshold is medium", 100, 80, 0.2, []models.Severity{models.SeverityMedium}},
		{"just under half", 100, 51, 0.2, []models.Severity{models.SeverityMedium}},
		{"full loss", 100, 0, 0.2, []models.Severity{models.SeverityHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := []models.AggregateMetric{{Entity: "kw", TotalClicks: tt.cur, AvgPosition: 3}}
			previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: tt.prev, AvgPosition: 3}}
			alerts := DetectAnomalies(current, previous, tt.threshold)

			var got []models.Severity
			for _, a := range alerts {
				assert.Equal(t, models.AlertClicksDrop, a.Type)
				got = append(got, a.Severity)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectAnomaliesCTRBoundary(t *testing.T) {
	tests := []struct {
		name                string
		prevClicks, prevImp int64
		curClicks, curImp   int64
		threshold           float64
		want                []models.Severity
	}{
		{"exact fifth from fewer impressions", 4, 8, 4, 10, 0.2, []models.Severity{models.SeverityMedium}},
		{"exact fifth from fewer clicks", 10, 20, 8, 20, 0.2, []models.Severity{models.SeverityMedium}},
		{"exactly half", 3, 10, 3, 20, 0.5, []models.Severity{models.SeverityHigh}},
		{"just below threshold", 100, 1000, 81, 1000, 0.2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := []models.AggregateMetric{{Entity: "kw", TotalClicks: tt.curClicks, TotalImpressions: tt.curImp,
				AvgCTR: float64(tt.curClicks) / float64(tt.curImp), AvgPosition: 3}}
			previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: tt.prevClicks, TotalImpressions: tt.prevImp,
				AvgCTR: float64(tt.prevClicks) / float64(tt.prevImp), AvgPosition: 3}}

			var got []models.Severity
			for _, a := range DetectAnomalies(current, previous, tt.threshold) {
				if a.Type == models.AlertCTRDrop {
					got = append(got, a.Severity)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectAnomaliesExactCTRDropsAlert(t *testing.T) {
	for clicks := int64(5); clicks <= 200; clicks += 5 {
		for _, imp := range []int64{clicks, 2 * clicks, 3 * clicks, 7 * clicks, clicks + 13} {
			prevCTR := float64(clicks) / float64(imp)
			curCTR := float64(clicks*4/5) / float64(imp)
			current := []models.AggregateMetric{{Entity: "kw", TotalClicks: clicks, AvgCTR: curCTR, AvgPosition: 2}}
			previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: clicks, AvgCTR: prevCTR, AvgPosition: 2}}

			alerts := DetectAnomalies(current, previous, 0.2)
			if assert.Len(t, alerts, 1, "ctr %d/%d -> %d/%d", clicks, imp, clicks*4/5, imp) {
				assert.Equal(t, models.AlertCTRDrop, alerts[0].Type)
				assert.Equal(t, models.SeverityMedium, alerts[0].Severity)
			}
		}
	}
}

func TestDetectAnomaliesNeverMediumAtHalf(t *testing.T) {
	for cur := int64(0); cur <= 100; cur++ {
		current := []models.AggregateMetric{{Entity: "kw", TotalClicks: cur, AvgPosition: 1}}
		previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: 100, AvgPosition: 1}}
		for _, a := range DetectAnomalies(current, previous, 0.5) {
			assert.Equal(t, models.SeverityHigh, a.Severity, "clicks %d", cur)
		}
	}
}

func TestDetectAnomaliesOrderFollowsCurrent(t *testing.T) {
	current := []models.AggregateMetric{
		{Entity: "zeta", TotalClicks: 10, AvgPosition: 1},
		{Entity: "Alpha", TotalClicks: 10, AvgPosition: 1},
		{Entity: "mid", TotalClicks: 70, AvgPosition: 1},
	}
	previous := []models.AggregateMetric{
		{Entity: "alpha", TotalClicks: 100, AvgPosition: 1},
		{Entity: "mid", TotalClicks: 100, AvgPosition: 1},
		{Entity: "zeta", TotalClicks: 100, AvgPosition: 1},
	}

	alerts := DetectAnomalies(current, previous, 0.2)
	require.Len(t, alerts, 3)
	assert.Equal(t, "zeta", alerts[0].Item)
	assert.Equal(t, "Alpha", alerts[1].Item)
	assert.Equal(t, "mid", alerts[2].Item)
	assert.Equal(t, models.SeverityMedium, alerts[2].Severity)
}

func TestDetectAnomaliesZeroBaselines(t *testing.T) {
	current := []models.AggregateMetric{{Entity: "kw", TotalClicks: 0, AvgCTR: 0, AvgPosition: 4}}
	previous := []models.AggregateMetric{{Entity: "kw", TotalClicks: 0, AvgCTR: 0, AvgPosition: 4}}
	assert.Empty(t, DetectAnomalies(current, previous, 0.1))

	// a previous CTR of zero cannot regress
	current[0].AvgCTR = 0.3
	assert.Empty(t, DetectAnomalies(current, previous, 0.1))
}
