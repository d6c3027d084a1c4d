package models

// AlertType names the metric that regressed.
type AlertType string

const (
	AlertClicksDrop   AlertType = "CLICKS_DROP"
	AlertCTRDrop      AlertType = "CTR_DROP"
	AlertPositionDrop AlertType = "POSITION_DROP"
)

// Severity of an alert.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// Alert is a period-over-period regression that crossed the threshold.
// Change is the positive decrease magnitude as a fraction.
type Alert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Change   float64   `json:"change"`
	Item     string    `json:"item"`
	Previous float64   `json:"previous"`
	Current  float64   `json:"current"`
}
