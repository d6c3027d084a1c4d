// Package ctr predicts organic click-through rate and achievable clicks for
// a keyword at a SERP position.
package ctr

import (
	"math"
	"strings"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

// Predictor applies a CTR model.
type Predictor struct {
	model tuning.CTRModel
}

// New creates a Predictor. The position curve is copied.
func New(model tuning.CTRModel) *Predictor {
	model.PositionCurve = append([]float64(nil), model.PositionCurve...)
	return &Predictor{model: model}
}

var defaultPredictor = New(tuning.DefaultCTR())

// AnalyzeCtr predicts clicks with the default model.
func AnalyzeCtr(input models.CtrInput) models.CtrResult {
	return defaultPredictor.Analyze(input)
}

// BaselineCTR returns the default curve value for a position.
func BaselineCTR(position float64) float64 {
	return defaultPredictor.Baseline(position)
}

// Baseline looks up the position curve. Fractional positions round to the
// nearest slot and anything above the curve gets the tail value, so the
// result never increases with position.
func (p *Predictor) Baseline(position float64) float64 {
	curve := p.model.PositionCurve
	if math.IsNaN(position) {
		return p.model.TailCTR
	}
	slot := math.Round(position)
	if slot < 1 {
		slot = 1
	}
	if slot > float64(len(curve)) {
		return p.model.TailCTR
	}
	return curve[int(slot)-1]
}

// Analyze adjusts the baseline for SERP features and converts it into
// potential clicks.
func (p *Predictor) Analyze(input models.CtrInput) models.CtrResult {
	base := p.Baseline(input.CurrentPosition)
	adjusted := base

	if input.HasRichSnippet {
		adjusted *= 1 + p.model.RichSnippetBoost
	}
	if input.HasSitelinks {
		adjusted *= 1 + p.model.SitelinksBoost
	}
	if extra := competingFeatures(input.SerpFeatures) - 1; extra > 0 {
		adjusted *= math.Pow(1-p.model.SerpFeaturePenalty, float64(extra))
	}
	adjusted = math.Max(0, math.Min(p.model.MaxCTR, adjusted))

	volume := input.SearchVolume
	if volume < 0 {
		volume = 0
	}

	return models.CtrResult{
		PotentialClicks: int64(math.Round(float64(volume) * adjusted)),
		BaselineCTR:     base,
		AdjustedCTR:     adjusted,
	}
}

// competingFeatures counts distinct non-empty feature names.
func competingFeatures(features []string) int {
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		seen[f] = struct{}{}
	}
	return len(seen)
}
