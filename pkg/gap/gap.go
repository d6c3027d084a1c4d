// Package gap ranks content-gap opportunities.
package gap

import (
	"math"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

// PriorityParams are the signals fused into a priority score.
type PriorityParams struct {
	GapType            models.GapType
	Difficulty         int
	SearchVolume       int64
	CompetitorPosition int
	PotentialClicks    int64
}

// Scorer computes gap priorities.
type Scorer struct {
	model tuning.GapModel
}

// New creates a Scorer.
func New(model tuning.GapModel) *Scorer {
	return &Scorer{model: model}
}

var defaultScorer = New(tuning.DefaultGap())

// CalculateGapPriorityScore scores a gap with the default model.
func CalculateGapPriorityScore(params PriorityParams) int {
	return defaultScorer.Priority(params)
}

// ClassifyGap classifies a keyword with the default model.
func ClassifyGap(competitorRanking int, yourRanking *int) (models.GapType, bool) {
	return defaultScorer.Classify(competitorRanking, yourRanking)
}

// Priority returns a score in [0,100]. Close races score above blank
// slates, and easy, high-volume keywords where the competitor sits high on
// page one score highest.
func (s *Scorer) Priority(p PriorityParams) int {
	m := s.model

	difficulty := math.Max(0, math.Min(100, float64(p.Difficulty)))
	volume := ratio(float64(p.SearchVolume), m.VolumeCeiling)
	clicks := ratio(float64(p.PotentialClicks), m.ClicksCeiling)

	position := 0.0
	horizon := float64(m.PositionHorizon)
	if p.CompetitorPosition >= 1 && p.CompetitorPosition <= m.PositionHorizon {
		position = (horizon - float64(p.CompetitorPosition)) / horizon
	}

	score := s.base(p.GapType) +
		(100-difficulty)*m.DifficultyWeight +
		volume*100*m.VolumeWeight +
		position*100*m.PositionWeight +
		clicks*100*m.ClicksWeight

	return int(math.Max(0, math.Min(100, math.Round(score))))
}

func (s *Scorer) base(t models.GapType) float64 {
	switch t {
	case models.GapOpportunity:
		return s.model.OpportunityBase
	case models.GapUnderperforming:
		return s.model.UnderperformingBase
	case models.GapMissing:
		return s.model.MissingBase
	default:
		return 0
	}
}

// Classify decides the gap type from both rankings. A nil or non-positive
// ranking means the site does not rank. The second result is false when
// the site already holds a top position at or above the competitor.
func (s *Scorer) Classify(competitorRanking int, yourRanking *int) (models.GapType, bool) {
	if yourRanking == nil || *yourRanking <= 0 {
		return models.GapMissing, true
	}
	yours := *yourRanking
	if competitorRanking > 0 && yours > competitorRanking {
		return models.GapUnderperforming, true
	}
	if yours <= s.model.TopPositions {
		return "", false
	}
	return models.GapOpportunity, true
}

func ratio(v, ceiling float64) float64 {
	if math.IsNaN(v) || v <= 0 || ceiling <= 0 {
		return 0
	}
	return math.Min(1, v/ceiling)
}
