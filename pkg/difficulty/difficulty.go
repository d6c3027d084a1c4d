// Package difficulty scores how hard a keyword is to rank for.
package difficulty

import (
	"math"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

// Scorer computes difficulty results from a tuning section.
type Scorer struct {
	model tuning.DifficultyModel
}

// New creates a Scorer with the given constants.
func New(model tuning.DifficultyModel) *Scorer {
	return &Scorer{model: model}
}

var defaultScorer = New(tuning.DefaultDifficulty())

// CalculateKeywordDifficulty scores a keyword with the default model.
func CalculateKeywordDifficulty(input models.KeywordDifficultyInput, benchmark models.Benchmark) models.DifficultyResult {
	return defaultScorer.Calculate(input, benchmark)
}

// SubScores are the normalized 0-100 components of a difficulty score.
type SubScores struct {
	Competition float64
	Authority   float64
	Backlinks   float64
	Content     float64
}

// Components returns the clamped sub-scores before weighting.
// Malformed inputs are clamped rather than rejected.
func (s *Scorer) Components(input models.KeywordDifficultyInput, benchmark models.Benchmark) SubScores {
	competition := clamp(sanitize(input.Competition), 0, 1)
	backlinks := math.Max(0, float64(benchmark.AvgBacklinks))
	contentLength := math.Max(0, float64(benchmark.AvgContentLength))

	divisor := s.model.ContentLengthDivisor
	if divisor <= 0 {
		divisor = 1
	}

	return SubScores{
		Competition: clamp(competition*100, 0, 100),
		Authority:   clamp(sanitize(benchmark.AvgDomainAuthority), 0, 100),
		Backlinks:   clamp(math.Log10(backlinks+1)*s.model.BacklinkLogScale, 0, 100),
		Content:     clamp(contentLength/divisor, 0, 100),
	}
}

// Calculate returns the difficulty score, its tier, the months needed to
// rank and the backlinks required.
func (s *Scorer) Calculate(input models.KeywordDifficultyInput, benchmark models.Benchmark) models.DifficultyResult {
	sub := s.Components(input, benchmark)
	m := s.model

	raw := m.CompetitionWeight*sub.Competition +
		m.AuthorityWeight*sub.Authority +
		m.BacklinkWeight*sub.Backlinks +
		m.ContentWeight*sub.Content
	difficulty := int(clamp(math.Round(raw), 0, 100))

	months := int(math.Round(float64(difficulty) / 100 * float64(m.MaxMonthsToRank)))
	if months < 1 {
		months = 1
	}

	backlinks := math.Max(0, float64(benchmark.AvgBacklinks))
	required := int64(math.Round(backlinks * float64(difficulty) / 100))

	return models.DifficultyResult{
		Difficulty:          difficulty,
		CompetitionLevel:    s.Level(difficulty),
		EstimatedTimeToRank: months,
		RequiredBacklinks:   required,
	}
}

// Level maps a difficulty score to its competition tier.
func (s *Scorer) Level(difficulty int) models.CompetitionLevel {
	switch {
	case difficulty < s.model.MediumAt:
		return models.CompetitionLow
	case difficulty < s.model.HighAt:
		return models.CompetitionMedium
	case difficulty < s.model.VeryHighAt:
		return models.CompetitionHigh
	default:
		return models.CompetitionVeryHigh
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
