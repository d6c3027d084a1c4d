package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/anomaly"
	"github.com/amosWeiskopf/serpsmith/pkg/content"
	"github.com/amosWeiskopf/serpsmith/pkg/ctr"
	"github.com/amosWeiskopf/serpsmith/pkg/difficulty"
	"github.com/amosWeiskopf/serpsmith/pkg/gap"
	"github.com/amosWeiskopf/serpsmith/pkg/normalizer"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

// Analyzer wires the scoring engine together for gap analysis and
// period comparison.
type Analyzer struct {
	config *Config

	difficulty *difficulty.Scorer
	ctr        *ctr.Predictor
	content    *content.Analyzer
	anomaly    *anomaly.Detector
	gap        *gap.Scorer
}

// Config holds analyzer configuration
type Config struct {
	Model tuning.Model
	// Workers bounds the goroutines scoring gap candidates.
	Workers int
	// Threshold is the anomaly threshold used by Analyze.
	Threshold float64
	Logger    zerolog.Logger
	// Now stamps generated reports.
	Now func() time.Time
}

// New creates an Analyzer with the default model and a disabled logger.
func New() *Analyzer {
	return NewWithConfig(&Config{
		Model:     tuning.Default(),
		Workers:   4,
		Threshold: tuning.DefaultAnomaly().DefaultThreshold,
		Logger:    zerolog.Nop(),
	})
}

// NewWithConfig creates an Analyzer with custom configuration
func NewWithConfig(config *Config) *Analyzer {
	cfg := *config
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := cfg.Model
	return &Analyzer{
		config:     &cfg,
		difficulty: difficulty.New(m.Difficulty),
		ctr:        ctr.New(m.CTR),
		content:    content.New(m.Content),
		anomaly:    anomaly.New(m.Anomaly),
		gap:        gap.New(m.Gap),
	}
}

// Input is everything a full analysis run needs.
type Input struct {
	Site       string
	Candidates []models.GapCandidate
	Current    []models.PerformanceRow
	Previous   []models.PerformanceRow
}

// Analyze runs gap analysis and, when both periods are given, anomaly
// detection, and bundles the result into a report.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*models.Report, error) {
	gaps, err := a.AnalyzeGaps(ctx, in.Candidates)
	if err != nil {
		return nil, fmt.Errorf("gap analysis failed: %w", err)
	}

	var alerts []models.Alert
	if len(in.Current) > 0 && len(in.Previous) > 0 {
		alerts, err = a.ComparePeriods(in.Current, in.Previous, a.config.Threshold)
		if err != nil {
			return nil, fmt.Errorf("period comparison failed: %w", err)
		}
	}

	return models.NewReport(in.Site, a.config.Now(), gaps, alerts), nil
}

// ScoreCandidate turns one candidate into a scored content gap. The second
// result is false when the site already wins the keyword.
func (a *Analyzer) ScoreCandidate(c models.GapCandidate) (models.ContentGap, bool) {
	gapType, ok := a.gap.Classify(c.CompetitorRanking, c.YourRanking)
	if !ok {
		return models.ContentGap{}, false
	}

	diff := a.difficulty.Calculate(c.Input, c.Benchmark)
	// Traffic is estimated at the position the competitor already holds.
	// Without a known competitor position no clicks are credited.
	var clicks models.CtrResult
	if c.CompetitorRanking > 0 {
		clicks = a.ctr.Analyze(models.CtrInput{
			CurrentPosition: float64(c.CompetitorRanking),
			SearchVolume:    c.Input.SearchVolume,
			HasRichSnippet:  c.HasRichSnippet,
			HasSitelinks:    c.HasSitelinks,
			SerpFeatures:    c.SerpFeatures,
		})
	}
	quality := a.content.Analyze(diff.Difficulty)

	volume := c.Input.SearchVolume
	if volume < 0 {
		volume = 0
	}

	g := models.ContentGap{
		Keyword:             c.Input.Keyword,
		CompetitorRanking:   c.CompetitorRanking,
		YourRanking:         c.YourRanking,
		SearchVolume:        volume,
		Difficulty:          diff.Difficulty,
		DifficultyLevel:     diff.CompetitionLevel,
		EstimatedTimeToRank: diff.EstimatedTimeToRank,
		PotentialClicks:     clicks.PotentialClicks,
		RequiredBacklinks:   diff.RequiredBacklinks,
		RequiredWordCount:   quality.RequiredWordCount,
		GapType:             gapType,
	}
	g.PriorityScore = a.gap.Priority(gap.PriorityParams{
		GapType:            gapType,
		Difficulty:         diff.Difficulty,
		SearchVolume:       volume,
		CompetitorPosition: c.CompetitorRanking,
		PotentialClicks:    clicks.PotentialClicks,
	})
	return g, true
}

// AnalyzeGaps scores every candidate and returns the gaps ordered by
// priority, highest first. Equal priorities keep the input order.
func (a *Analyzer) AnalyzeGaps(ctx context.Context, candidates []models.GapCandidate) ([]models.ContentGap, error) {
	log := a.config.Logger.With().Str("component", "gap_analysis").Logger()
	log.Debug().Int("candidates", len(candidates)).Int("workers", a.config.Workers).Msg("scoring candidates")

	scored := make([]models.ContentGap, len(candidates))
	keep := make([]bool, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scored[i], keep[i] = a.ScoreCandidate(candidates[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gaps := make([]models.ContentGap, 0, len(candidates))
	for i, ok := range keep {
		if !ok {
			log.Debug().Str("keyword", candidates[i].Input.Keyword).Msg("already ranking, skipped")
			continue
		}
		gaps = append(gaps, scored[i])
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].PriorityScore > gaps[j].PriorityScore
	})

	log.Info().Int("gaps", len(gaps)).Msg("gap analysis complete")
	return gaps, nil
}

// ComparePeriods normalizes both periods and reports regressions. Structural
// row errors from the normalizer are returned unchanged in the chain.
func (a *Analyzer) ComparePeriods(current, previous []models.PerformanceRow, threshold float64) ([]models.Alert, error) {
	log := a.config.Logger.With().Str("component", "anomaly_detection").Logger()

	cur, err := normalizer.GroupByEntity(current)
	if err != nil {
		return nil, fmt.Errorf("current period: %w", err)
	}
	prev, err := normalizer.GroupByEntity(previous)
	if err != nil {
		return nil, fmt.Errorf("previous period: %w", err)
	}

	alerts := a.anomaly.Detect(cur, prev, threshold)
	log.Info().
		Int("current_entities", len(cur)).
		Int("previous_entities", len(prev)).
		Int("alerts", len(alerts)).
		Msg("period comparison complete")
	return alerts, nil
}
