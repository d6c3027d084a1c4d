// Package tuning holds the constants of the scoring model. Every scorer in
// the engine reads its weights from one of these sections so the model can be
// tuned from configuration without touching algorithm code.
package tuning

import (
	"errors"
	"fmt"
	"math"
)

// Model is the full set of scoring constants.
type Model struct {
	Difficulty DifficultyModel `mapstructure:"difficulty" yaml:"difficulty"`
	CTR        CTRModel        `mapstructure:"ctr" yaml:"ctr"`
	Content    ContentModel    `mapstructure:"content" yaml:"content"`
	Anomaly    AnomalyModel    `mapstructure:"anomaly" yaml:"anomaly"`
	Gap        GapModel        `mapstructure:"gap" yaml:"gap"`
}

// DifficultyModel weights the four difficulty sub-scores.
type DifficultyModel struct {
	CompetitionWeight float64 `mapstructure:"competition_weight" yaml:"competition_weight"`
	AuthorityWeight   float64 `mapstructure:"authority_weight" yaml:"authority_weight"`
	BacklinkWeight    float64 `mapstructure:"backlink_weight" yaml:"backlink_weight"`
	ContentWeight     float64 `mapstructure:"content_weight" yaml:"content_weight"`

	// BacklinkLogScale multiplies log10(backlinks+1).
	BacklinkLogScale float64 `mapstructure:"backlink_log_scale" yaml:"backlink_log_scale"`
	// ContentLengthDivisor turns an average word count into a 0-100 score.
	ContentLengthDivisor float64 `mapstructure:"content_length_divisor" yaml:"content_length_divisor"`

	// Tier cut-offs: difficulty below MediumAt is low, below HighAt is
	// medium, below VeryHighAt is high.
	MediumAt   int `mapstructure:"medium_at" yaml:"medium_at"`
	HighAt     int `mapstructure:"high_at" yaml:"high_at"`
	VeryHighAt int `mapstructure:"very_high_at" yaml:"very_high_at"`

	MaxMonthsToRank int `mapstructure:"max_months_to_rank" yaml:"max_months_to_rank"`
}

// CTRModel is the position curve and the SERP adjustments.
type CTRModel struct {
	// PositionCurve[i] is the baseline CTR at position i+1.
	PositionCurve []float64 `mapstructure:"position_curve" yaml:"position_curve"`
	// TailCTR applies past the end of the curve.
	TailCTR float64 `mapstructure:"tail_ctr" yaml:"tail_ctr"`

	RichSnippetBoost   float64 `mapstructure:"rich_snippet_boost" yaml:"rich_snippet_boost"`
	SitelinksBoost     float64 `mapstructure:"sitelinks_boost" yaml:"sitelinks_boost"`
	SerpFeaturePenalty float64 `mapstructure:"serp_feature_penalty" yaml:"serp_feature_penalty"`
	MaxCTR             float64 `mapstructure:"max_ctr" yaml:"max_ctr"`
}

// ContentModel scales content requirements with difficulty.
type ContentModel struct {
	BaseWordCount      int     `mapstructure:"base_word_count" yaml:"base_word_count"`
	WordsPerDifficulty float64 `mapstructure:"words_per_difficulty" yaml:"words_per_difficulty"`
	BaseTopics         int     `mapstructure:"base_topics" yaml:"base_topics"`
	// TopicsPerDifficulty is added per difficulty point.
	TopicsPerDifficulty float64 `mapstructure:"topics_per_difficulty" yaml:"topics_per_difficulty"`
}

// AnomalyModel holds the regression thresholds.
type AnomalyModel struct {
	DefaultThreshold float64 `mapstructure:"default_threshold" yaml:"default_threshold"`
	HighSeverity     float64 `mapstructure:"high_severity" yaml:"high_severity"`
	CTREpsilon       float64 `mapstructure:"ctr_epsilon" yaml:"ctr_epsilon"`
}

// GapModel weights the content-gap priority score.
type GapModel struct {
	OpportunityBase     float64 `mapstructure:"opportunity_base" yaml:"opportunity_base"`
	UnderperformingBase float64 `mapstructure:"underperforming_base" yaml:"underperforming_base"`
	MissingBase         float64 `mapstructure:"missing_base" yaml:"missing_base"`

	DifficultyWeight float64 `mapstructure:"difficulty_weight" yaml:"difficulty_weight"`
	VolumeWeight     float64 `mapstructure:"volume_weight" yaml:"volume_weight"`
	PositionWeight   float64 `mapstructure:"position_weight" yaml:"position_weight"`
	ClicksWeight     float64 `mapstructure:"clicks_weight" yaml:"clicks_weight"`

	// VolumeCeiling and ClicksCeiling are the values that earn a full sub-score.
	VolumeCeiling float64 `mapstructure:"volume_ceiling" yaml:"volume_ceiling"`
	ClicksCeiling float64 `mapstructure:"clicks_ceiling" yaml:"clicks_ceiling"`
	// PositionHorizon is the last competitor position that earns points.
	PositionHorizon int `mapstructure:"position_horizon" yaml:"position_horizon"`
	// TopPositions marks the rankings that count as already won.
	TopPositions int `mapstructure:"top_positions" yaml:"top_positions"`
}

// Default returns the production scoring model.
func Default() Model {
	return Model{
		Difficulty: DefaultDifficulty(),
		CTR:        DefaultCTR(),
		Content:    DefaultContent(),
		Anomaly:    DefaultAnomaly(),
		Gap:        DefaultGap(),
	}
}

func DefaultDifficulty() DifficultyModel {
	return DifficultyModel{
		CompetitionWeight:    0.35,
		AuthorityWeight:      0.30,
		BacklinkWeight:       0.20,
		ContentWeight:        0.15,
		BacklinkLogScale:     20,
		ContentLengthDivisor: 30,
		MediumAt:             30,
		HighAt:               60,
		VeryHighAt:           80,
		MaxMonthsToRank:      12,
	}
}

func DefaultCTR() CTRModel {
	return CTRModel{
		PositionCurve: []float64{
			0.28, 0.15, 0.10, 0.07, 0.05,
			0.04, 0.03, 0.025, 0.02, 0.018,
			0.015, 0.013, 0.012, 0.011, 0.010,
			0.009, 0.0085, 0.008, 0.0075, 0.007,
		},
		TailCTR:            0.005,
		RichSnippetBoost:   0.15,
		SitelinksBoost:     0.08,
		SerpFeaturePenalty: 0.05,
		MaxCTR:             0.35,
	}
}

func DefaultContent() ContentModel {
	return ContentModel{
		BaseWordCount:       2000,
		WordsPerDifficulty:  20,
		BaseTopics:          5,
		TopicsPerDifficulty: 0.1,
	}
}

func DefaultAnomaly() AnomalyModel {
	return AnomalyModel{
		DefaultThreshold: 0.2,
		HighSeverity:     0.5,
		CTREpsilon:       1e-9,
	}
}

func DefaultGap() GapModel {
	return GapModel{
		OpportunityBase:     30,
		UnderperformingBase: 25,
		MissingBase:         20,
		DifficultyWeight:    0.25,
		VolumeWeight:        0.2,
		PositionWeight:      0.15,
		ClicksWeight:        0.1,
		VolumeCeiling:       10000,
		ClicksCeiling:       1000,
		PositionHorizon:     20,
		TopPositions:        3,
	}
}

// ErrInvalidModel is returned by Validate.
var ErrInvalidModel = errors.New("invalid scoring model")

// Validate reports inconsistent constants. Weights of each composite must
// be non-negative and sum to at most 1, and the CTR curve must not increase.
func (m Model) Validate() error {
	d := m.Difficulty
	if err := checkWeights("difficulty", d.CompetitionWeight, d.AuthorityWeight, d.BacklinkWeight, d.ContentWeight); err != nil {
		return err
	}
	if !(d.MediumAt < d.HighAt && d.HighAt < d.VeryHighAt) {
		return fmt.Errorf("%w: difficulty tiers must be strictly increasing", ErrInvalidModel)
	}
	if d.ContentLengthDivisor <= 0 {
		return fmt.Errorf("%w: content_length_divisor must be positive", ErrInvalidModel)
	}

	c := m.CTR
	if len(c.PositionCurve) == 0 {
		return fmt.Errorf("%w: ctr position_curve is empty", ErrInvalidModel)
	}
	prev := math.Inf(1)
	for i, v := range c.PositionCurve {
		if v < 0 || v > prev {
			return fmt.Errorf("%w: ctr position_curve[%d]=%v breaks the non-increasing curve", ErrInvalidModel, i, v)
		}
		prev = v
	}
	if c.TailCTR < 0 || c.TailCTR > prev {
		return fmt.Errorf("%w: ctr tail_ctr must not exceed the last curve value", ErrInvalidModel)
	}
	if c.MaxCTR <= 0 || c.MaxCTR > 1 {
		return fmt.Errorf("%w: ctr max_ctr must be in (0,1]", ErrInvalidModel)
	}
	if c.SerpFeaturePenalty < 0 || c.SerpFeaturePenalty >= 1 {
		return fmt.Errorf("%w: ctr serp_feature_penalty must be in [0,1)", ErrInvalidModel)
	}

	a := m.Anomaly
	if a.DefaultThreshold <= 0 || a.DefaultThreshold >= 1 {
		return fmt.Errorf("%w: anomaly default_threshold must be in (0,1)", ErrInvalidModel)
	}
	if a.HighSeverity <= 0 || a.CTREpsilon <= 0 {
		return fmt.Errorf("%w: anomaly high_severity and ctr_epsilon must be positive", ErrInvalidModel)
	}

	g := m.Gap
	if err := checkWeights("gap", g.DifficultyWeight, g.VolumeWeight, g.PositionWeight, g.ClicksWeight); err != nil {
		return err
	}
	if g.VolumeCeiling <= 0 || g.ClicksCeiling <= 0 || g.PositionHorizon <= 0 {
		return fmt.Errorf("%w: gap ceilings and position_horizon must be positive", ErrInvalidModel)
	}
	return nil
}

func checkWeights(section string, weights ...float64) error {
	sum := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: %s weights must be non-negative", ErrInvalidModel, section)
		}
		sum += w
	}
	if sum > 1+1e-9 {
		return fmt.Errorf("%w: %s weights sum to %.3f, want <= 1", ErrInvalidModel, section, sum)
	}
	return nil
}
