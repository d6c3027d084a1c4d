package models

// GapType classifies a content gap.
type GapType string

const (
	GapMissing         GapType = "missing"
	GapUnderperforming GapType = "underperforming"
	GapOpportunity     GapType = "opportunity"
)

// GapCandidate is a keyword a competitor ranks for, with everything needed
// to score it as a content gap.
type GapCandidate struct {
	Input             KeywordDifficultyInput `json:"input" yaml:"input"`
	Benchmark         Benchmark              `json:"benchmark" yaml:"benchmark"`
	CompetitorRanking int                    `json:"competitor_ranking" yaml:"competitor_ranking"`
	YourRanking       *int                   `json:"your_ranking,omitempty" yaml:"your_ranking,omitempty"`
	HasRichSnippet    bool                   `json:"has_rich_snippet" yaml:"has_rich_snippet"`
	HasSitelinks      bool                   `json:"has_sitelinks" yaml:"has_sitelinks"`
	SerpFeatures      []string               `json:"serp_features" yaml:"serp_features"`
}

// ContentGap is a scored content-gap opportunity.
type ContentGap struct {
	Keyword             string           `json:"keyword"`
	CompetitorRanking   int              `json:"competitor_ranking"`
	YourRanking         *int             `json:"your_ranking"`
	SearchVolume        int64            `json:"search_volume"`
	Difficulty          int              `json:"difficulty"`
	DifficultyLevel     CompetitionLevel `json:"difficulty_level"`
	EstimatedTimeToRank int              `json:"estimated_time_to_rank"`
	PotentialClicks     int64            `json:"potential_clicks"`
	RequiredBacklinks   int64            `json:"required_backlinks"`
	RequiredWordCount   int              `json:"required_word_count"`
	GapType             GapType          `json:"gap_type"`
	PriorityScore       int              `json:"priority_score"`
}
