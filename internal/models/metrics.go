package models

// PerformanceRow is one search-performance observation for a query or a page.
type PerformanceRow struct {
	Entity      string  `json:"entity" yaml:"entity"`
	Clicks      int64   `json:"clicks" yaml:"clicks"`
	Impressions int64   `json:"impressions" yaml:"impressions"`
	CTR         float64 `json:"ctr" yaml:"ctr"`
	Position    float64 `json:"position" yaml:"position"`
}

// AggregateMetric summarizes all rows sharing an entity.
type AggregateMetric struct {
	Entity           string  `json:"entity"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalImpressions int64   `json:"total_impressions"`
	AvgCTR           float64 `json:"avg_ctr"`
	AvgPosition      float64 `json:"avg_position"`
	// Rows is the number of source rows, used as the weight when
	// re-merging aggregates that carry no impressions.
	Rows int `json:"rows"`
}

// KeywordDifficultyInput carries the demand and competition signals of a keyword.
type KeywordDifficultyInput struct {
	Keyword      string  `json:"keyword" yaml:"keyword"`
	SearchVolume int64   `json:"search_volume" yaml:"search_volume"`
	CPC          float64 `json:"cpc" yaml:"cpc"`
	Competition  float64 `json:"competition" yaml:"competition"`
}

// Benchmark describes the pages currently ranking for a keyword.
type Benchmark struct {
	AvgDomainAuthority float64 `json:"avg_domain_authority" yaml:"avg_domain_authority"`
	AvgBacklinks       int64   `json:"avg_backlinks" yaml:"avg_backlinks"`
	AvgContentLength   int64   `json:"avg_content_length" yaml:"avg_content_length"`
	TopRankingPages    int64   `json:"top_ranking_pages" yaml:"top_ranking_pages"`
}

// CompetitionLevel is the qualitative tier of a difficulty score.
type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "low"
	CompetitionMedium   CompetitionLevel = "medium"
	CompetitionHigh     CompetitionLevel = "high"
	CompetitionVeryHigh CompetitionLevel = "very_high"
)

// DifficultyResult is the output of the keyword difficulty scorer.
type DifficultyResult struct {
	Difficulty          int              `json:"difficulty"`
	CompetitionLevel    CompetitionLevel `json:"competition_level"`
	EstimatedTimeToRank int              `json:"estimated_time_to_rank"`
	RequiredBacklinks   int64            `json:"required_backlinks"`
}

// CtrInput describes a keyword at a SERP position.
type CtrInput struct {
	CurrentPosition float64  `json:"current_position" yaml:"current_position"`
	SearchVolume    int64    `json:"search_volume" yaml:"search_volume"`
	HasRichSnippet  bool     `json:"has_rich_snippet" yaml:"has_rich_snippet"`
	HasSitelinks    bool     `json:"has_sitelinks" yaml:"has_sitelinks"`
	SerpFeatures    []string `json:"serp_features" yaml:"serp_features"`
}

// CtrResult holds the predicted traffic for a CtrInput.
type CtrResult struct {
	PotentialClicks int64   `json:"potential_clicks"`
	BaselineCTR     float64 `json:"baseline_ctr"`
	AdjustedCTR     float64 `json:"adjusted_ctr"`
}

// ContentQuality lists the production requirements for a piece of content.
type ContentQuality struct {
	RequiredWordCount int `json:"required_word_count"`
	RequiredTopics    int `json:"required_topics"`
}
