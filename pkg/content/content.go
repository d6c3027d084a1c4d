// Package content estimates what a page needs to compete for a keyword.
package content

import (
	"math"
	"strings"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
	"github.com/amosWeiskopf/serpsmith/pkg/utils"
)

// Analyzer derives content requirements from difficulty.
type Analyzer struct {
	model tuning.ContentModel
}

// New creates an Analyzer.
func New(model tuning.ContentModel) *Analyzer {
	return &Analyzer{model: model}
}

var defaultAnalyzer = New(tuning.DefaultContent())

// AnalyzeContentQuality returns the default content requirements for a
// difficulty score.
func AnalyzeContentQuality(difficulty int) models.ContentQuality {
	return defaultAnalyzer.Analyze(difficulty)
}

// Analyze scales the word count and topic requirements with difficulty,
// which is clamped to [0,100].
func (a *Analyzer) Analyze(difficulty int) models.ContentQuality {
	d := float64(difficulty)
	d = math.Max(0, math.Min(100, d))

	return models.ContentQuality{
		RequiredWordCount: int(math.Round(float64(a.model.BaseWordCount) + d*a.model.WordsPerDifficulty)),
		RequiredTopics:    a.model.BaseTopics + int(math.Round(d*a.model.TopicsPerDifficulty)),
	}
}

// Coverage compares a page's topics against the competitors' topics.
type Coverage struct {
	Topics  []string `json:"topics"`
	Covered []string `json:"covered"`
	Missing []string `json:"missing"`
	Ratio   float64  `json:"ratio"`
}

// TopicCoverage extracts the limit most frequent topics across competitor
// texts and reports which of them appear in own. Ratio is 1 when the
// competitors yield no topics.
func TopicCoverage(own string, competitors []string, limit int) Coverage {
	topics := utils.ExtractKeywords(strings.Join(competitors, " "), limit)
	cov := Coverage{Topics: topics, Ratio: 1}
	if len(topics) == 0 {
		return cov
	}

	present := make(map[string]bool)
	for _, w := range strings.Fields(utils.RemoveStopWords(own)) {
		present[w] = true
	}
	for _, topic := range topics {
		if present[topic] {
			cov.Covered = append(cov.Covered, topic)
		} else {
			cov.Missing = append(cov.Missing, topic)
		}
	}
	cov.Ratio = float64(len(cov.Covered)) / float64(len(topics))
	return cov
}
