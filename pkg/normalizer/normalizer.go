// Package normalizer groups raw search-performance rows into per-entity
// aggregates.
package normalizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/utils"
)

// ErrInvalidRow matches every ValidationError.
var ErrInvalidRow = errors.New("invalid performance row")

// ValidationError reports a structurally broken row. These point to an
// upstream pipeline bug and are never silently corrected.
type ValidationError struct {
	Index  int
	Entity string
	Field  string
	Value  float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d (%q): invalid %s %v", e.Index, e.Entity, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRow }

// accumulator keeps running sums for one entity.
type accumulator struct {
	entity      string
	clicks      int64
	impressions int64
	// weighted is Σ position·impressions, plain is Σ position.
	weighted float64
	plain    float64
	rows     int
}

// GroupByEntity aggregates rows by entity, matching entities
// case-insensitively. Output follows first-seen order and keeps the
// first-seen spelling. CTR is recomputed from the summed totals and position
// is impression-weighted, or a plain mean when no row has impressions.
func GroupByEntity(rows []models.PerformanceRow) ([]models.AggregateMetric, error) {
	if len(rows) == 0 {
		return []models.AggregateMetric{}, nil
	}

	index := make(map[string]int)
	accs := make([]*accumulator, 0)

	for i, row := range rows {
		if err := validate(i, row); err != nil {
			return nil, err
		}

		key := utils.FoldEntity(row.Entity)
		pos, ok := index[key]
		if !ok {
			pos = len(accs)
			index[key] = pos
			accs = append(accs, &accumulator{entity: row.Entity})
		}
		acc := accs[pos]
		acc.clicks += row.Clicks
		acc.impressions += row.Impressions
		acc.weighted += row.Position * float64(row.Impressions)
		acc.plain += row.Position
		acc.rows++
	}

	out := make([]models.AggregateMetric, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.metric())
	}
	return out, nil
}

func validate(i int, row models.PerformanceRow) error {
	switch {
	case row.Impressions < 0:
		return &ValidationError{Index: i, Entity: row.Entity, Field: "impressions", Value: float64(row.Impressions)}
	case row.Clicks < 0:
		return &ValidationError{Index: i, Entity: row.Entity, Field: "clicks", Value: float64(row.Clicks)}
	case math.IsNaN(row.Position) || row.Position < 1:
		return &ValidationError{Index: i, Entity: row.Entity, Field: "position", Value: row.Position}
	}
	return nil
}

func (a *accumulator) metric() models.AggregateMetric {
	m := models.AggregateMetric{
		Entity:           a.entity,
		TotalClicks:      a.clicks,
		TotalImpressions: a.impressions,
		Rows:             a.rows,
	}
	if a.impressions > 0 {
		m.AvgCTR = float64(a.clicks) / float64(a.impressions)
		m.AvgPosition = a.weighted / float64(a.impressions)
	} else if a.rows > 0 {
		m.AvgPosition = a.plain / float64(a.rows)
	}
	return m
}

// Merge combines aggregates computed over separate batches of rows into the
// result GroupByEntity would give over all rows at once. Positions are
// re-averaged with impression weights, or row weights when an entity has no
// impressions in any batch.
func Merge(batches ...[]models.AggregateMetric) []models.AggregateMetric {
	index := make(map[string]int)
	accs := make([]*accumulator, 0)

	for _, batch := range batches {
		for _, m := range batch {
			key := utils.FoldEntity(m.Entity)
			pos, ok := index[key]
			if !ok {
				pos = len(accs)
				index[key] = pos
				accs = append(accs, &accumulator{entity: m.Entity})
			}
			acc := accs[pos]
			rows := m.Rows
			if rows <= 0 {
				rows = 1
			}
			acc.clicks += m.TotalClicks
			acc.impressions += m.TotalImpressions
			acc.weighted += m.AvgPosition * float64(m.TotalImpressions)
			// plain is only read when every batch had zero impressions, and
			// then each AvgPosition is itself a plain mean.
			acc.plain += m.AvgPosition * float64(rows)
			acc.rows += rows
		}
	}

	out := make([]models.AggregateMetric, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.metric())
	}
	return out
}
