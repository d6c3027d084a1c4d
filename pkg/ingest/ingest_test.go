package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/serpsmith/internal/models"
)

func TestDecodeRowsSearchConsoleEnvelope(t *testing.T) {
	body := `{
		"rows": [
			{"keys": ["running shoes"], "clicks": 30, "impressions": 1000, "ctr": 0.03, "position": 4.2},
			{"keys": ["trail shoes", "2026-01-01"], "clicks": 5.0, "impressions": 100, "ctr": 0.05, "position": 2}
		],
		"responseAggregationType": "byProperty"
	}`

	rows, err := DecodeRows(strings.NewReader(body), FormatJSON)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.PerformanceRow{Entity: "running shoes", Clicks: 30, Impressions: 1000, CTR: 0.03, Position: 4.2}, rows[0])
	assert.Equal(t, "trail shoes", rows[1].Entity)
	assert.Equal(t, int64(5), rows[1].Clicks)
}

func TestDecodeRowsPlainList(t *testing.T) {
	body := `[{"entity": "kw", "clicks": 1, "impressions": 10, "ctr": 0.1, "position": 3},
	          {"page": "https://example.com/a", "clicks": 0, "impressions": 4, "ctr": 0, "position": 12}]`

	rows, err := DecodeRows(strings.NewReader(body), FormatJSON)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "https://example.com/a", rows[1].Entity)
}

func TestDecodeRowsRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `[{"entity": "kw", "clicks": 1, "impressions": 2, "position": 1, "extra": true}]`},
		{"fractional clicks", `[{"entity": "kw", "clicks": 1.5, "impressions": 2, "position": 1}]`},
		{"string count", `[{"entity": "kw", "clicks": "many", "impressions": 2, "position": 1}]`},
		{"missing entity", `[{"clicks": 1, "impressions": 2, "position": 1}]`},
		{"trailing garbage", `[] []`},
		{"not json", `rows: []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows(strings.NewReader(tt.body), FormatJSON)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeRowsKeepsNegativeCountsForNormalizer(t *testing.T) {
	rows, err := DecodeRows(strings.NewReader(`[{"entity": "kw", "clicks": 0, "impressions": -3, "position": 1}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), rows[0].Impressions)
}

func TestDecodeRowsYAML(t *testing.T) {
	list := `
- entity: kw
  clicks: 4
  impressions: 40
  ctr: 0.1
  position: 2.5
`
	rows, err := DecodeRows(strings.NewReader(list), FormatYAML)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.5, rows[0].Position)

	envelope := `
rows:
  - keys: [kw]
    clicks: 4
    impressions: 40
    ctr: 0.1
    position: 2
`
	rows, err = DecodeRows(strings.NewReader(envelope), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "kw", rows[0].Entity)

	_, err = DecodeRows(strings.NewReader("- entity: kw\n  bogus: 1\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRowsCSV(t *testing.T) {
	body := "Query,Clicks,Impressions,CTR,Position\nrunning shoes,30,1000,3%,4.2\ntrail shoes,5,100,0.05,2\n"

	rows, err := DecodeRows(strings.NewReader(body), FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "running shoes", rows[0].Entity)
	assert.InDelta(t, 0.03, rows[0].CTR, 1e-12)
	assert.InDelta(t, 0.05, rows[1].CTR, 1e-12)

	_, err = DecodeRows(strings.NewReader("entity,clicks\nkw,1\n"), FormatCSV)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodeRows(strings.NewReader("entity,clicks,impressions,ctr,position\nkw,x,1,0,1\n"), FormatCSV)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRowsEmpty(t *testing.T) {
	rows, err := DecodeRows(strings.NewReader("  "), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeCandidates(t *testing.T) {
	body := `[{
		"input": {"keyword": "trail shoes", "search_volume": 2400, "cpc": 1.2, "competition": 0.4},
		"benchmark": {"avg_domain_authority": 45, "avg_backlinks": 120, "avg_content_length": 1800, "top_ranking_pages": 10},
		"competitor_ranking": 3,
		"your_ranking": 11,
		"serp_features": ["people_also_ask"]
	}]`

	got, err := DecodeCandidates(strings.NewReader(body), FormatJSON)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "trail shoes", got[0].Input.Keyword)
	require.NotNil(t, got[0].YourRanking)
	assert.Equal(t, 11, *got[0].YourRanking)
	assert.Equal(t, int64(120), got[0].Benchmark.AvgBacklinks)

	_, err = DecodeCandidates(strings.NewReader(`[{"input": {"keyword": ""}}]`), FormatJSON)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeCandidatesYAML(t *testing.T) {
	body := `
- input:
    keyword: trail shoes
    search_volume: 2400
    competition: 0.4
  benchmark:
    avg_domain_authority: 45
  competitor_ranking: 3
`
	got, err := DecodeCandidates(strings.NewReader(body), FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].YourRanking)
	assert.Equal(t, 45.0, got[0].Benchmark.AvgDomainAuthority)
}

func TestDecodeBenchmark(t *testing.T) {
	b, err := DecodeBenchmark(strings.NewReader(`{"avg_domain_authority": 60, "avg_backlinks": 500, "avg_content_length": 2500, "top_ranking_pages": 10}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, models.Benchmark{AvgDomainAuthority: 60, AvgBacklinks: 500, AvgContentLength: 2500, TopRankingPages: 10}, b)

	_, err = DecodeBenchmark(strings.NewReader(`{"authority": 60}`), FormatJSON)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeBenchmarkRejectsUnsupportedFormat(t *testing.T) {
	body := `{"avg_domain_authority": 60}`
	for _, format := range []Format{FormatCSV, "xml"} {
		_, err := DecodeBenchmark(strings.NewReader(body), format)
		assert.ErrorIs(t, err, ErrDecode, "format %s", format)
	}

	b, err := DecodeBenchmark(strings.NewReader("avg_domain_authority: 60\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 60.0, b.AvgDomainAuthority)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("rows.YML"))
	assert.Equal(t, FormatCSV, FormatFromPath("/tmp/export.csv"))
	assert.Equal(t, FormatJSON, FormatFromPath("rows.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("rows"))
}
