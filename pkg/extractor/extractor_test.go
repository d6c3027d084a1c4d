package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const shortPage = `<!DOCTYPE html>
<html>
<head>
	<title>Trail Running Shoes</title>
	<meta name="description" content="Pick the right trail shoe.">
	<link rel="canonical" href="https://blog.example.co.uk/trail-shoes">
	<style>body { color: red }</style>
</head>
<body>
	<script>var tracking = "ignored words here";</script>
	<h1>Trail shoes</h1>
	<h2>Grip</h2>
	<p>Lugs matter on mud.</p>
	<h3>Drop <em>and</em> stack</h3>
	<p>Lower drop feels closer to the ground.</p>
</body>
</html>`

func TestAnalyzeShortPageUsesVisibleText(t *testing.T) {
	page, err := New().Analyze("", shortPage)
	require.NoError(t, err)

	assert.Equal(t, "Trail Running Shoes", page.Title)
	assert.Equal(t, "Pick the right trail shoe.", page.Description)
	assert.Equal(t, "https://blog.example.co.uk/trail-shoes", page.URL)
	assert.Equal(t, "example.co.uk", page.Domain)
	assert.Equal(t, []string{"Grip", "Drop and stack"}, page.Headings)
	assert.NotContains(t, page.Text, "tracking")
	assert.NotContains(t, page.Text, "color")
	assert.Equal(t, 17, page.WordCount)
}

func TestAnalyzePrefersGivenSource(t *testing.T) {
	page, err := New().Analyze("https://www.rival.com/a", shortPage)
	require.NoError(t, err)
	assert.Equal(t, "rival.com", page.Domain)
}

func TestAnalyzeEmptyPage(t *testing.T) {
	page, err := New().Analyze("", "<html><head><title>x</title></head><body></body></html>")
	assert.ErrorIs(t, err, ErrEmptyPage)
	require.NotNil(t, page)
	assert.Equal(t, 0, page.WordCount)
}

func TestVisibleText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<p>one <b>two</b></p><noscript>three</noscript><div>four</div>"))
	require.NoError(t, err)
	assert.Equal(t, "one two four", VisibleText(doc))
}

func TestBuildBenchmark(t *testing.T) {
	pages := []*Page{
		{Domain: "b.com", WordCount: 1000},
		{Domain: "a.com", WordCount: 2001},
		nil,
		{Domain: "a.com", WordCount: 3000},
	}

	b := BuildBenchmark(pages, 42.5, 300)
	assert.Equal(t, 42.5, b.AvgDomainAuthority)
	assert.Equal(t, int64(300), b.AvgBacklinks)
	assert.Equal(t, int64(2000), b.AvgContentLength)
	assert.Equal(t, int64(3), b.TopRankingPages)

	assert.Equal(t, []string{"a.com", "b.com"}, Domains(pages))
	assert.Len(t, Texts(pages), 3)
}

func TestBuildBenchmarkClampsInputs(t *testing.T) {
	b := BuildBenchmark(nil, -3, -10)
	assert.Zero(t, b.AvgDomainAuthority)
	assert.Zero(t, b.AvgBacklinks)
	assert.Zero(t, b.AvgContentLength)
	assert.Zero(t, b.TopRankingPages)
}
