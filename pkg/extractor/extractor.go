// Package extractor reads locally saved competitor pages and derives the
// content signals of a Benchmark from them.
package extractor

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/utils"
)

// ErrEmptyPage is returned when a document yields no text at all.
var ErrEmptyPage = errors.New("page has no extractable text")

// Extractor handles content extraction from HTML
type Extractor struct {
	// minWords below which the trafilatura result is discarded in favour
	// of the plain text walk.
	minWords int
}

// New creates a new Extractor instance
func New() *Extractor {
	return &Extractor{minWords: 25}
}

// Page holds the content signals of one competitor document.
type Page struct {
	URL         string   `json:"url"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Headings    []string `json:"headings"`
	Text        string   `json:"-"`
	WordCount   int      `json:"word_count"`
}

// Analyze extracts the main text, metadata and subheadings of a document.
// The page URL falls back to the canonical link when source is empty.
func (e *Extractor) Analyze(source, htmlContent string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	meta := extractMetadata(doc)
	page := &Page{
		URL:         source,
		Title:       meta.title,
		Description: meta.description,
		Headings:    extractHeadings(doc),
	}
	if page.URL == "" {
		page.URL = meta.canonical
	}
	if page.URL != "" {
		page.Domain = utils.RootDomain(page.URL)
	}

	text, err := e.ExtractText(htmlContent)
	if err != nil || utils.WordCount(text) < e.minWords {
		text = VisibleText(doc)
	}
	page.Text = utils.CleanText(text)
	page.WordCount = utils.WordCount(page.Text)
	if page.WordCount == 0 {
		return page, ErrEmptyPage
	}
	return page, nil
}

// ExtractText extracts clean text from HTML using trafilatura
func (e *Extractor) ExtractText(htmlContent string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(htmlContent), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return result.ContentText, nil
}

type metadata struct {
	title       string
	description string
	canonical   string
}

func extractMetadata(doc *html.Node) metadata {
	var m metadata
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if m.title == "" {
					m.title = utils.CleanText(textOf(n))
				}
			case "meta":
				if strings.EqualFold(attr(n, "name"), "description") {
					m.description = utils.CleanText(attr(n, "content"))
				}
			case "link":
				if strings.EqualFold(attr(n, "rel"), "canonical") {
					m.canonical = strings.TrimSpace(attr(n, "href"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return m
}

func extractHeadings(doc *html.Node) []string {
	var headings []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h2" || n.Data == "h3") {
			if t := utils.CleanText(textOf(n)); t != "" {
				headings = append(headings, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return headings
}

var skipped = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true, "svg": true,
}

// VisibleText returns the text of every node a browser would render.
func VisibleText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return utils.CleanText(sb.String())
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// BuildBenchmark averages the content length of the given pages. Authority
// and backlink averages come from an external link index and are passed
// through after clamping to non-negative values.
func BuildBenchmark(pages []*Page, authority float64, backlinks int64) models.Benchmark {
	if math.IsNaN(authority) || authority < 0 {
		authority = 0
	}
	if backlinks < 0 {
		backlinks = 0
	}

	b := models.Benchmark{
		AvgDomainAuthority: authority,
		AvgBacklinks:       backlinks,
	}
	var words int64
	for _, p := range pages {
		if p == nil {
			continue
		}
		words += int64(p.WordCount)
		b.TopRankingPages++
	}
	if b.TopRankingPages > 0 {
		b.AvgContentLength = int64(math.Round(float64(words) / float64(b.TopRankingPages)))
	}
	return b
}

// Domains lists the distinct root domains of pages, sorted.
func Domains(pages []*Page) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range pages {
		if p == nil || p.Domain == "" || seen[p.Domain] {
			continue
		}
		seen[p.Domain] = true
		out = append(out, p.Domain)
	}
	sort.Strings(out)
	return out
}

// Texts returns the extracted text of every page, for topic coverage.
func Texts(pages []*Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if p != nil {
			out = append(out, p.Text)
		}
	}
	return out
}
