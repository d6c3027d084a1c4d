package utils

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
)

// Common stop words for text processing
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
	"this": true, "but": true, "they": true, "have": true, "had": true, "you": true,
	"were": true, "been": true, "their": true, "she": true, "which": true, "do": true,
	"or": true, "if": true, "not": true, "what": true, "there": true, "can": true,
	"out": true, "up": true, "one": true, "about": true, "more": true, "so": true,
	"said": true, "when": true, "some": true, "into": true, "them": true, "then": true,
	"two": true, "how": true, "her": true, "than": true, "first": true, "way": true,
	"even": true, "back": true, "any": true, "over": true, "where": true, "just": true,
	"your": true, "our": true, "all": true, "also": true, "most": true, "best": true,
}

var space = regexp.MustCompile(`\s+`)

// CleanText removes extra whitespace and normalizes text
func CleanText(text string) string {
	return strings.TrimSpace(space.ReplaceAllString(text, " "))
}

// RemoveStopWords filters out common stop words from text
func RemoveStopWords(text string) string {
	words := strings.Fields(strings.ToLower(text))
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Remove punctuation from word edges
		word = strings.Trim(word, ".,!?;:'\"()[]")
		if !stopWords[word] && len(word) > 0 {
			filtered = append(filtered, word)
		}
	}

	return strings.Join(filtered, " ")
}

// ExtractKeywords returns the most frequent non stop-word terms of text,
// most frequent first. Ties are broken alphabetically.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	wordCount := make(map[string]int)
	for _, word := range strings.Fields(RemoveStopWords(text)) {
		if len(word) > 2 { // Skip very short words
			wordCount[word]++
		}
	}

	type kv struct {
		Key   string
		Value int
	}
	sorted := make([]kv, 0, len(wordCount))
	for k, v := range wordCount {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Key < sorted[j].Key
	})

	keywords := make([]string, 0, limit)
	for i := 0; i < limit && i < len(sorted); i++ {
		keywords = append(keywords, sorted[i].Key)
	}
	return keywords
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// FoldEntity returns the key used to match queries and pages regardless of
// case. It applies full Unicode case folding, nothing else.
func FoldEntity(entity string) string {
	return cases.Fold().String(entity)
}

// RootDomain returns the eTLD+1 of a page URL, e.g. "blog.example.co.uk"
// becomes "example.co.uk". Bare hostnames are accepted.
func RootDomain(rawURL string) string {
	host := rawURL
	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else if idx := strings.IndexAny(host, "/:"); idx > 0 {
		host = host[:idx]
	}
	host = strings.ToLower(host)

	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return root
}
