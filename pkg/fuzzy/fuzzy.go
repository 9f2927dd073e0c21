package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings
// This measures how many single-character edits (insertions, deletions, or substitutions)
// are required to change one string into another
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m, n := len(r1), len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows are enough
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold returns the typo tolerance for a query of the given length
func Threshold(query string) int {
	switch l := len([]rune(normalizeString(query))); {
	case l <= 3:
		return 0
	case l >= 8:
		return 2
	default:
		return 1
	}
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
// threshold is the maximum allowed edit distance per word
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" {
		return true
	}

	// If query is contained in text, it's a match
	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}
	return false
}

// PostFields are the searchable parts of a blog post
type PostFields struct {
	Title   string
	Tags    []string
	Excerpt string
	Content string
}

// RelevanceScore scores how relevant a post is to a query.
// Higher score = more relevant, zero means no match.
func RelevanceScore(query string, post PostFields) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}
	threshold := Threshold(query)
	score := 0.0

	// Title carries the most weight
	title := normalizeString(post.Title)
	if strings.Contains(title, query) {
		score += 100.0
		if containsWord(title, query) {
			score += 50.0
		}
	} else {
		for _, word := range strings.Fields(title) {
			if dist := LevenshteinDistance(query, word); dist <= threshold {
				score += 50.0 - float64(dist)*15
			} else if strings.HasPrefix(word, query) {
				score += 40.0
			}
		}
	}

	for _, tag := range post.Tags {
		tag = normalizeString(tag)
		if tag == query {
			score += 80.0
		} else if LevenshteinDistance(query, tag) <= threshold || strings.HasPrefix(tag, query) {
			score += 30.0
		}
	}

	if FuzzyMatch(query, post.Excerpt, threshold) {
		score += 20.0
	}

	// Body only counts for exact hits, first 2000 chars
	content := post.Content
	if len(content) > 2000 {
		content = content[:2000]
	}
	if strings.Contains(normalizeString(content), query) {
		score += 10.0
	}

	return score
}

// Helper functions

// normalizeString lowercases, strips accents and collapses whitespace
func normalizeString(s string) string {
	s = removeAccents(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents removes diacritical marks so "café" matches "cafe"
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// đ has no decomposition
	return strings.ReplaceAll(out, "đ", "d")
}
