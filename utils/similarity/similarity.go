package similarity

import (
	"strings"
	"unicode"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/mozillazg/go-unidecode"
)

// Similarity scores two titles between 0.0 (unrelated) and 1.0 (identical
// after normalisation). It takes the better of the edit-distance ratio and
// the share of query words found in the candidate, so a video called
// "DUNE | Official Trailer (2021)" still scores well against
// "Dune trailer 2021".
func Similarity(candidate, query string) float64 {
	c := Normalize(candidate)
	q := Normalize(query)

	if c == q {
		return 1.0
	}
	if c == "" || q == "" {
		return 0.0
	}

	maxLen := max(len([]rune(c)), len([]rune(q)))
	editScore := 1.0 - float64(levenshtein.Distance(c, q))/float64(maxLen)

	return max(editScore, coverage(c, q))
}

// Best returns the index of the candidate most similar to query. Ties go to
// the earlier candidate; -1 means no candidates.
func Best(candidates []string, query string) int {
	best := -1
	bestScore := -1.0
	for i, candidate := range candidates {
		if score := Similarity(candidate, query); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// coverage is the fraction of query words present in the candidate.
func coverage(candidate, query string) float64 {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(candidate) {
		words[w] = struct{}{}
	}

	queryWords := strings.Fields(query)
	hits := 0
	for _, w := range queryWords {
		if _, ok := words[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryWords))
}

// Normalize romanises, lowercases and strips punctuation so "Amélie" and
// "Amelie", or "Me & You" and "Me and You", compare equal.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "&", " and ")
	s = unidecode.Unidecode(s)

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else if unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == '|' || r == ':' {
			result.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(result.String()), " ")
}
