// Package search implements the two directory query modes: plain substring
// filtering and fuzzy token scoring with bounded edit distance. Batches are
// tens to low hundreds of rows, so the scoring deliberately favors
// simplicity over pruning; the full DP table is computed for every
// token/chunk pair.
package search

import (
	"sort"
	"strings"
	"unicode"
)

// Fuzzy scoring weights: an exact substring hit outranks any approximate
// match, and a distance-1 chunk outranks distance-2.
const (
	scoreExact     = 3
	scoreDistance1 = 2
	scoreDistance2 = 1
)

// Doc is one searchable record. Fields carries the individual cell values
// for exact mode; Text is the concatenated searchable text for fuzzy mode.
// Both must be supplied lowercased by the caller.
type Doc struct {
	Fields []string
	Text   string
}

// Match points back into the doc slice. Score is 0 in exact mode.
type Match struct {
	Index     int
	Score     int
	FuzzyOnly bool
}

// Exact returns docs containing the full query as a substring of any single
// field, preserving batch order. An empty query matches everything.
func Exact(docs []Doc, query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []Match
	for i, d := range docs {
		if query == "" || containsAny(d.Fields, query) {
			out = append(out, Match{Index: i})
		}
	}
	return out
}

func containsAny(fields []string, query string) bool {
	for _, f := range fields {
		if strings.Contains(f, query) {
			return true
		}
	}
	return false
}

// Fuzzy tokenizes the query on whitespace and scores every doc: +3 per
// token found as a substring of the doc text, otherwise +2 or +1 when the
// token sits within edit distance 1 or 2 of some chunk of the text. Docs
// scoring zero are excluded. Results are sorted by descending score; the
// sort is stable so ties keep batch order. A doc whose every point came
// from approximate matches is flagged FuzzyOnly.
func Fuzzy(docs []Doc, query string) []Match {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return Exact(docs, "")
	}

	var out []Match
	for i, d := range docs {
		score, hadExact := scoreDoc(d.Text, tokens)
		if score == 0 {
			continue
		}
		out = append(out, Match{Index: i, Score: score, FuzzyOnly: !hadExact})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}

func scoreDoc(text string, tokens []string) (score int, hadExact bool) {
	var chunks []string // split lazily, most docs hit the substring path

	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			score += scoreExact
			hadExact = true
			continue
		}

		if chunks == nil {
			chunks = splitChunks(text)
		}
		switch minDistance(tok, chunks) {
		case 1:
			score += scoreDistance1
		case 2:
			score += scoreDistance2
		}
	}
	return score, hadExact
}

// splitChunks breaks text on whitespace and punctuation.
func splitChunks(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func minDistance(token string, chunks []string) int {
	best := -1
	for _, c := range chunks {
		d := Levenshtein(token, c)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Levenshtein computes the classic edit distance with unit insert, delete,
// and substitute costs, using a rolling single-row DP table.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
