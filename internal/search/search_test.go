package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(text string, fields ...string) Doc {
	return Doc{Fields: fields, Text: text}
}

func TestExact_SubstringOnAnyField(t *testing.T) {
	docs := []Doc{
		doc("", "spring open", "2024-01-10"),
		doc("", "medal", "2024-02-01"),
	}

	got := Exact(docs, "Spring ")
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)

	// Full query must sit inside one field, not across fields.
	got = Exact(docs, "open 2024")
	assert.Empty(t, got)
}

func TestExact_EmptyQueryKeepsOrder(t *testing.T) {
	docs := []Doc{doc("", "a"), doc("", "b"), doc("", "c")}

	got := Exact(docs, "   ")
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, i, m.Index)
	}
}

func TestFuzzy_ExactTokenOutscoresApproximate(t *testing.T) {
	docs := []Doc{
		doc("handicap limit 28"),  // exact hit
		doc("handicap limit 28"),  // exact hit (tie, keeps order)
		doc("hendicap limit 28"),  // distance 1
		doc("hxndicxp limit 28"),  // distance 2
		doc("completely unrelated"),
	}

	got := Fuzzy(docs, "handicap")
	require.Len(t, got, 4)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, scoreExact, got[0].Score)
	assert.False(t, got[0].FuzzyOnly)

	assert.Equal(t, 2, got[2].Index)
	assert.Equal(t, scoreDistance1, got[2].Score)
	assert.True(t, got[2].FuzzyOnly)

	assert.Equal(t, 3, got[3].Index)
	assert.Equal(t, scoreDistance2, got[3].Score)

	assert.Greater(t, got[0].Score, got[2].Score)
	assert.Greater(t, got[2].Score, got[3].Score)
}

func TestFuzzy_ZeroScoreExcluded(t *testing.T) {
	docs := []Doc{doc("nothing like the query at all")}

	assert.Empty(t, Fuzzy(docs, "zzzzzzzz"))
}

func TestFuzzy_TypoOneShortOfHandicap(t *testing.T) {
	docs := []Doc{doc("handicap limit: 28")}

	got := Fuzzy(docs, "hanicap")
	require.Len(t, got, 1)
	assert.Equal(t, scoreDistance1, got[0].Score)
	assert.True(t, got[0].FuzzyOnly)
}

func TestFuzzy_MultiTokenSums(t *testing.T) {
	docs := []Doc{doc("spring medal at dawn")}

	// "spring" exact (+3), "medel" distance 1 from "medal" (+2).
	got := Fuzzy(docs, "spring medel")
	require.Len(t, got, 1)
	assert.Equal(t, scoreExact+scoreDistance1, got[0].Score)
	assert.False(t, got[0].FuzzyOnly)
}

func TestFuzzy_EmptyQueryReturnsAll(t *testing.T) {
	docs := []Doc{doc("a"), doc("b")}

	got := Fuzzy(docs, "  ")
	assert.Len(t, got, 2)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"handicap", "hanicap", 1},
		{"same", "same", 0},
		{"flügel", "flugel", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}
