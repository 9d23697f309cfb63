package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_QuotedComma(t *testing.T) {
	records := Parse("Comp name,Date\n\"Spring, Open\",2024-01-10\n")

	require.Len(t, records, 1)
	assert.Equal(t, "Spring, Open", records[0]["Comp name"])
	assert.Equal(t, "2024-01-10", records[0]["Date"])
}

func TestParse_EmbeddedNewlineAndEscapedQuote(t *testing.T) {
	input := "Title,Notes\nMedal,\"line one\nline \"\"two\"\"\"\n"
	records := Parse(input)

	require.Len(t, records, 1)
	assert.Equal(t, "line one\nline \"two\"", records[0]["Notes"])
}

func TestParse_CRLFRows(t *testing.T) {
	records := Parse("A,B\r\n1,2\r\n3,4\r\n")

	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["A"])
	assert.Equal(t, "4", records[1]["B"])
}

func TestParse_MissingTrailingFields(t *testing.T) {
	records := Parse("A,B,C\nonly\n1,2,3\n")

	require.Len(t, records, 2)
	assert.Equal(t, "only", records[0]["A"])
	assert.Equal(t, "", records[0]["B"])
	assert.Equal(t, "", records[0]["C"])
}

func TestParse_ExtraFieldsDropped(t *testing.T) {
	records := Parse("A,B\n1,2,3,4\n")

	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0]["A"])
	assert.Equal(t, "2", records[0]["B"])
	assert.NotContains(t, records[0], "")
}

func TestParse_DegenerateRowsDropped(t *testing.T) {
	records := Parse("A,B\n1,2\n\n,\n")

	// The blank line is dropped; the "," line has two fields so it stays.
	require.Len(t, records, 2)
	assert.Equal(t, "", records[1]["A"])
}

func TestParse_UnterminatedQuote(t *testing.T) {
	records := Parse("A,B\n1,\"unterminated")

	require.Len(t, records, 1)
	assert.Equal(t, "unterminated", records[0]["B"])
}

func TestParse_HeaderBOMAndWhitespace(t *testing.T) {
	records := Parse("\ufeff Name ,Date\nMedal,2024-01-01\n")

	require.Len(t, records, 1)
	assert.Equal(t, "Medal", records[0]["Name"])
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n"))
}

func TestWrite_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"Comp name", "Notes", "Date"},
		{"Spring, Open", "has \"quotes\"", "2024-01-10"},
		{"Medal", "multi\nline\r\ntext", ""},
	}

	parsed := SplitRows(Write(rows))

	require.Len(t, parsed, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i], parsed[i], "row %d", i)
	}
}

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Comp name", "Comp name"},
		{"  padded  ", "padded"},
		{"\ufeffFirst", "First"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanHeader(tt.in))
	}
}
