package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ISO(t *testing.T) {
	got, ok := Parse("2024-06-14")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), got)
}

func TestParse_UKDayFirst(t *testing.T) {
	got, ok := Parse("3/4/2024")
	require.True(t, ok)
	// Day first: 3 April, not 4 March.
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), got)

	got, ok = Parse("25/12/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), got)
}

func TestParse_TimeComponentStripped(t *testing.T) {
	for _, in := range []string{"2024-06-14T09:30:00", "2024-06-14 09:30"} {
		got, ok := Parse(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), got)
	}
}

func TestParse_FallbackLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"14 Jun 2024", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"Jun 14, 2024", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"2024/06/14", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		require.True(t, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-date", "2024-13-40", "40/13/2024", "99/99/9999"} {
		_, ok := Parse(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestIsPast(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	past, ok := Parse("2024-06-14")
	require.True(t, ok)
	assert.True(t, IsPast(past, ok, now))

	future, ok := Parse("2024-06-16")
	require.True(t, ok)
	assert.False(t, IsPast(future, ok, now))

	// Same day is not past.
	today, ok := Parse("2024-06-15")
	require.True(t, ok)
	assert.False(t, IsPast(today, ok, now))

	// Unparseable dates are never past.
	bad, ok := Parse("not-a-date")
	assert.False(t, IsPast(bad, ok, now))
}
