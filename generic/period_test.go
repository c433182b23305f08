package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/generic"
)

func mustRange(t *testing.T, start, end string) generic.Range {
	t.Helper()
	r, err := generic.NewRange(start, end)
	require.NoError(t, err)
	return r
}

// =============================================================================
// RANGE CONSTRUCTION
// =============================================================================

func TestNewRange_RejectsReversed(t *testing.T) {
	_, err := generic.NewRange("07052025", "05052025")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrMalformedDate))
}

func TestParseRangeToken(t *testing.T) {
	tests := []struct {
		token string
		days  int
		err   bool
	}{
		{"05052025-07052025", 3, false},
		{"05052025", 1, false},
		{"07052025-05052025", 0, false},
		{" 31122024-01012025 ", 2, false},
		{"badtoken", 0, true},
		{"05052025-", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			r, err := generic.ParseRangeToken(tt.token)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.days, r.Days())
		})
	}
}

// =============================================================================
// RANGE QUERIES
// =============================================================================

func TestRange_Overlaps(t *testing.T) {
	existing := mustRange(t, "01012025", "05012025")

	assert.True(t, existing.Overlaps(mustRange(t, "03012025", "10012025")))
	assert.True(t, mustRange(t, "03012025", "10012025").Overlaps(existing))
	assert.True(t, existing.Overlaps(mustRange(t, "05012025", "05012025")), "touching endpoints overlap")
	assert.False(t, existing.Overlaps(mustRange(t, "06012025", "10012025")))
	assert.True(t, existing.Overlaps(mustRange(t, "02012025", "03012025")), "containment overlaps")
}

func TestRange_Contains(t *testing.T) {
	r := mustRange(t, "01012025", "03012025")

	assert.True(t, r.Contains(generic.MustParseDate("01012025")))
	assert.True(t, r.Contains(generic.MustParseDate("03012025")))
	assert.False(t, r.Contains(generic.MustParseDate("04012025")))
	assert.False(t, r.Contains(generic.MustParseDate("31122024")))
}

func TestRange_String(t *testing.T) {
	assert.Equal(t, "05052025", generic.SingleDay(generic.MustParseDate("05052025")).String())
	assert.Equal(t, "05052025-07052025", mustRange(t, "05052025", "07052025").String())
}
