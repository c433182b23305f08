package paradestate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

func TestNormalizeIdentifier_Accepts(t *testing.T) {
	tests := []struct {
		in   any
		want paradestate.PersonID
	}{
		{"4D001", "4D001"},
		{" 4d001 ", "4D001"},
		{"001", "4D001"},
		{123, "4D123"},
		{123.0, "4D123"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			got, err := paradestate.NormalizeIdentifier(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdentifier_Rejects(t *testing.T) {
	for _, in := range []any{"", nil, "4D", "4D00A", "ABC", "4D-001", "X4D001"} {
		t.Run(fmt.Sprintf("%v", in), func(t *testing.T) {
			_, err := paradestate.NormalizeIdentifier(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrMalformedIdentifier))
		})
	}
}

// =============================================================================
// DATES
// =============================================================================

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"int", 5052025, "05052025"},
		{"float", 5052025.0, "05052025"},
		{"float with fraction", 5052025.7, "05052025"},
		{"numeric string", "05052025", "05052025"},
		{"short numeric string", "5052025", "05052025"},
		{"punctuated", "05/05/2025", "05052025"},
		{"dashed", "05-05-2025", "05052025"},
		{"too long", "123456789", ""},
		{"no digits", "tomorrow", ""},
		{"blank", "", ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paradestate.NormalizeDate(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.Len(t, got, 8)
			}
		})
	}
}

// =============================================================================
// GROUP LABELS
// =============================================================================

func TestNormalizeGroupLabel(t *testing.T) {
	assert.Equal(t, "PLATOON1", paradestate.NormalizeGroupLabel(" Platoon 1 "))
	assert.Equal(t, "PLATOON1", paradestate.NormalizeGroupLabel("platoon-1"))
	assert.True(t, paradestate.SameGroup("Platoon 1", "PLATOON1"))
	assert.False(t, paradestate.SameGroup("Platoon 1", "Platoon 2"))
	assert.Equal(t, "Platoon 1", paradestate.DisplayLabel("  Platoon 1 "))
}
