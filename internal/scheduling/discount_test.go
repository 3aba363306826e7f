package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTierPicksHighestQualifyingThreshold(t *testing.T) {
	tiers := DefaultDiscountTiers()
	today := NewDate(2025, time.January, 1)

	tests := []struct {
		name  string
		start Date
		want  string // "" means no tier
	}{
		{"60 days out lands in the 60 tier", NewDate(2025, time.March, 2), "6%"},
		{"89 days out still the 60 tier", today.AddDays(89), "6%"},
		{"90 days out unlocks 7%", today.AddDays(90), "7%"},
		{"120 days out unlocks 8%", today.AddDays(120), "8%"},
		{"way out stays at the top tier", today.AddDays(400), "8%"},
		{"30 days out is the lowest tier", today.AddDays(30), "5%"},
		{"29 days out gets nothing", today.AddDays(29), ""},
		{"same-day start gets nothing", today, ""},
		{"past start gets nothing", today.AddDays(-10), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier := ComputeTier(today, tc.start, tiers)
			if tc.want == "" {
				assert.Nil(t, tier)
				return
			}
			require.NotNil(t, tier)
			assert.Equal(t, tc.want, tier.Label)
		})
	}
}

func TestComputeTierMonotonicInDaysOut(t *testing.T) {
	// Booking further out never yields a lower tier.
	tiers := DefaultDiscountTiers()
	today := NewDate(2025, time.January, 1)
	prev := -1
	for daysOut := 0; daysOut <= 200; daysOut++ {
		tier := ComputeTier(today, today.AddDays(daysOut), tiers)
		current := 0
		if tier != nil {
			current = tier.MinDaysOut
		}
		assert.GreaterOrEqual(t, current, prev, "daysOut=%d", daysOut)
		prev = current
	}
}

func TestComputeTierUnsortedTable(t *testing.T) {
	// Tier order in config must not matter.
	tiers := []DiscountTier{
		{MinDaysOut: 30, Label: "5%"},
		{MinDaysOut: 120, Label: "8%"},
		{MinDaysOut: 60, Label: "6%"},
		{MinDaysOut: 90, Label: "7%"},
	}
	today := NewDate(2025, time.January, 1)
	tier := ComputeTier(today, today.AddDays(95), tiers)
	require.NotNil(t, tier)
	assert.Equal(t, "7%", tier.Label)
}

func TestComputeTierEmptyTable(t *testing.T) {
	today := NewDate(2025, time.January, 1)
	assert.Nil(t, ComputeTier(today, today.AddDays(365), nil))
}
