package scheduling

import "sort"

// DiscountTier is a named discount unlocked when a booking is made at least
// MinDaysOut days in advance.
type DiscountTier struct {
	MinDaysOut int    `json:"min_days_out"`
	Label      string `json:"label"`
}

// DefaultDiscountTiers is the studio's standard early-booking ladder.
func DefaultDiscountTiers() []DiscountTier {
	return []DiscountTier{
		{MinDaysOut: 120, Label: "8%"},
		{MinDaysOut: 90, Label: "7%"},
		{MinDaysOut: 60, Label: "6%"},
		{MinDaysOut: 30, Label: "5%"},
	}
}

// ComputeTier maps a candidate start date to the best discount tier for
// "today". Tiers are scanned in descending MinDaysOut order and the first
// tier satisfied by the days-out count wins. Returns nil when no tier
// qualifies — including same-day starts (daysOut 0) and past dates
// (negative daysOut never matches a positive threshold).
func ComputeTier(today, start Date, tiers []DiscountTier) *DiscountTier {
	if len(tiers) == 0 {
		return nil
	}
	daysOut := today.DaysUntil(start)

	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinDaysOut > sorted[j].MinDaysOut
	})

	for _, tier := range sorted {
		if daysOut >= tier.MinDaysOut {
			t := tier
			return &t
		}
	}
	return nil
}
