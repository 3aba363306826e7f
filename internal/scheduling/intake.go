package scheduling

import (
	"fmt"
	"strings"

	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

// DiscountNone is the snapshot string stored when no tier applied.
const DiscountNone = "None"

// Candidate is a booking request before it is persisted.
type Candidate struct {
	StartDate    Date
	DurationDays int
	WordCount    int
}

// IntakeResult is the fully-populated outcome of a successful validation.
// Persisting it is the caller's job; validation itself is side-effect free.
type IntakeResult struct {
	StartDate     Date
	EndDate       Date
	DurationDays  int
	WordCount     int
	DiscountLabel string
	DiscountTier  *DiscountTier
}

// IntakeValidator gatekeeps candidate submissions against the business rules.
type IntakeValidator struct {
	tiers []DiscountTier
}

// NewIntakeValidator builds a validator with the given discount ladder; an
// empty ladder falls back to the default tiers.
func NewIntakeValidator(tiers []DiscountTier) IntakeValidator {
	if len(tiers) == 0 {
		tiers = DefaultDiscountTiers()
	}
	return IntakeValidator{tiers: tiers}
}

// Validate runs the intake checks in order, first failure wins:
//
//  1. word count must be positive
//  2. start date must not precede today (the calendar UI blocks past days,
//     this re-checks defensively)
//  3. every requested day must be free in the index
//
// On success the result carries the computed end date and discount snapshot.
func (v IntakeValidator) Validate(c Candidate, ix *Index, today Date) (*IntakeResult, error) {
	if c.WordCount <= 0 {
		return nil, appErrors.ErrEmptyWordCount
	}
	if c.StartDate.Before(today) {
		return nil, appErrors.ErrPastDate
	}

	conflicts, err := ix.Conflicts(c.StartDate, c.DurationDays)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, appErrors.Clone(appErrors.ErrDatesUnavailable,
			fmt.Sprintf("not enough consecutive free days: %s already booked", formatDays(conflicts)))
	}

	result := &IntakeResult{
		StartDate:     c.StartDate,
		EndDate:       c.StartDate.AddDays(c.DurationDays),
		DurationDays:  c.DurationDays,
		WordCount:     c.WordCount,
		DiscountLabel: DiscountNone,
	}
	if tier := ComputeTier(today, c.StartDate, v.tiers); tier != nil {
		result.DiscountTier = tier
		result.DiscountLabel = tier.Label
	}
	return result, nil
}

func formatDays(days []Date) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
