package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

func TestIntakeValidateSuccess(t *testing.T) {
	// 50k words at the default throughput is 8 days; start 10 days out with
	// nothing booked.
	today := NewDate(2025, time.June, 1)
	start := today.AddDays(10)
	validator := NewIntakeValidator(DefaultDiscountTiers())
	ix := BuildIndex(nil)

	result, err := validator.Validate(Candidate{StartDate: start, DurationDays: 8, WordCount: 50000}, ix, today)
	require.NoError(t, err)
	assert.True(t, result.EndDate.Equal(start.AddDays(8)))
	assert.Equal(t, 8, result.DurationDays)
	assert.Equal(t, 50000, result.WordCount)
	// only 10 days out: no tier
	assert.Equal(t, DiscountNone, result.DiscountLabel)
	assert.Nil(t, result.DiscountTier)
}

func TestIntakeValidateAppliesDiscountSnapshot(t *testing.T) {
	today := NewDate(2025, time.January, 1)
	start := today.AddDays(65)
	validator := NewIntakeValidator(DefaultDiscountTiers())

	result, err := validator.Validate(Candidate{StartDate: start, DurationDays: 3, WordCount: 20000}, BuildIndex(nil), today)
	require.NoError(t, err)
	require.NotNil(t, result.DiscountTier)
	assert.Equal(t, "6%", result.DiscountLabel)
}

func TestIntakeValidateEmptyWordCountFirst(t *testing.T) {
	// Word count is checked before anything else, even when the date is
	// also bad.
	today := NewDate(2025, time.June, 1)
	validator := NewIntakeValidator(nil)

	_, err := validator.Validate(Candidate{StartDate: today.AddDays(-5), DurationDays: 2, WordCount: 0}, BuildIndex(nil), today)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrEmptyWordCount)
}

func TestIntakeValidatePastDate(t *testing.T) {
	// 2025-05-30 requested on 2025-06-01 fails regardless of availability.
	today := NewDate(2025, time.June, 1)
	validator := NewIntakeValidator(nil)

	_, err := validator.Validate(Candidate{StartDate: NewDate(2025, time.May, 30), DurationDays: 2, WordCount: 10000}, BuildIndex(nil), today)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPastDate)
}

func TestIntakeValidateSameDayIsAllowed(t *testing.T) {
	today := NewDate(2025, time.June, 1)
	validator := NewIntakeValidator(DefaultDiscountTiers())

	result, err := validator.Validate(Candidate{StartDate: today, DurationDays: 1, WordCount: 5000}, BuildIndex(nil), today)
	require.NoError(t, err)
	// same-day never unlocks a tier
	assert.Equal(t, DiscountNone, result.DiscountLabel)
}

func TestIntakeValidateOverlap(t *testing.T) {
	today := NewDate(2025, time.February, 1)
	ix := BuildIndex([]BookedRange{{Start: feb(10), End: feb(15), Source: SourceConfirmed}})
	validator := NewIntakeValidator(nil)

	_, err := validator.Validate(Candidate{StartDate: feb(12), DurationDays: 2, WordCount: 10000}, ix, today)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDatesUnavailable.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "2025-02-12")
	assert.Contains(t, appErr.Message, "2025-02-13")
}

func TestIntakeValidateSpanEndingInsideRangeFails(t *testing.T) {
	today := NewDate(2025, time.February, 1)
	ix := BuildIndex([]BookedRange{{Start: feb(10), End: feb(15), Source: SourceBlockout}})
	validator := NewIntakeValidator(nil)

	// 8..12 clips the front of the blockout
	_, err := validator.Validate(Candidate{StartDate: feb(8), DurationDays: 5, WordCount: 10000}, ix, today)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDatesUnavailable.Code, appErrors.FromError(err).Code)

	// 5..9 stops just short and passes
	result, err := validator.Validate(Candidate{StartDate: feb(5), DurationDays: 5, WordCount: 10000}, ix, today)
	require.NoError(t, err)
	assert.True(t, result.EndDate.Equal(feb(10)))
}

func TestIntakeValidateInvalidDurationPropagates(t *testing.T) {
	today := NewDate(2025, time.June, 1)
	validator := NewIntakeValidator(nil)

	_, err := validator.Validate(Candidate{StartDate: today.AddDays(5), DurationDays: 0, WordCount: 10000}, BuildIndex(nil), today)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidDuration)
}
