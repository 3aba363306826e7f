package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingOnboarding, true},
		{BookingPending, BookingCoordination, true},
		{BookingPending, BookingProduction, false}, // cannot skip onboarding
		{BookingCoordination, BookingOnboarding, true},
		{BookingOnboarding, BookingFirst15, true},
		{BookingFirst15, BookingProduction, true},
		{BookingProduction, BookingInvoiced, true},
		{BookingProduction, BookingPaid, false}, // must invoice first
		{BookingInvoiced, BookingPaid, true},
		{BookingPaid, BookingArchived, true},
		{BookingArchived, BookingPending, false}, // terminal
		{BookingPostponed, BookingOnboarding, true},
		{BookingOnHold, BookingProduction, true},
		{BookingRejected, BookingArchived, true},
		{BookingRejected, BookingOnboarding, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, BookingPending.Valid())
	assert.True(t, BookingOnHold.Valid())
	assert.False(t, BookingStatus("in production").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestBlocksAvailability(t *testing.T) {
	blocking := []BookingStatus{BookingPending, BookingCoordination, BookingOnboarding, BookingFirst15, BookingProduction, BookingInvoiced, BookingPaid, BookingOnHold}
	for _, s := range blocking {
		assert.True(t, s.BlocksAvailability(), string(s))
	}
	for _, s := range []BookingStatus{BookingRejected, BookingPostponed, BookingArchived} {
		assert.False(t, s.BlocksAvailability(), string(s))
	}

	excluded := AvailabilityExcludedStatuses()
	assert.ElementsMatch(t, []string{"REJECTED", "POSTPONED", "ARCHIVED"}, excluded)
}
