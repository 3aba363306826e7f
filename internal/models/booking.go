package models

import "time"

// BookingStatus is the closed set of pipeline stages a booking moves through.
// The stages are operator-triggered; the transition table below is the only
// authority on which moves are legal.
type BookingStatus string

const (
	// BookingPending is the initial status for solo narration requests.
	BookingPending BookingStatus = "PENDING"
	// BookingCoordination is the initial status for multi-voice narration
	// styles, which go through a manual casting/coordination queue before
	// onboarding.
	BookingCoordination BookingStatus = "COORDINATION"
	BookingOnboarding   BookingStatus = "ONBOARDING"
	// BookingFirst15 is the first-15-minutes approval checkpoint.
	BookingFirst15    BookingStatus = "FIRST_15"
	BookingProduction BookingStatus = "PRODUCTION"
	BookingInvoiced   BookingStatus = "INVOICED"
	BookingPaid       BookingStatus = "PAID"
	BookingArchived   BookingStatus = "ARCHIVED"
	BookingPostponed  BookingStatus = "POSTPONED"
	BookingOnHold     BookingStatus = "ON_HOLD"
	BookingRejected   BookingStatus = "REJECTED"
)

// bookingTransitions maps each status to the statuses it may move to.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:      {BookingOnboarding, BookingCoordination, BookingPostponed, BookingRejected},
	BookingCoordination: {BookingOnboarding, BookingPostponed, BookingRejected},
	BookingOnboarding:   {BookingFirst15, BookingOnHold, BookingPostponed, BookingRejected},
	BookingFirst15:      {BookingProduction, BookingOnHold, BookingPostponed, BookingRejected},
	BookingProduction:   {BookingInvoiced, BookingOnHold, BookingPostponed},
	BookingInvoiced:     {BookingPaid, BookingOnHold},
	BookingPaid:         {BookingArchived},
	BookingArchived:     {},
	BookingPostponed:    {BookingPending, BookingOnboarding, BookingRejected, BookingArchived},
	BookingOnHold:       {BookingOnboarding, BookingFirst15, BookingProduction, BookingInvoiced, BookingPostponed, BookingRejected},
	BookingRejected:     {BookingArchived},
}

// Valid reports whether the status is a known pipeline stage.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo consults the transition table.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// availabilityExcluded lists statuses whose date ranges do not block the
// calendar: the project is off the schedule (or never made it on).
var availabilityExcluded = map[BookingStatus]struct{}{
	BookingRejected:  {},
	BookingPostponed: {},
	BookingArchived:  {},
}

// BlocksAvailability reports whether a booking in this status occupies its
// date range on the calendar.
func (s BookingStatus) BlocksAvailability() bool {
	_, excluded := availabilityExcluded[s]
	return !excluded
}

// AvailabilityExcludedStatuses returns the statuses skipped when loading the
// availability snapshot, for use in SQL filters.
func AvailabilityExcludedStatuses() []string {
	out := make([]string, 0, len(availabilityExcluded))
	for s := range availabilityExcluded {
		out = append(out, string(s))
	}
	return out
}

// Booking is one narration project request, from public intake through the
// production pipeline.
type Booking struct {
	ID              string        `db:"id" json:"id"`
	ClientName      string        `db:"client_name" json:"client_name"`
	Email           string        `db:"email" json:"email"`
	BookTitle       string        `db:"book_title" json:"book_title"`
	WordCount       int           `db:"word_count" json:"word_count"`
	DaysNeeded      int           `db:"days_needed" json:"days_needed"`
	StartDate       time.Time     `db:"start_date" json:"start_date"`
	EndDate         time.Time     `db:"end_date" json:"end_date"`
	NarrationStyle  string        `db:"narration_style" json:"narration_style"`
	Genre           string        `db:"genre" json:"genre"`
	Notes           string        `db:"notes" json:"notes"`
	IsReturning     bool          `db:"is_returning" json:"is_returning"`
	DiscountApplied string        `db:"discount_applied" json:"discount_applied"`
	ClientType      string        `db:"client_type" json:"client_type"`
	Status          BookingStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter narrows down bookings for admin listings.
type BookingFilter struct {
	Status   *BookingStatus
	Search   string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
}

// BookingRange is the slim projection the availability snapshot reads.
type BookingRange struct {
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
}
