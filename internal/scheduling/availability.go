package scheduling

import (
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

// RangeSource identifies where a booked range came from.
type RangeSource string

const (
	SourceConfirmed RangeSource = "confirmed"
	SourceBlockout  RangeSource = "blockout"
)

// BookedRange is one inclusive span of unavailable days.
type BookedRange struct {
	Start  Date        `json:"start"`
	End    Date        `json:"end"`
	Source RangeSource `json:"source"`
}

// Covers reports whether the range includes the given day.
func (r BookedRange) Covers(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Index answers free/busy queries against a snapshot of booked ranges.
// It is an immutable value: refreshing source data means building a new one.
type Index struct {
	ranges []BookedRange
}

// BuildIndex constructs an index from the given snapshot. Ranges with a
// missing start or end are treated as not loaded and skipped. Overlapping
// ranges are legitimate (multi-project states) and kept as-is; a day is busy
// when any range covers it.
func BuildIndex(ranges []BookedRange) *Index {
	kept := make([]BookedRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Start.IsZero() || r.End.IsZero() {
			continue
		}
		kept = append(kept, r)
	}
	return &Index{ranges: kept}
}

// IsFree reports whether no booked range covers the given day.
func (ix *Index) IsFree(d Date) bool {
	for _, r := range ix.ranges {
		if r.Covers(d) {
			return false
		}
	}
	return true
}

// IsRangeFree reports whether all of start, start+1, ..., start+days-1 are
// free. days must be at least 1.
func (ix *Index) IsRangeFree(start Date, days int) (bool, error) {
	conflicts, err := ix.Conflicts(start, days)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns the days within [start, start+days) that are already
// booked. days must be at least 1.
func (ix *Index) Conflicts(start Date, days int) ([]Date, error) {
	if days <= 0 {
		return nil, appErrors.ErrInvalidDuration
	}
	var conflicts []Date
	for i := 0; i < days; i++ {
		day := start.AddDays(i)
		if !ix.IsFree(day) {
			conflicts = append(conflicts, day)
		}
	}
	return conflicts, nil
}

// BookedDays enumerates the busy days in the inclusive window [from, to].
// Used to paint the public calendar.
func (ix *Index) BookedDays(from, to Date) []Date {
	days := make([]Date, 0)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if !ix.IsFree(d) {
			days = append(days, d)
		}
	}
	return days
}

// Ranges returns the ranges the index was built from.
func (ix *Index) Ranges() []BookedRange {
	out := make([]BookedRange, len(ix.ranges))
	copy(out, ix.ranges)
	return out
}
