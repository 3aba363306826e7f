package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/scheduling"
)

const availabilityCacheKey = "availability:snapshot"

type bookingRangeRepository interface {
	ListActiveRanges(ctx context.Context) ([]models.BookingRange, error)
}

type blockoutListRepository interface {
	List(ctx context.Context) ([]models.Blockout, error)
}

// CalendarMonth is the public calendar payload: the booked days inside a
// window, ready to paint as disabled.
type CalendarMonth struct {
	From       scheduling.Date   `json:"from"`
	To         scheduling.Date   `json:"to"`
	BookedDays []scheduling.Date `json:"booked_days"`
}

// AvailabilityService answers free/busy questions for the public scheduler
// and the admin calendar. The snapshot of booked ranges is rebuilt from the
// database on every refresh; a Redis cache in front keeps the public calendar
// cheap.
type AvailabilityService struct {
	bookings  bookingRangeRepository
	blockouts blockoutListRepository
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	ttl       time.Duration
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(bookings bookingRangeRepository, blockouts blockoutListRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AvailabilityService{
		bookings:  bookings,
		blockouts: blockouts,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		ttl:       ttl,
	}
}

// Index returns the current availability index, from cache when possible.
func (s *AvailabilityService) Index(ctx context.Context) (*scheduling.Index, error) {
	var cached []scheduling.BookedRange
	if hit, err := s.cache.Get(ctx, availabilityCacheKey, &cached); err == nil && hit {
		return scheduling.BuildIndex(cached), nil
	}

	ranges, err := s.loadRanges(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, availabilityCacheKey, ranges, s.ttl); err != nil {
		s.logger.Warn("failed to cache availability snapshot", zap.Error(err))
	}
	s.metrics.RecordSnapshotBuild(len(ranges))
	return scheduling.BuildIndex(ranges), nil
}

// Calendar returns the booked days within the inclusive [from, to] window.
func (s *AvailabilityService) Calendar(ctx context.Context, from, to scheduling.Date) (*CalendarMonth, error) {
	if to.Before(from) {
		from, to = to, from
	}
	ix, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	return &CalendarMonth{
		From:       from,
		To:         to,
		BookedDays: ix.BookedDays(from, to),
	}, nil
}

// CheckRange reports whether the requested span is fully free, and if not,
// which days collide.
func (s *AvailabilityService) CheckRange(ctx context.Context, start scheduling.Date, days int) (bool, []scheduling.Date, error) {
	ix, err := s.Index(ctx)
	if err != nil {
		return false, nil, err
	}
	conflicts, err := ix.Conflicts(start, days)
	if err != nil {
		return false, nil, err
	}
	return len(conflicts) == 0, conflicts, nil
}

// Invalidate drops the cached snapshot. Called after any write that changes
// the calendar: new booking, status change, block-out edits.
func (s *AvailabilityService) Invalidate(ctx context.Context) {
	s.cache.InvalidatePattern(ctx, availabilityCacheKey)
}

// loadRanges merges confirmed booking ranges with manual block-outs.
func (s *AvailabilityService) loadRanges(ctx context.Context) ([]scheduling.BookedRange, error) {
	bookingRanges, err := s.bookings.ListActiveRanges(ctx)
	if err != nil {
		return nil, err
	}
	blockouts, err := s.blockouts.List(ctx)
	if err != nil {
		return nil, err
	}

	ranges := make([]scheduling.BookedRange, 0, len(bookingRanges)+len(blockouts))
	for _, r := range bookingRanges {
		ranges = append(ranges, scheduling.BookedRange{
			Start:  dateFromDB(r.StartDate),
			End:    dateFromDB(r.EndDate),
			Source: scheduling.SourceConfirmed,
		})
	}
	for _, b := range blockouts {
		ranges = append(ranges, scheduling.BookedRange{
			Start:  dateFromDB(b.StartDate),
			End:    dateFromDB(b.EndDate),
			Source: scheduling.SourceBlockout,
		})
	}
	return ranges, nil
}

// dateFromDB converts a DATE column value to a calendar date. Postgres hands
// DATE back at UTC midnight, so the components are read in UTC; running it
// through a local zone would shift the day.
func dateFromDB(t time.Time) scheduling.Date {
	if t.IsZero() {
		return scheduling.Date{}
	}
	return scheduling.FromTime(t, time.UTC)
}
