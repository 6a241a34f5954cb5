package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/persistence"
	"github.com/spec-kit/queuesmart/internal/repository"
)

// ReportService runs the management reports, caching results in Redis when
// a cache is configured.
type ReportService struct {
	base
	cache *persistence.ReportCache
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(deps Dependencies, cache *persistence.ReportCache) *ReportService {
	return &ReportService{base: newBase(deps), cache: cache}
}

// WeeklyCategoryCounts returns ticket counts per creation week and category.
func (s *ReportService) WeeklyCategoryCounts(ctx context.Context) ([]domain.WeeklyCategoryCount, error) {
	return cached(ctx, s, "weekly_category_counts", s.store.Reports().WeeklyCategoryCounts)
}

// AverageCloseTimes returns mean open-to-close hours per category.
func (s *ReportService) AverageCloseTimes(ctx context.Context) ([]domain.CategoryCloseTime, error) {
	return cached(ctx, s, "average_close_times", s.store.Reports().AverageCloseTimes)
}

// BusiestDates returns the limit dates with most appointments; a
// non-positive limit means repository.DefaultBusiestDates.
func (s *ReportService) BusiestDates(ctx context.Context, limit int) ([]domain.DateCount, error) {
	if limit <= 0 {
		limit = repository.DefaultBusiestDates
	}
	return cached(ctx, s, "busiest_dates:"+strconv.Itoa(limit), func(ctx context.Context) ([]domain.DateCount, error) {
		return s.store.Reports().BusiestDates(ctx, limit)
	})
}

// HandleEvent drops cached reports after any committed change. It is an
// events.EventHandler.
func (s *ReportService) HandleEvent(ctx context.Context, event events.Event) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// cached serves name from the cache or computes and stores it. Cache
// failures degrade to a direct query.
func cached[T any](ctx context.Context, s *ReportService, name string, compute func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var rows []T
		hit, err := s.cache.Get(ctx, name, &rows)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("report", name), zap.Error(err))
		} else if hit {
			return rows, nil
		}
	}

	rows, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, name, rows); err != nil {
			s.logger.Warn("report cache write failed", zap.String("report", name), zap.Error(err))
		}
	}
	return rows, nil
}
