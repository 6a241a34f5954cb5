package repository

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// DefaultBusiestDates is the number of dates BusiestDates returns when the
// caller passes a non-positive limit.
const DefaultBusiestDates = 5

// ReportRepository runs the read-only management aggregates.
type ReportRepository interface {
	// WeeklyCategoryCounts groups tickets by creation week and category,
	// newest week first.
	WeeklyCategoryCounts(ctx context.Context) ([]domain.WeeklyCategoryCount, error)
	// AverageCloseTimes averages open-to-close hours of closed tickets per
	// category, rounded to two decimals.
	AverageCloseTimes(ctx context.Context) ([]domain.CategoryCloseTime, error)
	// BusiestDates returns the calendar dates with the most appointments.
	BusiestDates(ctx context.Context, limit int) ([]domain.DateCount, error)
}
