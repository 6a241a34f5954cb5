package service

import (
	"context"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// DefaultAuditLimit caps an audit listing when the caller sets no limit.
const DefaultAuditLimit = 200

// AuditQuery selects audit entries by staff member and/or time range.
type AuditQuery struct {
	StaffID *int64
	From    *time.Time
	To      *time.Time
	Limit   int
}

// AuditService is the read-only view of the audit log.
type AuditService struct {
	base
}

// NewAuditService constructs the service.
func NewAuditService(deps Dependencies) *AuditService {
	return &AuditService{base: newBase(deps)}
}

// List returns matching entries, newest first.
func (s *AuditService) List(ctx context.Context, q AuditQuery) ([]domain.AuditEntry, error) {
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, apperrors.NewValidationError("from must be before to", map[string]any{
			"from": q.From.Format(time.RFC3339),
			"to":   q.To.Format(time.RFC3339),
		})
	}
	if q.Limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": q.Limit})
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultAuditLimit
	}
	return s.store.Audit().List(ctx, repository.AuditFilter{
		StaffID: q.StaffID,
		From:    q.From,
		To:      q.To,
		Limit:   limit,
	})
}
