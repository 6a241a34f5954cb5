package repository

import (
	"context"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// AuditFilter narrows an audit listing. From is inclusive, To exclusive.
type AuditFilter struct {
	StaffID *int64
	From    *time.Time
	To      *time.Time
	Limit   int
}

// AuditRepository stores audit entries. There is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	// List returns entries newest first.
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}
