// Package audit attaches attributed mutations to the append-only audit log.
//
// Record must be called with the transaction-bound Store of the mutation it
// describes, so the entry and the change commit or roll back together.
package audit

import (
	"context"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// Record appends one entry for actor. A nil actor means the mutation is
// unattributed and nothing is written. An unknown actor fails validation,
// which rolls back the enclosing transaction.
func Record(ctx context.Context, tx repository.Store, actor *int64, action domain.AuditAction, detail string, at time.Time) error {
	if actor == nil {
		return nil
	}
	if _, err := tx.Staff().GetByID(ctx, *actor); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("acting staff member does not exist", map[string]any{"actor_id": *actor})
		}
		return err
	}
	entry := &domain.AuditEntry{
		StaffID:   *actor,
		Action:    action,
		Detail:    detail,
		CreatedAt: at.UTC(),
	}
	return tx.Audit().Append(ctx, entry)
}
