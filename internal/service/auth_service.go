package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/audit"
	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// BootstrapResult reports the Manager account created on first start.
type BootstrapResult struct {
	Staff *domain.StaffAccount
	// Password is set only when it was generated rather than configured.
	Password string
}

// Authenticate verifies credentials and issues a session token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *StaffService) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	staff, err := s.store.Staff().GetByUsername(ctx, username)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		s.logger.Info("staff login rejected", zap.String("username", username))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	session := &domain.Session{Staff: *staff}
	if s.tokens != nil {
		token, exp, err := s.tokens.GenerateToken(staff)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		session.Token, session.ExpiresAt = token, exp
	}
	return session, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *StaffService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string, actor *int64) error {
	if err := s.validate.Struct(passwordInput{Password: newPassword}); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		staff, err := tx.Staff().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		staff.PasswordHash = hash
		if err := tx.Staff().Update(ctx, staff); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionChangeStaffPassword,
			fmt.Sprintf("staff #%d %s password changed", staff.ID, staff.Username), s.clock())
	})
}

// EnsureBootstrapManager creates a Manager account when the store has no
// staff at all. It returns nil when accounts already exist. An empty
// password is replaced by a generated one, returned in the result.
func (s *StaffService) EnsureBootstrapManager(ctx context.Context, username, password string) (*BootstrapResult, error) {
	count, err := s.store.Staff().Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	result := &BootstrapResult{}
	if password == "" {
		password = uuid.NewString()
		result.Password = password
	}
	staff, err := s.Register(ctx, RegisterStaffInput{
		Username: username,
		Password: password,
		Role:     domain.StaffRoleManager,
	}, nil)
	if apperrors.HasCode(err, apperrors.CodeUniquenessConflict) {
		// Another process bootstrapped first.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result.Staff = staff
	s.logger.Info("bootstrap manager created", zap.Int64("staff_id", staff.ID), zap.String("username", staff.Username))
	return result, nil
}
