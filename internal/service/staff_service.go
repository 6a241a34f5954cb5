package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/queuesmart/internal/audit"
	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// RegisterStaffInput describes a new staff account.
type RegisterStaffInput struct {
	Username string           `json:"username" validate:"required,min=3,max=64"`
	Password string           `json:"password" validate:"required,min=8,max=72"`
	Role     domain.StaffRole `json:"role" validate:"staff_role"`
}

type passwordInput struct {
	Password string `json:"new_password" validate:"required,min=8,max=72"`
}

type roleInput struct {
	Role domain.StaffRole `json:"role" validate:"staff_role"`
}

// StaffService manages staff accounts and their credentials.
type StaffService struct {
	base
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewStaffService constructs the service. tokens may be nil for callers that
// never log in, such as the CLI.
func NewStaffService(deps Dependencies, tokens *auth.TokenManager, bcryptCost int) *StaffService {
	return &StaffService{base: newBase(deps), tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a staff account. A taken username is a
// UNIQUENESS_CONFLICT.
func (s *StaffService) Register(ctx context.Context, in RegisterStaffInput, actor *int64) (*domain.StaffAccount, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	staff := &domain.StaffAccount{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    s.clock(),
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Staff().Create(ctx, staff); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionRegisterStaff,
			fmt.Sprintf("staff #%d %s (%s)", staff.ID, staff.Username, staff.Role), staff.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// Get returns one staff account.
func (s *StaffService) Get(ctx context.Context, id int64) (*domain.StaffAccount, error) {
	return s.store.Staff().GetByID(ctx, id)
}

// List returns every staff account ordered by id.
func (s *StaffService) List(ctx context.Context) ([]domain.StaffAccount, error) {
	return s.store.Staff().List(ctx)
}

// ChangeRole sets a staff member's role. The last Manager cannot be demoted.
func (s *StaffService) ChangeRole(ctx context.Context, id int64, role domain.StaffRole, actor *int64) (*domain.StaffAccount, error) {
	if err := s.validate.Struct(roleInput{Role: role}); err != nil {
		return nil, err
	}

	var staff *domain.StaffAccount
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		staff, err = tx.Staff().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if staff.Role == role {
			return nil
		}
		if staff.IsManager() {
			if err := ensureAnotherManager(ctx, tx, id); err != nil {
				return err
			}
		}
		previous := staff.Role
		staff.Role = role
		if err := tx.Staff().Update(ctx, staff); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionChangeStaffRole,
			fmt.Sprintf("staff #%d %s role %s -> %s", staff.ID, staff.Username, previous, role), s.clock())
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// Delete removes a staff account that owns no appointments and has no
// assigned tickets. The last Manager cannot be deleted.
func (s *StaffService) Delete(ctx context.Context, id int64, actor *int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		staff, err := tx.Staff().GetByID(ctx, id)
		if err != nil {
			return err
		}
		tickets, err := tx.Tickets().CountForStaff(ctx, id)
		if err != nil {
			return err
		}
		appts, err := tx.Appointments().CountForStaff(ctx, id)
		if err != nil {
			return err
		}
		if tickets > 0 || appts > 0 {
			return apperrors.NewReferentialConflict("staff member still has assigned tickets or appointments", map[string]any{
				"staff_id":     id,
				"tickets":      tickets,
				"appointments": appts,
			})
		}
		if staff.IsManager() {
			if err := ensureAnotherManager(ctx, tx, id); err != nil {
				return err
			}
		}
		// The actor may be the account being removed, so audit first.
		if err := audit.Record(ctx, tx, actor, domain.ActionDeleteStaff,
			fmt.Sprintf("staff #%d %s", staff.ID, staff.Username), s.clock()); err != nil {
			return err
		}
		return tx.Staff().Delete(ctx, id)
	})
}

func ensureAnotherManager(ctx context.Context, tx repository.Store, excluding int64) error {
	all, err := tx.Staff().List(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID != excluding && other.IsManager() {
			return nil
		}
	}
	return apperrors.NewValidationError("at least one Manager account must remain", map[string]any{"staff_id": excluding})
}
