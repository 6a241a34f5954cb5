package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/service"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// StaffHandler exposes staff/auth endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// Login handles POST /auth/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.staff.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			Staff:     staffResponse(&session.Staff),
		},
	})
}

// Me handles GET /auth/me.
func (h *StaffHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": staffResponse(principal.Staff)})
}

// ChangePassword handles POST /auth/password/change.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.staff.ChangePassword(c.UserContext(), principal.Staff.ID, req.CurrentPassword, req.NewPassword, principal.StaffID()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateStaff handles POST /staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.RegisterStaffRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	staff, err := h.staff.Register(c.UserContext(), service.RegisterStaffInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.StaffRole(req.Role),
	}, actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// ListStaff handles GET /staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	members, err := h.staff.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, staffResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetStaff handles GET /staff/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	staff, err := h.staff.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// ChangeRole handles PUT /staff/:id/role.
func (h *StaffHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	staff, err := h.staff.ChangeRole(c.UserContext(), id, domain.StaffRole(req.Role), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// DeleteStaff handles DELETE /staff/:id.
func (h *StaffHandler) DeleteStaff(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.staff.Delete(c.UserContext(), id, actor(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func staffResponse(staff *domain.StaffAccount) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Username:  staff.Username,
		Role:      string(staff.Role),
		CreatedAt: staff.CreatedAt,
	}
}
