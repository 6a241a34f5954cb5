package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/service"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// StaffTicketsHandler exposes ticket assignment and per-staff workloads.
type StaffTicketsHandler struct {
	assignments *service.AssignmentService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(assignments *service.AssignmentService) *StaffTicketsHandler {
	return &StaffTicketsHandler{assignments: assignments}
}

// Assign POST /tickets/:id/assignee.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.assignments.Assign(c.UserContext(), id, req.StaffID, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Unassign DELETE /tickets/:id/assignee.
func (h *StaffTicketsHandler) Unassign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.assignments.Unassign(c.UserContext(), id, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// MyTickets GET /me/tickets.
func (h *StaffTicketsHandler) MyTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return h.workload(c, principal.Staff.ID)
}

// StaffTickets GET /staff/:id/tickets.
func (h *StaffTicketsHandler) StaffTickets(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	return h.workload(c, id)
}

func (h *StaffTicketsHandler) workload(c *fiber.Ctx, staffID int64) error {
	board, err := h.assignments.Workload(c.UserContext(), staffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scoredResponses(board)})
}
