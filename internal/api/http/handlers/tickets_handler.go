package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/priority"
	"github.com/spec-kit/queuesmart/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		CustomerID:  req.CustomerID,
		Category:    domain.TicketCategory(req.Category),
		Description: req.Description,
		Urgency:     domain.TicketUrgency(req.Urgency),
	}, actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets?q=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dashboard GET /tickets/dashboard?status=Open,Waiting&category=Housing&include_closed=true.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	filter := service.DashboardFilter{IncludeClosed: c.QueryBool("include_closed", false)}
	for _, status := range splitQuery(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}
	if category := c.Query("category"); category != "" {
		cat := domain.TicketCategory(category)
		filter.Category = &cat
	}

	board, err := h.service.Dashboard(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scoredResponses(board)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	update := domain.TicketUpdate{
		AssignedStaffID: req.AssignedStaffID,
		ClearAssignee:   req.Unassign,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		update.Status = &status
	}
	if req.Resolution != nil {
		resolution := domain.Resolution(*req.Resolution)
		update.Resolution = &resolution
	}

	updated, err := h.service.Update(c.UserContext(), id, update, actor(c))
	if err != nil {
		return err
	}
	resp := dto.UpdateTicketResponse{Updated: updated}
	if updated {
		ticket, err := h.service.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		tr := ticketResponse(ticket)
		resp.Ticket = &tr
	}
	return c.JSON(fiber.Map{"data": resp})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:                 ticket.ID,
		CustomerID:         ticket.CustomerID,
		CustomerName:       ticket.CustomerName,
		CustomerVulnerable: ticket.CustomerVulnerable,
		Category:           string(ticket.Category),
		Description:        ticket.Description,
		Urgency:            string(ticket.Urgency),
		Status:             string(ticket.Status),
		AssignedStaffID:    ticket.AssignedStaffID,
		CreatedAt:          ticket.CreatedAt,
		ClosedAt:           ticket.ClosedAt,
	}
	if ticket.Resolution != nil {
		resolution := string(*ticket.Resolution)
		resp.Resolution = &resolution
	}
	return resp
}

func scoredResponses(board []priority.ScoredTicket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(board))
	for i := range board {
		resp := ticketResponse(&board[i].Ticket)
		score := board[i].Score
		resp.Score = &score
		items = append(items, resp)
	}
	return items
}
