package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/service"
)

// CustomersHandler manages customer records.
type CustomersHandler struct {
	customers    *service.CustomerService
	tickets      *service.TicketService
	appointments *service.AppointmentService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers *service.CustomerService, tickets *service.TicketService, appointments *service.AppointmentService) *CustomersHandler {
	return &CustomersHandler{customers: customers, tickets: tickets, appointments: appointments}
}

// Create handles POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Create(c.UserContext(), customerInput(req), actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerResponse(customer)})
}

// List handles GET /customers, with an optional ?q= search term.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	customers, err := h.customers.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, customerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.customers.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// Update handles PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Update(c.UserContext(), id, customerInput(req), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// Delete handles DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.UserContext(), id, actor(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Tickets handles GET /customers/:id/tickets.
func (h *CustomersHandler) Tickets(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListByCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Appointments handles GET /customers/:id/appointments.
func (h *CustomersHandler) Appointments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	appts, err := h.appointments.ListByCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponses(appts)})
}

func customerInput(req dto.CustomerRequest) service.CustomerInput {
	return service.CustomerInput{
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		PreferredContact: domain.ContactMethod(req.PreferredContact),
		Vulnerable:       req.Vulnerable,
	}
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:               customer.ID,
		Name:             customer.Name,
		Phone:            customer.Phone,
		Email:            customer.Email,
		PreferredContact: string(customer.PreferredContact),
		Vulnerable:       customer.Vulnerable,
		CreatedAt:        customer.CreatedAt,
	}
}
