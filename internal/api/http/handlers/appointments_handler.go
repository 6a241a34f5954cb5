package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/service"
)

// AppointmentsHandler manages staff calendars.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointments *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointments}
}

// Book POST /appointments.
func (h *AppointmentsHandler) Book(c *fiber.Ctx) error {
	var req dto.BookAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appt, err := h.service.Book(c.UserContext(), service.BookingInput{
		CustomerID:      req.CustomerID,
		StaffID:         req.StaffID,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
	}, actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Get GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	appt, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Reschedule PUT /appointments/:id.
func (h *AppointmentsHandler) Reschedule(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.RescheduleAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	appt, err := h.service.Reschedule(c.UserContext(), id, service.RescheduleInput{
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
	}, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Cancel DELETE /appointments/:id.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Cancel(c.UserContext(), id, actor(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Schedule GET /staff/:id/appointments.
func (h *AppointmentsHandler) Schedule(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	appts, err := h.service.ListByStaff(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponses(appts)})
}

func appointmentResponse(appt *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:              appt.ID,
		CustomerID:      appt.CustomerID,
		CustomerName:    appt.CustomerName,
		StaffID:         appt.StaffID,
		Start:           appt.Start,
		End:             appt.End(),
		DurationMinutes: appt.DurationMinutes,
		Reason:          appt.Reason,
	}
}

func appointmentResponses(appts []domain.Appointment) []dto.AppointmentResponse {
	items := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, appointmentResponse(&appts[i]))
	}
	return items
}
