package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/dto"
	"github.com/spec-kit/queuesmart/internal/service"
)

// ReportsHandler serves the Manager-only reports and audit log.
type ReportsHandler struct {
	reports *service.ReportService
	audit   *service.AuditService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, audit *service.AuditService) *ReportsHandler {
	return &ReportsHandler{reports: reports, audit: audit}
}

// Weekly GET /reports/weekly.
func (h *ReportsHandler) Weekly(c *fiber.Ctx) error {
	rows, err := h.reports.WeeklyCategoryCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// CloseTimes GET /reports/close-times.
func (h *ReportsHandler) CloseTimes(c *fiber.Ctx) error {
	rows, err := h.reports.AverageCloseTimes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// BusiestDates GET /reports/busiest-dates?limit=5.
func (h *ReportsHandler) BusiestDates(c *fiber.Ctx) error {
	limit, err := parseIntQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	rows, err := h.reports.BusiestDates(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Audit GET /audit?staff_id=&from=&to=&limit=.
func (h *ReportsHandler) Audit(c *fiber.Ctx) error {
	var q service.AuditQuery
	if c.Query("staff_id") != "" {
		staffID, err := parseIntQuery(c, "staff_id", 0)
		if err != nil {
			return err
		}
		id := int64(staffID)
		q.StaffID = &id
	}
	var err error
	if q.From, err = parseTimeQuery(c, "from"); err != nil {
		return err
	}
	if q.To, err = parseTimeQuery(c, "to"); err != nil {
		return err
	}
	if q.Limit, err = parseIntQuery(c, "limit", 0); err != nil {
		return err
	}

	entries, err := h.audit.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        e.ID,
			StaffID:   e.StaffID,
			Action:    string(e.Action),
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
