package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerCreated        EventType = "customer_created"
	EventCustomerDeleted        EventType = "customer_deleted"
	EventTicketCreated          EventType = "ticket_created"
	EventTicketUpdated          EventType = "ticket_updated"
	EventTicketDeleted          EventType = "ticket_deleted"
	EventAppointmentBooked      EventType = "appointment_booked"
	EventAppointmentRescheduled EventType = "appointment_rescheduled"
	EventAppointmentCancelled   EventType = "appointment_cancelled"
)

// AllTypes lists every event type, for subscribers that want everything.
var AllTypes = []EventType{
	EventCustomerCreated,
	EventCustomerDeleted,
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventAppointmentBooked,
	EventAppointmentRescheduled,
	EventAppointmentCancelled,
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, entityID int64, actorID *int64, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID int64                 `json:"customer_id"`
	Category   domain.TicketCategory `json:"category"`
	Urgency    domain.TicketUrgency  `json:"urgency"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus       domain.TicketStatus `json:"old_status"`
	NewStatus       domain.TicketStatus `json:"new_status"`
	AssignedStaffID *int64              `json:"assigned_staff_id,omitempty"`
	Resolution      *domain.Resolution  `json:"resolution,omitempty"`
}

// AppointmentPayload payload for booking, rescheduling and cancellation.
type AppointmentPayload struct {
	CustomerID      int64     `json:"customer_id"`
	StaffID         int64     `json:"staff_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}
