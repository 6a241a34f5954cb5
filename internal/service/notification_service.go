package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/events"
)

// NotificationService records domain events in the structured log so desk
// activity can be followed without querying the store.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventAppointmentBooked, n.handleAppointment)
	n.dispatcher.Subscribe(events.EventAppointmentRescheduled, n.handleAppointment)
	n.dispatcher.Subscribe(events.EventAppointmentCancelled, n.handleAppointment)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		fields = append(fields,
			zap.Int64("customer_id", payload.CustomerID),
			zap.String("category", string(payload.Category)),
			zap.String("urgency", string(payload.Urgency)))
	}
	n.logger.Info("TicketCreated", fields...)
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.TicketUpdatedPayload); ok {
		fields = append(fields,
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
		if payload.AssignedStaffID != nil {
			fields = append(fields, zap.Int64("assigned_staff_id", *payload.AssignedStaffID))
		}
	}
	n.logger.Info("TicketUpdated", fields...)
	return nil
}

func (n *NotificationService) handleAppointment(ctx context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.AppointmentPayload); ok {
		fields = append(fields,
			zap.Int64("staff_id", payload.StaffID),
			zap.Int64("customer_id", payload.CustomerID),
			zap.Time("start", payload.Start),
			zap.Int("duration_minutes", payload.DurationMinutes))
	}
	n.logger.Info("AppointmentChanged", fields...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Int64("entity_id", event.EntityID),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.Int64("actor_id", *event.ActorID))
	}
	return fields
}
