package worker

import (
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/service"
)

// Subscribers are the post-commit consumers of domain events. Nil members
// are skipped.
type Subscribers struct {
	Notifications *service.NotificationService
	Reports       *service.ReportService
	Broker        *events.AMQPPublisher
}

// StartNotificationWorker registers every configured subscriber on d.
func StartNotificationWorker(d events.Dispatcher, subs Subscribers) {
	if d == nil {
		return
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.Reports != nil {
		events.SubscribeAll(d, subs.Reports.HandleEvent)
	}
	if subs.Broker != nil {
		events.SubscribeAll(d, subs.Broker.Handle)
	}
}
