// Package service implements the QueueSmart operations used by the HTTP API
// and the CLI. Every mutation runs in one store transaction together with
// its audit entry; domain events are published only after commit.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/repository"
	"github.com/spec-kit/queuesmart/internal/scheduling"
	"github.com/spec-kit/queuesmart/internal/validation"
)

// Dependencies bundles the collaborators shared by every service.
type Dependencies struct {
	Store      repository.Store
	Validator  *validation.Validator
	Dispatcher events.Dispatcher
	Detector   scheduling.Detector
	Logger     *zap.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

type base struct {
	store      repository.Store
	validate   *validation.Validator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func newBase(deps Dependencies) base {
	b := base{
		store:      deps.Store,
		validate:   deps.Validator,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if b.validate == nil {
		b.validate = validation.MustNew()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// clock returns the current instant in UTC at the store's one-second
// resolution.
func (b base) clock() time.Time {
	return b.now().UTC().Truncate(time.Second)
}

// publishEvent hands a committed change to subscribers. Failures are logged
// and never undo the mutation.
func (b base) publishEvent(ctx context.Context, event events.Event) {
	if b.dispatcher == nil {
		return
	}
	if err := b.dispatcher.Publish(ctx, event); err != nil {
		b.logger.Warn("event publication failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
