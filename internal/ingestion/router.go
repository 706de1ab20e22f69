package ingestion

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// EventHandler defines a function that processes events
type EventHandler func(ctx context.Context, eventType model.EventType, rawEvent []byte) error

// Router routes events to the appropriate handler based on the subject they
// arrived on.
type Router struct {
	handlers map[model.EventType]EventHandler
	// Default handler for unknown subjects
	defaultHandler EventHandler
}

// NewRouter creates a new event router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[model.EventType]EventHandler),
	}
}

// Register registers a handler for an event type
func (r *Router) Register(eventType model.EventType, handler EventHandler) {
	r.handlers[eventType] = handler
}

// RegisterDefault registers a default handler for unknown subjects
func (r *Router) RegisterDefault(handler EventHandler) {
	r.defaultHandler = handler
}

// Route maps the subject to its handler and dispatches the payload. Suffixed
// subjects fall back to their base type, so per-modem subjects share one
// handler.
func (r *Router) Route(ctx context.Context, subject string, rawEvent []byte) error {
	log := logger.FromContext(ctx).With(zap.String("subject", subject))
	ctx = logger.WithLogger(ctx, log)

	eventType, found := model.MapToEventType(subject)
	if !found {
		log.Warn("Could not map subject to a known event type")
	}

	log.Info("Event received",
		zap.String("payload_size", utils.ByteCountSI(len(rawEvent))),
		zap.String("event_type", string(eventType)),
	)

	handler, ok := r.handlers[eventType]
	if !ok && r.defaultHandler != nil {
		log.Warn("No specific handler for event type, using default")
		return r.defaultHandler(ctx, eventType, rawEvent)
	} else if !ok {
		log.Error("No handler registered for event type")
		return nil
	}

	return handler(ctx, eventType, rawEvent)
}
