package uinotify

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/internal/normalize"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// Notifier is the user-facing alert port. The core flow calls it when a
// message arrives while no frontend session is active; implementations decide
// what an alert looks like (push gateway, desktop notification, log line).
type Notifier interface {
	ShowNewMessage(ctx context.Context, contact *model.Contact, preview string)
}

// LogNotifier surfaces alerts as structured log entries. It is the default
// implementation for deployments without a push channel.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) ShowNewMessage(ctx context.Context, contact *model.Contact, preview string) {
	logger.FromContext(ctx).Info("new message alert",
		zap.Int64("contact_id", contact.ID),
		zap.String("from", contact.Firstname),
		zap.String("number", normalize.ForDisplay(contact.TelNumber)),
		zap.String("preview", preview),
	)
}

// NoopNotifier suppresses all alerts.
type NoopNotifier struct{}

func (NoopNotifier) ShowNewMessage(ctx context.Context, contact *model.Contact, preview string) {}
