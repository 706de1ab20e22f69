package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/bus"
	"gitlab.com/smsdesk/sms-contact-service/internal/lifecycle"
	"gitlab.com/smsdesk/sms-contact-service/internal/storage"
	"gitlab.com/smsdesk/sms-contact-service/internal/uinotify"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// SmsService implements contact management, inbound SMS ingestion and
// outbound sending on top of the storage and bus ports.
type SmsService struct {
	contactRepo storage.ContactRepo
	messageRepo storage.MessageRepo
	notifier    bus.Notifier
	alerts      uinotify.Notifier
	tracker     *lifecycle.Tracker
	sender      *Sender
}

// NewSmsService creates a new SMS service. The sender may be nil when the
// deployment has no outbound path; SendMessage then persists without
// submitting to a radio.
func NewSmsService(
	contactRepo storage.ContactRepo,
	messageRepo storage.MessageRepo,
	notifier bus.Notifier,
	alerts uinotify.Notifier,
	tracker *lifecycle.Tracker,
	sender *Sender,
) *SmsService {
	return &SmsService{
		contactRepo: contactRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
		alerts:      alerts,
		tracker:     tracker,
		sender:      sender,
	}
}

// handleRepositoryError maps standard apperrors from the repository layer
// to FatalError or RetryableError for the use case layer.
func handleRepositoryError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)

	logFields := []zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		log.Warn("Repository operation failed: Not found", logFields...)
		return apperrors.NewFatal(err, "%s failed: resource not found", operation)
	}
	if errors.Is(err, apperrors.ErrDuplicate) {
		log.Warn("Repository operation failed: Duplicate resource", logFields...)
		return apperrors.NewFatal(err, "%s failed: duplicate resource", operation)
	}
	if errors.Is(err, apperrors.ErrBadRequest) {
		log.Warn("Repository operation failed: Bad request", logFields...)
		return apperrors.NewFatal(err, "%s failed: bad request data", operation)
	}
	if errors.Is(err, apperrors.ErrDatabase) {
		log.Error("Repository operation failed: Database error", logFields...)
		return apperrors.NewRetryable(err, "%s failed: database error", operation)
	}

	log.Error("Repository operation failed: Unexpected error", logFields...)
	return apperrors.NewFatal(err, "%s failed: unexpected repository error", operation)
}
