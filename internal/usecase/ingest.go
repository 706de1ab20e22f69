package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/internal/normalize"
	"gitlab.com/smsdesk/sms-contact-service/internal/observer"
	"gitlab.com/smsdesk/sms-contact-service/internal/validator"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

const previewLength = 80

// ProcessInboundBatch ingests one SMS delivery event. Each PDU is handled
// independently: a PDU that cannot be decoded, has no sender, or fails to
// persist is skipped without aborting the rest of the batch. Only a malformed
// envelope fails the whole event.
func (s *SmsService) ProcessInboundBatch(ctx context.Context, event model.SmsDeliveryEvent) error {
	log := logger.FromContext(ctx)

	if err := validator.Validate(event); err != nil {
		log.Error("Invalid SMS delivery event", zap.Error(err))
		return apperrors.NewFatal(err, "invalid SMS delivery event")
	}

	observer.IncPdusReceived(len(event.PDUs))
	log.Info("Processing inbound SMS batch",
		zap.String("event_id", event.EventID),
		zap.Int("pdu_count", len(event.PDUs)),
	)

	for i, pdu := range event.PDUs {
		s.ingestPDU(ctx, i, pdu)
	}

	return nil
}

func (s *SmsService) ingestPDU(ctx context.Context, index int, pdu model.SmsPDU) {
	log := logger.FromContext(ctx).With(zap.Int("pdu_index", index))

	sender, text, err := pdu.Decode()
	if errors.Is(err, model.ErrNoSender) {
		// Dropped silently, only the metric and a debug line record it.
		observer.IncPduSkipped("no_sender")
		log.Debug("Skipping PDU without sender")
		return
	}
	if err != nil {
		observer.IncPduSkipped("decode_failure")
		log.Warn("Skipping undecodable PDU", zap.Error(err))
		return
	}

	number := normalize.PhoneNumber(sender)
	message := model.Message{
		Msg:    text,
		Date:   utils.NowMillis(),
		IsSend: false,
	}

	contact, created, err := s.messageRepo.CreateWithContact(ctx, number, message)
	if err != nil {
		observer.IncPduSkipped("persist_failure")
		log.Error("Failed to persist inbound message",
			zap.String("tel_number", number),
			zap.Error(err),
		)
		return
	}
	observer.IncMessagePersisted("inbound")

	if created {
		observer.IncContactAutoCreated()
		log.Info("Placeholder contact created for unknown sender",
			zap.Int64("contact_id", contact.ID),
			zap.String("tel_number", number),
		)
		if err := s.notifier.NotifyNewContact(ctx); err != nil {
			log.Error("Failed to publish new-contact notification", zap.Error(err))
		}
	}

	if err := s.notifier.NotifyNewMessage(ctx, contact.ID); err != nil {
		log.Error("Failed to publish new-message notification",
			zap.Int64("contact_id", contact.ID),
			zap.Error(err),
		)
	}

	if s.tracker != nil && !s.tracker.InForeground() {
		s.alerts.ShowNewMessage(ctx, contact, preview(text))
	}
}

func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength]
}
