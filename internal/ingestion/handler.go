package ingestion

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// SmsProcessor is the slice of the service layer the handlers dispatch into.
type SmsProcessor interface {
	ProcessInboundBatch(ctx context.Context, event model.SmsDeliveryEvent) error
	SendMessage(ctx context.Context, cmd model.SendCommand) (*model.Message, error)
}

// RegisterHandlers wires the SMS event handlers onto the router.
func RegisterHandlers(router *Router, service SmsProcessor) {
	router.Register(model.V1SmsInbound, handleInbound(service))
	router.Register(model.V1SmsSend, handleSend(service))
	router.RegisterDefault(handleUnknown)
}

func handleInbound(service SmsProcessor) EventHandler {
	return func(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
		var event model.SmsDeliveryEvent
		if err := utils.UnmarshalJSON(rawEvent, &event); err != nil {
			logger.FromContext(ctx).Error("Failed to decode SMS delivery event", zap.Error(err))
			return apperrors.NewFatal(err, "undecodable SMS delivery event")
		}
		return service.ProcessInboundBatch(ctx, event)
	}
}

func handleSend(service SmsProcessor) EventHandler {
	return func(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
		var cmd model.SendCommand
		if err := utils.UnmarshalJSON(rawEvent, &cmd); err != nil {
			logger.FromContext(ctx).Error("Failed to decode send command", zap.Error(err))
			return apperrors.NewFatal(err, "undecodable send command")
		}
		_, err := service.SendMessage(ctx, cmd)
		return err
	}
}

func handleUnknown(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
	logger.FromContext(ctx).Warn("Dropping event on unknown subject",
		zap.Int("payload_size", len(rawEvent)),
	)
	return nil
}
