package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/config"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/internal/observer"
	"gitlab.com/smsdesk/sms-contact-service/internal/validator"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// RadioSender is the outbound SMS primitive. Submission failures are logged
// and counted but never reconciled back onto the persisted message.
type RadioSender interface {
	Submit(ctx context.Context, telNumber, text string) error
}

// LogRadioSender stands in for a real radio path. It logs the submission and
// reports success.
type LogRadioSender struct{}

func (LogRadioSender) Submit(ctx context.Context, telNumber, text string) error {
	logger.FromContext(ctx).Info("SMS submitted to radio",
		zap.String("tel_number", telNumber),
		zap.Int("length", len(text)),
	)
	return nil
}

// SendTaskData holds the data for one radio submission task.
type SendTaskData struct {
	Ctx       context.Context
	TelNumber string
	Text      string
}

// Sender manages the worker pool that pushes outbound messages to the radio.
type Sender struct {
	pool       *ants.PoolWithFunc
	radio      RadioSender
	cfg        config.SendWorkerPoolConfig
	baseLogger *zap.Logger
}

// NewSender creates and initializes the outbound worker pool.
func NewSender(cfg config.SendWorkerPoolConfig, radio RadioSender, baseLogger *zap.Logger) (*Sender, error) {
	sender := &Sender{
		radio:      radio,
		cfg:        cfg,
		baseLogger: baseLogger.Named("send_worker"),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		taskData, ok := i.(SendTaskData)
		if !ok {
			sender.baseLogger.Error("Invalid task data type received", zap.Any("data", i))
			return
		}
		sender.processSendTask(taskData)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(err interface{}) {
			sender.baseLogger.Error("Panic recovered in send worker", zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create send worker pool: %w", err)
	}
	sender.pool = pool
	sender.baseLogger.Info("Send worker pool initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Duration("expiry_time", cfg.ExpiryTime),
	)
	return sender, nil
}

// SubmitTask hands one outbound message to the pool.
func (w *Sender) SubmitTask(taskData SendTaskData) error {
	err := w.pool.Invoke(taskData)
	if err != nil {
		w.baseLogger.Warn("Failed to submit send task to pool",
			zap.String("tel_number", taskData.TelNumber),
			zap.Error(err),
		)
		observer.IncRadioSubmit("submit_error")
		if errors.Is(err, ants.ErrPoolOverload) {
			return fmt.Errorf("send pool overload: %w", err)
		}
		return fmt.Errorf("failed to invoke send task: %w", err)
	}
	return nil
}

func (w *Sender) processSendTask(taskData SendTaskData) {
	log := logger.FromContext(taskData.Ctx)

	if err := w.radio.Submit(taskData.Ctx, taskData.TelNumber, taskData.Text); err != nil {
		// The stored message stays marked as sent regardless.
		observer.IncRadioSubmit("failure")
		log.Error("Radio submission failed",
			zap.String("tel_number", taskData.TelNumber),
			zap.Error(err),
		)
		return
	}
	observer.IncRadioSubmit("success")
	log.Debug("Radio submission complete", zap.String("tel_number", taskData.TelNumber))
}

// Stop gracefully shuts down the worker pool.
func (w *Sender) Stop() {
	if w.pool != nil {
		w.baseLogger.Info("Releasing send worker pool")
		start := time.Now()
		w.pool.Release()
		w.baseLogger.Info("Send worker pool released", zap.Duration("duration", time.Since(start)))
	}
}

// SendMessage persists an outbound message for the target contact and hands
// it to the radio worker pool. The persisted row reflects the send attempt,
// not its outcome.
func (s *SmsService) SendMessage(ctx context.Context, cmd model.SendCommand) (*model.Message, error) {
	log := logger.FromContext(ctx)

	if err := validator.Validate(cmd); err != nil {
		log.Warn("Invalid send command", zap.Error(err))
		return nil, apperrors.NewFatal(errors.Join(apperrors.ErrValidation, err), "invalid send command")
	}

	contact, err := s.contactRepo.FindByID(ctx, cmd.ContactID)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "SendMessage")
	}

	message := model.Message{
		ContactID: contact.ID,
		Msg:       cmd.Text,
		Date:      utils.NowMillis(),
		IsSend:    true,
	}
	id, err := s.messageRepo.Save(ctx, message)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "SendMessage")
	}
	message.ID = id
	observer.IncMessagePersisted("outbound")

	if s.sender != nil {
		if err := s.sender.SubmitTask(SendTaskData{
			Ctx:       context.WithoutCancel(ctx),
			TelNumber: contact.TelNumber,
			Text:      cmd.Text,
		}); err != nil {
			log.Error("Failed to queue radio submission", zap.Error(err))
		}
	}

	if err := s.notifier.NotifyNewMessage(ctx, contact.ID); err != nil {
		log.Error("Failed to publish new-message notification", zap.Error(err))
	}

	log.Info("Message sent",
		zap.Int64("message_id", id),
		zap.Int64("contact_id", contact.ID),
	)
	return &message, nil
}
