package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/config"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// Subscriber is the slice of the bus client the consumer needs.
type Subscriber interface {
	QueueSubscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// Consumer subscribes to the inbound and send subjects and feeds every
// delivery through the router.
type Consumer struct {
	client Subscriber
	router *Router
	cfg    config.NATSConfig
	subs   []*nats.Subscription
}

// NewConsumer creates a consumer bound to the given router.
func NewConsumer(client Subscriber, router *Router, cfg config.NATSConfig) *Consumer {
	return &Consumer{
		client: client,
		router: router,
		cfg:    cfg,
	}
}

// Start opens the subscriptions. Each subject is subscribed both exactly and
// with a trailing wildcard so per-modem suffixes reach the same handler.
func (c *Consumer) Start(ctx context.Context) error {
	log := logger.FromContext(ctx)

	for _, subject := range []string{c.cfg.InboundSubject, c.cfg.SendSubject} {
		for _, pattern := range []string{subject, subject + ".>"} {
			sub, err := c.client.QueueSubscribe(pattern, c.handleMessage)
			if err != nil {
				return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
			}
			c.subs = append(c.subs, sub)
			log.Info("Subscribed", zap.String("subject", pattern), zap.String("queue_group", c.cfg.QueueGroup))
		}
	}

	return nil
}

// handleMessage is the NATS callback for every delivery. Panics in handlers
// are recovered here so one poisoned payload cannot take the subscriber down.
func (c *Consumer) handleMessage(msg *nats.Msg) {
	requestID := uuid.NewString()
	log := logger.Log.With(zap.String("request_id", requestID))
	ctx := logger.WithLogger(context.Background(), log)
	ctx = logger.WithRequestID(ctx, requestID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while handling message",
				zap.String("subject", msg.Subject),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if err := c.router.Route(ctx, msg.Subject, msg.Data); err != nil {
		log.Error("Failed to process message",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// Stop unsubscribes from all subjects.
func (c *Consumer) Stop(ctx context.Context) {
	log := logger.FromContext(ctx)
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Warn("Failed to unsubscribe", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	c.subs = nil
}
