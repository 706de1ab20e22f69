package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/config"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// Client wraps the NATS connection used for both ingestion subscriptions and
// outbound notifications.
type Client struct {
	nc  *nats.Conn
	cfg config.NATSConfig
}

// Ensure Client implements Notifier
var _ Notifier = (*Client)(nil)

// NewClient connects to NATS and blocks until the connection is established,
// retrying with exponential backoff for up to a minute.
func NewClient(cfg config.NATSConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, s *nats.Subscription, err error) {
			logger.Log.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// RetryOnFailedConnect hands back a connection that may still be dialing.
	// Wait for it to actually come up before reporting ready.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = time.Minute
	err = backoff.Retry(func() error {
		if !nc.IsConnected() {
			return fmt.Errorf("NATS connection not established yet")
		}
		return nil
	}, expBackoff)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("timed out waiting for NATS connection to %s: %w", cfg.URL, err)
	}

	return &Client{nc: nc, cfg: cfg}, nil
}

// NotifyNewMessage publishes the received-message notification carrying the
// contact ID the message was filed under.
func (c *Client) NotifyNewMessage(ctx context.Context, contactID int64) error {
	payload := struct {
		ContactID int64 `json:"contact_id"`
	}{ContactID: contactID}

	if err := c.nc.Publish(c.cfg.NotifyReceived, utils.MustMarshalJSON(payload)); err != nil {
		return apperrors.NewFatal(err, "failed to publish on %s", c.cfg.NotifyReceived)
	}
	logger.FromContext(ctx).Debug("published notification",
		zap.String("subject", c.cfg.NotifyReceived),
		zap.Int64("contact_id", contactID),
	)
	return nil
}

// NotifyNewContact publishes the new-contact notification. The payload is an
// empty object; listeners re-query the contact list rather than trusting a
// snapshot in the event.
func (c *Client) NotifyNewContact(ctx context.Context) error {
	if err := c.nc.Publish(c.cfg.NotifyNewContact, []byte("{}")); err != nil {
		return apperrors.NewFatal(err, "failed to publish on %s", c.cfg.NotifyNewContact)
	}
	logger.FromContext(ctx).Debug("published notification",
		zap.String("subject", c.cfg.NotifyNewContact),
	)
	return nil
}

// QueueSubscribe subscribes to a subject within the service's queue group so
// that horizontally scaled instances share the work.
func (c *Client) QueueSubscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := c.nc.QueueSubscribe(subject, c.cfg.QueueGroup, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// NatsConn returns the underlying *nats.Conn
func (c *Client) NatsConn() *nats.Conn {
	return c.nc
}

// Close drains pending messages and closes the NATS connection.
func (c *Client) Close() {
	if c.nc != nil {
		if err := c.nc.Drain(); err != nil {
			logger.Log.Warn("failed to drain NATS connection", zap.Error(err))
			c.nc.Close()
		}
	}
}
