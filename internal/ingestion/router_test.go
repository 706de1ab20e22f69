package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logger.WithLogger(context.Background(), zaptest.NewLogger(t))
}

func TestRouterRoutesExactSubject(t *testing.T) {
	router := NewRouter()
	var gotType model.EventType
	var gotPayload []byte
	router.Register(model.V1SmsInbound, func(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
		gotType = eventType
		gotPayload = rawEvent
		return nil
	})

	err := router.Route(testContext(t), "v1.sms.inbound", []byte(`{"pdus":[]}`))
	require.NoError(t, err)
	assert.Equal(t, model.V1SmsInbound, gotType)
	assert.Equal(t, []byte(`{"pdus":[]}`), gotPayload)
}

func TestRouterRoutesSuffixedSubject(t *testing.T) {
	router := NewRouter()
	called := false
	router.Register(model.V1SmsSend, func(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
		called = true
		return nil
	})

	err := router.Route(testContext(t), "v1.sms.send.modem0", nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRouterFallsBackToDefault(t *testing.T) {
	router := NewRouter()
	var defaultCalled bool
	router.RegisterDefault(func(ctx context.Context, eventType model.EventType, rawEvent []byte) error {
		defaultCalled = true
		return nil
	})

	err := router.Route(testContext(t), "v9.something.else", nil)
	require.NoError(t, err)
	assert.True(t, defaultCalled)
}

func TestRouterNoHandlerNoDefault(t *testing.T) {
	router := NewRouter()
	err := router.Route(testContext(t), "v9.something.else", nil)
	assert.NoError(t, err)
}
