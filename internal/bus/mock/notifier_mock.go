package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// NotifierMock is a testify mock for the bus.Notifier interface.
type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotifyNewMessage(ctx context.Context, contactID int64) error {
	args := m.Called(ctx, contactID)
	return args.Error(0)
}

func (m *NotifierMock) NotifyNewContact(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
