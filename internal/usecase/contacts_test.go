package usecase

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	busmock "gitlab.com/smsdesk/sms-contact-service/internal/bus/mock"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	storagemock "gitlab.com/smsdesk/sms-contact-service/internal/storage/mock"
	"gitlab.com/smsdesk/sms-contact-service/internal/uinotify"
)

func TestCreateContactNormalizesNumber(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	service := NewSmsService(contactRepo, new(storagemock.MessageRepoMock), new(busmock.NotifierMock), uinotify.NoopNotifier{}, nil, nil)

	contactRepo.On("Save", mock.Anything, mock.MatchedBy(func(c model.Contact) bool {
		return c.TelNumber == "0612345678"
	})).Return(int64(1), nil).Once()

	created, err := service.CreateContact(ctx, model.Contact{
		Firstname: gofakeit.FirstName(),
		Lastname:  gofakeit.LastName(),
		TelNumber: "+33612345678",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "0612345678", created.TelNumber)
	contactRepo.AssertExpectations(t)
}

func TestCreateContactRejectsAllEmpty(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	service := NewSmsService(contactRepo, new(storagemock.MessageRepoMock), new(busmock.NotifierMock), uinotify.NoopNotifier{}, nil, nil)

	_, err := service.CreateContact(ctx, model.Contact{Email: "orphan@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	contactRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateContactRequiresID(t *testing.T) {
	ctx := testContext(t)
	service := NewSmsService(new(storagemock.ContactRepoMock), new(storagemock.MessageRepoMock), new(busmock.NotifierMock), uinotify.NoopNotifier{}, nil, nil)

	err := service.UpdateContact(ctx, model.Contact{Firstname: "Ada", TelNumber: "0611111111"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetMessagesUnknownContact(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	messageRepo := new(storagemock.MessageRepoMock)
	service := NewSmsService(contactRepo, messageRepo, new(busmock.NotifierMock), uinotify.NoopNotifier{}, nil, nil)

	contactRepo.On("FindByID", mock.Anything, int64(99)).
		Return((*model.Contact)(nil), apperrors.ErrNotFound).Once()

	_, err := service.GetMessages(ctx, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	messageRepo.AssertNotCalled(t, "FindByContactID", mock.Anything, mock.Anything)
}

func TestResolveContactKnownNumber(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	notifier := new(busmock.NotifierMock)
	service := NewSmsService(contactRepo, new(storagemock.MessageRepoMock), notifier, uinotify.NoopNotifier{}, nil, nil)

	existing := &model.Contact{ID: 4, Firstname: "Eve", TelNumber: "0612345678"}
	contactRepo.On("FindByNumber", mock.Anything, "0612345678").Return(existing, nil).Once()

	contact, err := service.ResolveContact(ctx, "+33612345678")
	require.NoError(t, err)
	assert.Equal(t, existing, contact)
	contactRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyNewContact", mock.Anything)
}

func TestResolveContactCreatesPlaceholder(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	notifier := new(busmock.NotifierMock)
	service := NewSmsService(contactRepo, new(storagemock.MessageRepoMock), notifier, uinotify.NoopNotifier{}, nil, nil)

	contactRepo.On("FindByNumber", mock.Anything, "0612345678").
		Return((*model.Contact)(nil), apperrors.ErrNotFound).Once()
	contactRepo.On("Save", mock.Anything, mock.MatchedBy(func(c model.Contact) bool {
		return c.Firstname == "0612345678" && c.TelNumber == "0612345678"
	})).Return(int64(21), nil).Once()
	notifier.On("NotifyNewContact", mock.Anything).Return(nil).Once()

	contact, err := service.ResolveContact(ctx, "0612345678")
	require.NoError(t, err)
	assert.Equal(t, int64(21), contact.ID)
	assert.Equal(t, "0612345678", contact.Firstname)
	contactRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestResolveContactLosesInsertRace(t *testing.T) {
	ctx := testContext(t)
	contactRepo := new(storagemock.ContactRepoMock)
	notifier := new(busmock.NotifierMock)
	service := NewSmsService(contactRepo, new(storagemock.MessageRepoMock), notifier, uinotify.NoopNotifier{}, nil, nil)

	winner := &model.Contact{ID: 8, Firstname: "0699999999", TelNumber: "0699999999"}
	contactRepo.On("FindByNumber", mock.Anything, "0699999999").
		Return((*model.Contact)(nil), apperrors.ErrNotFound).Once()
	contactRepo.On("Save", mock.Anything, mock.Anything).
		Return(int64(0), apperrors.ErrDuplicate).Once()
	contactRepo.On("FindByNumber", mock.Anything, "0699999999").
		Return(winner, nil).Once()

	contact, err := service.ResolveContact(ctx, "0699999999")
	require.NoError(t, err)
	assert.Equal(t, winner, contact)
	notifier.AssertNotCalled(t, "NotifyNewContact", mock.Anything)
}
