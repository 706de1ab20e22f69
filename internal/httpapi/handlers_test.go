package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	busmock "gitlab.com/smsdesk/sms-contact-service/internal/bus/mock"
	"gitlab.com/smsdesk/sms-contact-service/internal/lifecycle"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	storagemock "gitlab.com/smsdesk/sms-contact-service/internal/storage/mock"
	"gitlab.com/smsdesk/sms-contact-service/internal/uinotify"
	"gitlab.com/smsdesk/sms-contact-service/internal/usecase"
)

type apiFixture struct {
	server      *Server
	contactRepo *storagemock.ContactRepoMock
	messageRepo *storagemock.MessageRepoMock
	notifier    *busmock.NotifierMock
	tracker     *lifecycle.Tracker
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	contactRepo := new(storagemock.ContactRepoMock)
	messageRepo := new(storagemock.MessageRepoMock)
	notifier := new(busmock.NotifierMock)
	tracker := lifecycle.NewTracker()

	service := usecase.NewSmsService(contactRepo, messageRepo, notifier, uinotify.NoopNotifier{}, tracker, nil)
	return &apiFixture{
		server:      NewServer(0, service, tracker),
		contactRepo: contactRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
		tracker:     tracker,
	}
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.server.httpServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestCreateContactEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.contactRepo.On("Save", mock.Anything, mock.Anything).Return(int64(5), nil).Once()

	body, _ := json.Marshal(model.Contact{Firstname: "Ada", TelNumber: "+33612345678"})
	rr := f.do(httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	var created model.Contact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, "0612345678", created.TelNumber)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateContactEndpointRejectsEmpty(t *testing.T) {
	f := newAPIFixture(t)

	body, _ := json.Marshal(model.Contact{Email: "only@example.com"})
	rr := f.do(httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	f.contactRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetContactEndpointNotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.contactRepo.On("FindByID", mock.Anything, int64(42)).
		Return((*model.Contact)(nil), apperrors.ErrNotFound).Once()

	rr := f.do(httptest.NewRequest(http.MethodGet, "/contacts/42", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListContactsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.contactRepo.On("FindAll", mock.Anything).Return([]model.Contact{
		{ID: 1, Firstname: "Ada", TelNumber: "0611111111"},
		{ID: 2, Firstname: "Bob", TelNumber: "0622222222"},
	}, nil).Once()

	rr := f.do(httptest.NewRequest(http.MethodGet, "/contacts", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var contacts []model.Contact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &contacts))
	assert.Len(t, contacts, 2)
}

func TestDeleteContactEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.contactRepo.On("Delete", mock.Anything, int64(3)).Return(nil).Once()

	rr := f.do(httptest.NewRequest(http.MethodDelete, "/contacts/3", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	f.contactRepo.AssertExpectations(t)
}

func TestGetMessagesEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	contact := &model.Contact{ID: 7, Firstname: "Eve", TelNumber: "0633333333"}
	f.contactRepo.On("FindByID", mock.Anything, int64(7)).Return(contact, nil).Once()
	f.messageRepo.On("FindByContactID", mock.Anything, int64(7)).Return([]model.Message{
		{ID: 1, ContactID: 7, Msg: "hi", Date: 1000},
		{ID: 2, ContactID: 7, Msg: "there", Date: 2000},
	}, nil).Once()

	rr := f.do(httptest.NewRequest(http.MethodGet, "/contacts/7/messages", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var messages []model.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &messages))
	assert.Len(t, messages, 2)
}

func TestSendMessageEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	contact := &model.Contact{ID: 7, TelNumber: "0633333333"}
	f.contactRepo.On("FindByID", mock.Anything, int64(7)).Return(contact, nil).Once()
	f.messageRepo.On("Save", mock.Anything, mock.Anything).Return(int64(99), nil).Once()
	f.notifier.On("NotifyNewMessage", mock.Anything, int64(7)).Return(nil).Once()

	rr := f.do(httptest.NewRequest(http.MethodPost, "/contacts/7/messages", bytes.NewReader([]byte(`{"text":"yo"}`))))
	require.Equal(t, http.StatusCreated, rr.Code)

	var message model.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &message))
	assert.Equal(t, int64(99), message.ID)
	assert.True(t, message.IsSend)
}

func TestSessionEndpointsDriveTracker(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodPost, "/session/foreground", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, f.tracker.InForeground())

	rr = f.do(httptest.NewRequest(http.MethodPost, "/session/background", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, f.tracker.InForeground())
}

func TestNonNumericIDIsNotRouted(t *testing.T) {
	f := newAPIFixture(t)

	// The route pattern only matches digits, so a non-numeric id is a 404
	// from the router itself.
	rr := f.do(httptest.NewRequest(http.MethodGet, "/contacts/abc", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
