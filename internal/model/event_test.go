package model

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToEventType(t *testing.T) {
	tests := []struct {
		subject string
		want    EventType
		found   bool
	}{
		{"v1.sms.inbound", V1SmsInbound, true},
		{"v1.sms.send", V1SmsSend, true},
		{"v1.notify.sms.received", V1NotifySmsReceived, true},
		{"v1.notify.contact.new", V1NotifyNewContact, true},
		{"v1.sms.inbound.modem0", V1SmsInbound, true},
		{"v1.sms.send.ui1", V1SmsSend, true},
		{"v2.sms.inbound", "", false},
		{"garbage", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.subject, func(t *testing.T) {
			got, found := MapToEventType(tc.subject)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPduDecode(t *testing.T) {
	pdu := SmsPDU{
		OriginatingAddress: "+33612345678",
		UserData:           base64.StdEncoding.EncodeToString([]byte("salut")),
	}

	sender, body, err := pdu.Decode()
	require.NoError(t, err)
	assert.Equal(t, "+33612345678", sender)
	assert.Equal(t, "salut", body)
}

func TestPduDecodeNoSender(t *testing.T) {
	pdu := SmsPDU{UserData: base64.StdEncoding.EncodeToString([]byte("orphan"))}

	_, _, err := pdu.Decode()
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestPduDecodeBadUserData(t *testing.T) {
	pdu := SmsPDU{OriginatingAddress: "0612345678", UserData: "%%% not base64 %%%"}

	_, _, err := pdu.Decode()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSender)
}
