package model

import (
	"encoding/base64"
	"errors"
	"strings"
)

// EventType represents different types of bus events
type EventType string

// Subjects consumed and published by the service. The radio publishes one
// delivery event per OS delivery on the inbound subject; UI layers publish
// send commands; the service publishes refresh notifications.
const (
	V1SmsInbound EventType = "v1.sms.inbound"
	V1SmsSend    EventType = "v1.sms.send"

	V1NotifySmsReceived EventType = "v1.notify.sms.received"
	V1NotifyNewContact  EventType = "v1.notify.contact.new"
)

// MapToEventType maps a raw subject string to a known EventType. Suffixed
// subjects (e.g. "v1.sms.inbound.modem0") map to their base type.
func MapToEventType(subject string) (EventType, bool) {
	switch EventType(subject) {
	case V1SmsInbound, V1SmsSend, V1NotifySmsReceived, V1NotifyNewContact:
		return EventType(subject), true
	}

	lastDotIndex := strings.LastIndex(subject, ".")
	if lastDotIndex <= 0 {
		return "", false
	}

	switch EventType(subject[:lastDotIndex]) {
	case V1SmsInbound:
		return V1SmsInbound, true
	case V1SmsSend:
		return V1SmsSend, true
	case V1NotifySmsReceived:
		return V1NotifySmsReceived, true
	case V1NotifyNewContact:
		return V1NotifyNewContact, true
	default:
		return "", false
	}
}

// ErrNoSender marks a PDU whose originating address could not be extracted.
var ErrNoSender = errors.New("pdu has no originating address")

// SmsPDU is one protocol data unit as handed over by the telephony stack: the
// originating address plus the user data payload, base64-encoded.
type SmsPDU struct {
	OriginatingAddress string `json:"originating_address"`
	UserData           string `json:"user_data"`
}

// Decode extracts the sender address and text body from the PDU. A PDU
// without an originating address yields ErrNoSender; undecodable user data is
// a decode failure. Either way the caller skips the PDU.
func (p *SmsPDU) Decode() (sender, body string, err error) {
	if p.OriginatingAddress == "" {
		return "", "", ErrNoSender
	}
	raw, err := base64.StdEncoding.DecodeString(p.UserData)
	if err != nil {
		return "", "", err
	}
	return p.OriginatingAddress, string(raw), nil
}

// SmsDeliveryEvent is the payload of one inbound delivery: the batch of PDUs
// the OS handed over in a single event.
type SmsDeliveryEvent struct {
	EventID string   `json:"event_id"`
	PDUs    []SmsPDU `json:"pdus" validate:"required,min=1"`
}

// SendCommand asks the service to persist and transmit one outbound SMS.
type SendCommand struct {
	ContactID int64  `json:"contact_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
}

// NewSmsNotification is published on V1NotifySmsReceived: UI layers reload
// messages and contact state for this id.
type NewSmsNotification struct {
	ContactID int64 `json:"contact_id"`
}
