package model

import (
	"time"
)

// Message represents one SMS, inbound or outbound. Rows are append-only:
// nothing in the service updates or deletes a message once written.
type Message struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ContactID int64  `json:"contactId" gorm:"column:contact_id;not null;index" validate:"required"`
	Msg       string `json:"msg" gorm:"column:msg;type:text;not null" validate:"required"`
	Date      int64  `json:"date" gorm:"column:date;not null"` // milliseconds since epoch, set at creation
	IsSend    bool   `json:"isSend" gorm:"column:is_send;not null"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// Time returns the message date as a UTC time.Time.
func (m *Message) Time() time.Time {
	if m.Date <= 0 {
		return time.Time{}
	}
	return time.Unix(m.Date/1000, (m.Date%1000)*1000000).UTC()
}
