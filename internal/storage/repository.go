package storage

import (
	"context"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
)

// ContactRepo defines contact storage operations
type ContactRepo interface {
	// Save inserts a new contact row, ignoring any caller-supplied id, and
	// returns the id assigned by the database.
	Save(ctx context.Context, contact model.Contact) (int64, error)
	// Update overwrites the full row keyed by contact.ID.
	Update(ctx context.Context, contact model.Contact) error
	// Delete removes the contact row only; messages are left alone.
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Contact, error)
	// FindByNumber matches the stored number exactly; callers normalize first.
	FindByNumber(ctx context.Context, telNumber string) (*model.Contact, error)
	FindAll(ctx context.Context) ([]model.Contact, error)
	Close(ctx context.Context) error
}

// MessageRepo defines message storage operations
type MessageRepo interface {
	Save(ctx context.Context, message model.Message) (int64, error)
	// FindByContactID returns the contact's messages with no ordering
	// guarantee; callers needing the thread order sort by date.
	FindByContactID(ctx context.Context, contactID int64) ([]model.Message, error)
	// CreateWithContact resolves the number to a contact (creating a
	// placeholder inside the same transaction if absent) and inserts the
	// message against it. Reports whether a contact was created.
	CreateWithContact(ctx context.Context, telNumber string, message model.Message) (*model.Contact, bool, error)
	Close(ctx context.Context) error
}
