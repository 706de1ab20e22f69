package storage

import (
	"context"

	"gitlab.com/smsdesk/sms-contact-service/internal/model"
)

// ContactRepoAdapter adapts the SQLiteRepo to the ContactRepo interface
type ContactRepoAdapter struct {
	sqlite *SQLiteRepo
}

// NewContactRepoAdapter creates a new contact repository adapter
func NewContactRepoAdapter(sqlite *SQLiteRepo) ContactRepo {
	return &ContactRepoAdapter{sqlite: sqlite}
}

func (a *ContactRepoAdapter) Save(ctx context.Context, contact model.Contact) (int64, error) {
	return a.sqlite.SaveContact(ctx, contact)
}

func (a *ContactRepoAdapter) Update(ctx context.Context, contact model.Contact) error {
	return a.sqlite.UpdateContact(ctx, contact)
}

func (a *ContactRepoAdapter) Delete(ctx context.Context, id int64) error {
	return a.sqlite.DeleteContact(ctx, id)
}

func (a *ContactRepoAdapter) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	return a.sqlite.FindContactByID(ctx, id)
}

func (a *ContactRepoAdapter) FindByNumber(ctx context.Context, telNumber string) (*model.Contact, error) {
	return a.sqlite.FindContactByNumber(ctx, telNumber)
}

func (a *ContactRepoAdapter) FindAll(ctx context.Context) ([]model.Contact, error) {
	return a.sqlite.FindAllContacts(ctx)
}

func (a *ContactRepoAdapter) Close(ctx context.Context) error {
	return a.sqlite.Close(ctx)
}

// MessageRepoAdapter adapts the SQLiteRepo to the MessageRepo interface
type MessageRepoAdapter struct {
	sqlite *SQLiteRepo
}

// NewMessageRepoAdapter creates a new message repository adapter
func NewMessageRepoAdapter(sqlite *SQLiteRepo) MessageRepo {
	return &MessageRepoAdapter{sqlite: sqlite}
}

func (a *MessageRepoAdapter) Save(ctx context.Context, message model.Message) (int64, error) {
	return a.sqlite.SaveMessage(ctx, message)
}

func (a *MessageRepoAdapter) FindByContactID(ctx context.Context, contactID int64) ([]model.Message, error) {
	return a.sqlite.FindMessagesByContactID(ctx, contactID)
}

func (a *MessageRepoAdapter) CreateWithContact(ctx context.Context, telNumber string, message model.Message) (*model.Contact, bool, error) {
	return a.sqlite.CreateMessageWithContact(ctx, telNumber, message)
}

func (a *MessageRepoAdapter) Close(ctx context.Context) error {
	return a.sqlite.Close(ctx)
}
