package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/internal/observer"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

// --- Message Repository Methods ---

// SaveMessage inserts a new message row, ignoring any caller-supplied id.
func (r *SQLiteRepo) SaveMessage(ctx context.Context, message model.Message) (int64, error) {
	message.ID = 0

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Create(&message).Error
	observer.ObserveDbOperationDuration("save", "message", time.Since(startTime), err)
	if err != nil {
		wrapped := checkConstraintViolation(err)
		logger.FromContext(ctx).Error("Failed to save message",
			zap.Int64("contact_id", message.ContactID),
			zap.Error(wrapped),
		)
		return 0, wrapped
	}
	return message.ID, nil
}

// FindMessagesByContactID returns the messages belonging to one contact.
// Insertion order is typically preserved by the store but not guaranteed;
// callers needing the thread order sort by date.
func (r *SQLiteRepo) FindMessagesByContactID(ctx context.Context, contactID int64) ([]model.Message, error) {
	var messages []model.Message

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Where("contact_id = ?", contactID).Find(&messages).Error
	observer.ObserveDbOperationDuration("find_by_contact", "message", time.Since(startTime), err)

	if err != nil {
		wrapped := fmt.Errorf("%w: query failed: %v", apperrors.ErrDatabase, err)
		logger.FromContext(ctx).Error("Failed to list messages for contact",
			zap.Int64("contact_id", contactID),
			zap.Error(wrapped),
		)
		return nil, wrapped
	}
	if messages == nil {
		return []model.Message{}, nil
	}
	return messages, nil
}

// CreateMessageWithContact resolves telNumber to a contact and inserts the
// message, all inside one transaction. If no contact matches, a placeholder
// is created first; losing the uniqueness race to a concurrent insert falls
// back to reading the winning row. The returned bool reports whether a new
// contact was created.
func (r *SQLiteRepo) CreateMessageWithContact(ctx context.Context, telNumber string, message model.Message) (*model.Contact, bool, error) {
	var contact model.Contact
	created := false

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("tel_number = ?", telNumber).First(&contact).Error
		if findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contact lookup failed: %v", apperrors.ErrDatabase, findErr)
			}

			contact = model.NewPlaceholderContact(telNumber)
			if createErr := tx.Create(&contact).Error; createErr != nil {
				wrapped := checkConstraintViolation(createErr)
				if !errors.Is(wrapped, apperrors.ErrDuplicate) {
					return wrapped
				}
				// A concurrent resolver won the race; use its row.
				if reErr := tx.Where("tel_number = ?", telNumber).First(&contact).Error; reErr != nil {
					return fmt.Errorf("%w: contact re-read after duplicate failed: %v", apperrors.ErrDatabase, reErr)
				}
			} else {
				created = true
			}
		}

		message.ID = 0
		message.ContactID = contact.ID
		if msgErr := tx.Create(&message).Error; msgErr != nil {
			return checkConstraintViolation(msgErr)
		}
		return nil
	})
	observer.ObserveDbOperationDuration("create_with_contact", "message", time.Since(startTime), err)

	if err != nil {
		logger.FromContext(ctx).Error("Failed to persist inbound message with contact",
			zap.String("tel_number", telNumber),
			zap.Error(err),
		)
		return nil, false, err
	}
	return &contact, created, nil
}
