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

// --- Contact Repository Methods ---

// SaveContact inserts a new contact row. Any caller-supplied id is discarded;
// the id assigned by the database is returned.
func (r *SQLiteRepo) SaveContact(ctx context.Context, contact model.Contact) (int64, error) {
	contact.ID = 0

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Create(&contact).Error
	observer.ObserveDbOperationDuration("save", "contact", time.Since(startTime), err)
	if err != nil {
		wrapped := checkConstraintViolation(err)
		logger.FromContext(ctx).Error("Failed to save contact",
			zap.String("tel_number", contact.TelNumber),
			zap.Error(wrapped),
		)
		return 0, wrapped
	}
	return contact.ID, nil
}

// UpdateContact overwrites the full row keyed by contact.ID.
func (r *SQLiteRepo) UpdateContact(ctx context.Context, contact model.Contact) error {
	if contact.ID == 0 {
		return fmt.Errorf("%w: contact id is required for update", apperrors.ErrBadRequest)
	}

	startTime := utils.Now()
	// Select("*") forces a full-row overwrite: cleared optional fields must be
	// written back as empty, not skipped.
	result := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("id = ?", contact.ID).
		Select("firstname", "lastname", "email", "address", "tel_number", "picture").
		Updates(contact)
	observer.ObserveDbOperationDuration("update", "contact", time.Since(startTime), result.Error)

	if result.Error != nil {
		wrapped := checkConstraintViolation(result.Error)
		logger.FromContext(ctx).Error("Failed to update contact",
			zap.Int64("contact_id", contact.ID),
			zap.Error(wrapped),
		)
		return wrapped
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contact_id %d", apperrors.ErrNotFound, contact.ID)
	}
	return nil
}

// DeleteContact removes the contact row. Messages referencing the contact are
// deliberately left in place.
func (r *SQLiteRepo) DeleteContact(ctx context.Context, id int64) error {
	startTime := utils.Now()
	result := r.db.WithContext(ctx).Delete(&model.Contact{}, id)
	observer.ObserveDbOperationDuration("delete", "contact", time.Since(startTime), result.Error)

	if result.Error != nil {
		wrapped := fmt.Errorf("%w: delete failed: %v", apperrors.ErrDatabase, result.Error)
		logger.FromContext(ctx).Error("Failed to delete contact", zap.Int64("contact_id", id), zap.Error(wrapped))
		return wrapped
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contact_id %d", apperrors.ErrNotFound, id)
	}
	return nil
}

// FindContactByID finds a contact by its ID.
func (r *SQLiteRepo) FindContactByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error
	observer.ObserveDbOperationDuration("find_by_id", "contact", time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		wrapped := fmt.Errorf("%w: query failed: %v", apperrors.ErrDatabase, err)
		logger.FromContext(ctx).Error("Failed to find contact by ID", zap.Int64("contact_id", id), zap.Error(wrapped))
		return nil, wrapped
	}
	return &contact, nil
}

// FindContactByNumber finds a contact by exact match on the stored phone
// number. No normalization happens here; callers normalize first.
func (r *SQLiteRepo) FindContactByNumber(ctx context.Context, telNumber string) (*model.Contact, error) {
	var contact model.Contact

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Where("tel_number = ?", telNumber).First(&contact).Error
	observer.ObserveDbOperationDuration("find_by_number", "contact", time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		wrapped := fmt.Errorf("%w: query failed: %v", apperrors.ErrDatabase, err)
		logger.FromContext(ctx).Error("Failed to find contact by number",
			zap.String("tel_number", telNumber),
			zap.Error(wrapped),
		)
		return nil, wrapped
	}
	return &contact, nil
}

// FindAllContacts returns every contact. Ordering is whatever the store
// yields; the UI re-sorts.
func (r *SQLiteRepo) FindAllContacts(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact

	startTime := utils.Now()
	err := r.db.WithContext(ctx).Find(&contacts).Error
	observer.ObserveDbOperationDuration("find_all", "contact", time.Since(startTime), err)

	if err != nil {
		wrapped := fmt.Errorf("%w: query failed: %v", apperrors.ErrDatabase, err)
		logger.FromContext(ctx).Error("Failed to list contacts", zap.Error(wrapped))
		return nil, wrapped
	}
	if contacts == nil {
		return []model.Contact{}, nil
	}
	return contacts, nil
}
