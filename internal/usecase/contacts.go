package usecase

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/internal/normalize"
	"gitlab.com/smsdesk/sms-contact-service/internal/observer"
	"gitlab.com/smsdesk/sms-contact-service/internal/picture"
	"gitlab.com/smsdesk/sms-contact-service/internal/validator"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// CreateContact validates and persists a user-created contact, returning it
// with the assigned id. The phone number is normalized before storage so it
// matches inbound sender lookups.
func (s *SmsService) CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	log := logger.FromContext(ctx)

	if contact.Firstname == "" && contact.Lastname == "" && contact.TelNumber == "" {
		return nil, apperrors.NewFatal(apperrors.ErrValidation, "contact needs at least a name or a number")
	}

	contact.TelNumber = normalize.PhoneNumber(contact.TelNumber)

	if err := validator.Validate(contact); err != nil {
		log.Warn("Contact validation failed", zap.Error(err))
		return nil, apperrors.NewFatal(errors.Join(apperrors.ErrValidation, err), "invalid contact")
	}

	id, err := s.contactRepo.Save(ctx, contact)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "CreateContact")
	}
	contact.ID = id

	log.Info("Contact created",
		zap.Int64("contact_id", id),
		zap.String("tel_number", contact.TelNumber),
	)
	return &contact, nil
}

// UpdateContact overwrites the stored contact identified by contact.ID.
func (s *SmsService) UpdateContact(ctx context.Context, contact model.Contact) error {
	if contact.ID <= 0 {
		return apperrors.NewFatal(apperrors.ErrValidation, "contact id is required")
	}
	if contact.Firstname == "" && contact.Lastname == "" && contact.TelNumber == "" {
		return apperrors.NewFatal(apperrors.ErrValidation, "contact needs at least a name or a number")
	}

	contact.TelNumber = normalize.PhoneNumber(contact.TelNumber)

	if err := validator.Validate(contact); err != nil {
		return apperrors.NewFatal(errors.Join(apperrors.ErrValidation, err), "invalid contact")
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return handleRepositoryError(ctx, err, "UpdateContact")
	}

	logger.FromContext(ctx).Info("Contact updated", zap.Int64("contact_id", contact.ID))
	return nil
}

// DeleteContact removes the contact row. Messages referencing the contact are
// intentionally left in place; history survives the contact.
func (s *SmsService) DeleteContact(ctx context.Context, id int64) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(ctx, err, "DeleteContact")
	}
	logger.FromContext(ctx).Info("Contact deleted", zap.Int64("contact_id", id))
	return nil
}

// GetContact fetches a contact by id.
func (s *SmsService) GetContact(ctx context.Context, id int64) (*model.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "GetContact")
	}
	return contact, nil
}

// ListContacts returns all stored contacts.
func (s *SmsService) ListContacts(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.contactRepo.FindAll(ctx)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "ListContacts")
	}
	return contacts, nil
}

// GetMessages returns the message history for a contact, checking first that
// the contact exists so a dangling id yields not-found instead of an empty
// thread.
func (s *SmsService) GetMessages(ctx context.Context, contactID int64) ([]model.Message, error) {
	if _, err := s.contactRepo.FindByID(ctx, contactID); err != nil {
		return nil, handleRepositoryError(ctx, err, "GetMessages")
	}

	messages, err := s.messageRepo.FindByContactID(ctx, contactID)
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "GetMessages")
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].Date < messages[j].Date })
	return messages, nil
}

// AttachPicture scales the raw image down and stores it on the contact as
// base64 PNG.
func (s *SmsService) AttachPicture(ctx context.Context, contactID int64, raw []byte) error {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return handleRepositoryError(ctx, err, "AttachPicture")
	}

	encoded, err := picture.Process(raw)
	if err != nil {
		return apperrors.NewFatal(errors.Join(apperrors.ErrValidation, err), "unusable picture")
	}

	contact.Picture = encoded
	if err := s.contactRepo.Update(ctx, *contact); err != nil {
		return handleRepositoryError(ctx, err, "AttachPicture")
	}

	logger.FromContext(ctx).Info("Contact picture updated", zap.Int64("contact_id", contactID))
	return nil
}

// ResolveContact maps a raw sender number to a stored contact, creating a
// placeholder when the number is unknown. The creation emits the new-contact
// notification exactly once; losing a concurrent insert race resolves to the
// winner's row without a second notification.
func (s *SmsService) ResolveContact(ctx context.Context, rawNumber string) (*model.Contact, error) {
	log := logger.FromContext(ctx)
	number := normalize.PhoneNumber(rawNumber)

	contact, err := s.contactRepo.FindByNumber(ctx, number)
	if err == nil {
		return contact, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, handleRepositoryError(ctx, err, "ResolveContact")
	}

	placeholder := model.NewPlaceholderContact(number)
	id, err := s.contactRepo.Save(ctx, placeholder)
	if errors.Is(err, apperrors.ErrDuplicate) {
		// Lost the race against another resolver; the winner's row is the contact.
		return s.contactRepo.FindByNumber(ctx, number)
	}
	if err != nil {
		return nil, handleRepositoryError(ctx, err, "ResolveContact")
	}
	placeholder.ID = id
	observer.IncContactAutoCreated()

	log.Info("Placeholder contact created for unknown sender",
		zap.Int64("contact_id", id),
		zap.String("tel_number", number),
	)
	if err := s.notifier.NotifyNewContact(ctx); err != nil {
		log.Error("Failed to publish new-contact notification", zap.Error(err))
	}

	return &placeholder, nil
}
