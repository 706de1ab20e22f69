package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/apperrors"
	"gitlab.com/smsdesk/sms-contact-service/internal/model"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
	"gitlab.com/smsdesk/sms-contact-service/pkg/utils"
)

const maxPictureBytes = 10 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps application errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch {
	case apperrors.IsNotFoundError(err):
		utils.WriteJSONResponse(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case apperrors.IsValidationError(err) || apperrors.IsBadRequestError(err):
		utils.WriteJSONResponse(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case apperrors.IsDuplicateError(err):
		utils.WriteJSONResponse(w, http.StatusConflict, errorResponse{Error: "duplicate resource"})
	default:
		log.Error("Request failed", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewFatal(apperrors.ErrBadRequest, "invalid id %q", raw)
	}
	return id, nil
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.service.ListContacts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, contacts)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var contact model.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeError(w, r, apperrors.NewFatal(apperrors.ErrBadRequest, "undecodable body"))
		return
	}

	created, err := s.service.CreateContact(r.Context(), contact)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, created)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	contact, err := s.service.GetContact(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var contact model.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeError(w, r, apperrors.NewFatal(apperrors.ErrBadRequest, "undecodable body"))
		return
	}
	contact.ID = id

	if err := s.service.UpdateContact(r.Context(), contact); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.service.DeleteContact(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	messages, err := s.service.GetMessages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, messages)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, apperrors.NewFatal(apperrors.ErrBadRequest, "undecodable body"))
		return
	}

	message, err := s.service.SendMessage(r.Context(), model.SendCommand{ContactID: id, Text: body.Text})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, message)
}

func (s *Server) handleAttachPicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPictureBytes))
	if err != nil {
		writeError(w, r, apperrors.NewFatal(apperrors.ErrBadRequest, "unreadable body"))
		return
	}

	if err := s.service.AttachPicture(r.Context(), id, raw); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForeground(w http.ResponseWriter, r *http.Request) {
	s.tracker.OnForeground()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	s.tracker.OnBackground()
	w.WriteHeader(http.StatusNoContent)
}
