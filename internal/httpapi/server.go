package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/smsdesk/sms-contact-service/internal/lifecycle"
	"gitlab.com/smsdesk/sms-contact-service/internal/usecase"
	"gitlab.com/smsdesk/sms-contact-service/pkg/logger"
)

// Server exposes the contact and message API over HTTP.
type Server struct {
	httpServer *http.Server
	service    *usecase.SmsService
	tracker    *lifecycle.Tracker
}

// NewServer builds the router and the underlying http.Server.
func NewServer(port int, service *usecase.SmsService, tracker *lifecycle.Tracker) *Server {
	s := &Server{
		service: service,
		tracker: tracker,
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)

	r.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	r.HandleFunc("/contacts", s.handleCreateContact).Methods(http.MethodPost)
	r.HandleFunc("/contacts/{id:[0-9]+}", s.handleGetContact).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id:[0-9]+}", s.handleUpdateContact).Methods(http.MethodPut)
	r.HandleFunc("/contacts/{id:[0-9]+}", s.handleDeleteContact).Methods(http.MethodDelete)
	r.HandleFunc("/contacts/{id:[0-9]+}/messages", s.handleGetMessages).Methods(http.MethodGet)
	r.HandleFunc("/contacts/{id:[0-9]+}/messages", s.handleSendMessage).Methods(http.MethodPost)
	r.HandleFunc("/contacts/{id:[0-9]+}/picture", s.handleAttachPicture).Methods(http.MethodPost)
	r.HandleFunc("/session/foreground", s.handleForeground).Methods(http.MethodPost)
	r.HandleFunc("/session/background", s.handleBackground).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	logger.Log.Info("HTTP API listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http api server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestIDMiddleware stamps every request with an id carried through the
// context and echoed in the response headers.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := logger.Log.With(zap.String("request_id", requestID))
		ctx := logger.WithLogger(r.Context(), log)
		ctx = logger.WithRequestID(ctx, requestID)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
