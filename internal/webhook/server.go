package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"sort"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"textflix/internal/agent"
	"textflix/internal/logging"
	"textflix/internal/services"
)

// emptyTwiML acknowledges the webhook without sending an inline reply. The
// agent replies through the Twilio REST API instead so slow turns cannot run
// past Twilio's webhook timeout.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

const signatureHeader = "X-Twilio-Signature"

// MessageHandler processes one inbound SMS.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) (*agent.TurnResult, error)
}

// Server exposes the inbound SMS webhook and a health endpoint.
type Server struct {
	handler MessageHandler
	logger  *slog.Logger

	// authToken and publicURL enable Twilio signature validation. Both must
	// be set; with either blank the webhook accepts unsigned requests, which
	// is only acceptable behind a trusted proxy or in development.
	authToken string
	publicURL string
}

// New builds a webhook server around the message handler.
func New(handler MessageHandler, authToken, publicURL string, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("webhook: message handler required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		handler:   handler,
		logger:    logger.With(logging.String(logging.FieldComponent, "webhook")),
		authToken: authToken,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Routes assembles the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Post("/sms", s.handleSMS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form payload", http.StatusBadRequest)
		return
	}
	if !s.validSignature(r) {
		s.logger.Warn("rejected webhook with bad signature",
			logging.String("remote", r.RemoteAddr))
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	from := strings.TrimSpace(r.PostFormValue("From"))
	body := strings.TrimSpace(r.PostFormValue("Body"))
	messageSID := strings.TrimSpace(r.PostFormValue("MessageSid"))
	if from == "" || body == "" {
		http.Error(w, "From and Body are required", http.StatusBadRequest)
		return
	}

	ctx := services.WithRequestID(r.Context(), uuid.NewString())
	ctx = services.WithMessageSID(ctx, messageSID)
	ctx = services.WithConversationID(ctx, from)
	log := logging.WithContext(ctx, s.logger)
	result, err := s.handler.HandleMessage(ctx, from, body)
	if err != nil {
		// Acknowledge anyway: a 5xx would make Twilio redeliver the message
		// and replay the failing turn.
		log.Error("message handling failed", logging.Error(err),
			logging.Bool("retryable", services.Retryable(err)))
	} else {
		log.Info("processed inbound message",
			logging.Int("dispatch_steps", result.Steps))
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(emptyTwiML))
}

// validSignature checks the X-Twilio-Signature header: base64 HMAC-SHA1 over
// the public URL followed by the sorted form parameters, keyed by the auth
// token.
func (s *Server) validSignature(r *http.Request) bool {
	if s.authToken == "" || s.publicURL == "" {
		return true
	}

	keys := make([]string, 0, len(r.PostForm))
	for key := range r.PostForm {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(s.publicURL)
	for _, key := range keys {
		payload.WriteString(key)
		payload.WriteString(r.PostFormValue(key))
	}

	mac := hmac.New(sha1.New, []byte(s.authToken))
	mac.Write([]byte(payload.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	provided := r.Header.Get(signatureHeader)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
