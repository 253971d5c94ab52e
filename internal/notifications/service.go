package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"textflix/internal/config"
	"textflix/internal/logging"
	"textflix/internal/services/twilio"
)

// Service defines the outbound SMS surface exposed to the agent and monitor.
type Service interface {
	SendReply(ctx context.Context, to, body string) error
	NotifyDownloadStarted(ctx context.Context, to, title string) error
	NotifyDownloadCompleted(ctx context.Context, to, title string) error
	TestNotification(ctx context.Context, to string) error
}

// NewService builds an SMS notification service backed by Twilio when
// configured. When Twilio credentials are absent, a noop implementation is
// returned.
func NewService(cfg *config.Config, logger *slog.Logger) (Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Twilio.Configured() {
		return noopService{logger: logger}, nil
	}
	sender, err := twilio.New(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.BaseURL)
	if err != nil {
		return nil, err
	}
	return NewSMSService(sender, cfg.Agent.ReplyCharLimit, logger), nil
}

// NewSMSService wires an explicit sender, mainly for tests.
func NewSMSService(sender twilio.Sender, replyLimit int, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &smsService{sender: sender, replyLimit: replyLimit, logger: logger}
}

type smsService struct {
	sender     twilio.Sender
	replyLimit int
	logger     *slog.Logger
}

func (s *smsService) SendReply(ctx context.Context, to, body string) error {
	body = Truncate(strings.TrimSpace(body), s.replyLimit)
	if body == "" {
		return fmt.Errorf("send reply: empty body")
	}
	message, err := s.sender.SendSMS(ctx, to, body)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	s.logger.Info("sent sms reply",
		logging.String("to", to),
		logging.String("message_sid", message.SID),
		logging.Int("chars", len(body)))
	return nil
}

func (s *smsService) NotifyDownloadStarted(ctx context.Context, to, title string) error {
	return s.SendReply(ctx, to, fmt.Sprintf("Your download of %s has started!", strings.TrimSpace(title)))
}

func (s *smsService) NotifyDownloadCompleted(ctx context.Context, to, title string) error {
	return s.SendReply(ctx, to, fmt.Sprintf("%s has finished downloading and is ready to watch!", strings.TrimSpace(title)))
}

func (s *smsService) TestNotification(ctx context.Context, to string) error {
	return s.SendReply(ctx, to, "textflix test notification")
}

type noopService struct {
	logger *slog.Logger
}

func (n noopService) SendReply(ctx context.Context, to, body string) error {
	n.logger.Debug("sms disabled, dropping reply", logging.String("to", to))
	return nil
}

func (n noopService) NotifyDownloadStarted(ctx context.Context, to, title string) error {
	return nil
}

func (n noopService) NotifyDownloadCompleted(ctx context.Context, to, title string) error {
	return nil
}

func (n noopService) TestNotification(ctx context.Context, to string) error {
	return nil
}

// Truncate caps a message at limit runes, reserving room for an ellipsis so
// carriers do not split the reply into multiple segments. A non-positive
// limit disables truncation.
func Truncate(body string, limit int) string {
	if limit <= 0 {
		return body
	}
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
