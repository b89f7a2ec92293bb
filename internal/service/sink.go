package service

import (
	"context"
	"fmt"
	"time"

	"library-rental-backend/internal/config"
	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"
)

// LogSink writes notifications to the application log. Used in development.
type LogSink struct{}

func (LogSink) Send(ctx context.Context, destination, message string) error {
	logger.InfoContext(ctx, "Notification", "destination", destination, "message", message)
	return nil
}

// RecordingSink stores every delivery attempt made through next, successful or not.
// A failure to store is logged and does not change the delivery result.
type RecordingSink struct {
	next    NotificationSink
	channel domain.NotificationChannel
	repo    repository.NotificationRepository
	now     func() time.Time
}

func NewRecordingSink(next NotificationSink, channel domain.NotificationChannel, repo repository.NotificationRepository) *RecordingSink {
	return &RecordingSink{next: next, channel: channel, repo: repo, now: time.Now}
}

func (s *RecordingSink) Send(ctx context.Context, destination, message string) error {
	sendErr := s.next.Send(ctx, destination, message)

	note := &domain.Notification{
		Channel:     s.channel,
		Destination: destination,
		Message:     message,
		Delivered:   sendErr == nil,
		CreatedOn:   s.now(),
	}
	if sendErr != nil {
		note.Error = sendErr.Error()
	}
	if err := s.repo.Create(ctx, note); err != nil {
		logger.ErrorContext(ctx, "Failed to record notification", "channel", s.channel, "error", err)
	}
	return sendErr
}

// NewNotificationSink builds the sink selected by cfg.Channel. cfg is expected to have passed
// config validation.
func NewNotificationSink(cfg config.NotificationConfig) (NotificationSink, error) {
	switch domain.NotificationChannel(cfg.Channel) {
	case domain.NotificationChannelLog, "":
		return LogSink{}, nil
	case domain.NotificationChannelTelegram:
		return NewTelegramSink(cfg.Telegram), nil
	case domain.NotificationChannelSendGrid:
		return NewSendGridSink(cfg.SendGrid), nil
	default:
		return nil, fmt.Errorf("unsupported notification channel: %q", cfg.Channel)
	}
}
