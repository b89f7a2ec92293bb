package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"library-rental-backend/internal/config"
	"library-rental-backend/internal/logger"
)

// TelegramSink sends messages through the Bot API. The destination is a numeric chat id or an
// @channel username. The bot is created on first use, so an unreachable API does not block startup.
type TelegramSink struct {
	token    string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramSink(cfg config.TelegramConfig) *TelegramSink {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramSink{
		token:    cfg.Token,
		endpoint: strings.TrimRight(cfg.APIURL, "/") + "/bot%s/%s",
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *TelegramSink) botAPI() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		return s.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(s.token, s.endpoint, s.client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	s.bot = bot
	return bot, nil
}

func telegramMessage(destination, text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(destination, "@") {
		return tgbotapi.NewMessageToChannel(destination, text), nil
	}
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram chat id %q", destination)
	}
	return tgbotapi.NewMessage(chatID, text), nil
}

func (s *TelegramSink) Send(ctx context.Context, destination, message string) error {
	logger.ExternalServiceCall("telegram", "sendMessage", "chatID", destination)

	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := telegramMessage(destination, message)
	if err != nil {
		logger.ExternalServiceResult("telegram", "sendMessage", err)
		return err
	}
	bot, err := s.botAPI()
	if err != nil {
		logger.ExternalServiceResult("telegram", "sendMessage", err)
		return err
	}
	if _, err := bot.Send(msg); err != nil {
		err = fmt.Errorf("telegram error: %w", err)
		logger.ExternalServiceResult("telegram", "sendMessage", err)
		return err
	}

	logger.ExternalServiceResult("telegram", "sendMessage", nil, "chatID", destination)
	return nil
}
