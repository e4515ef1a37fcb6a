// Package notify dispatches admin notifications for reservation events.
// Dispatch is always fire-and-forget from the caller's point of view: a
// failed send is logged and never blocks the primary action.
package notify

import (
	"context"
	"errors"
	"time"

	tele "gopkg.in/telebot.v3"

	"restobook/config"
	"restobook/pkg/logger"
)

type Notifier interface {
	Send(ctx context.Context, message string) error
}

// New picks a provider by configuration. Unknown kinds and a Telegram
// setup without credentials fall back to the log provider.
func New(cfg config.Config, log logger.ILogger) Notifier {
	switch cfg.NotifyProvider {
	case "noop":
		return noopNotifier{}
	case "telegram":
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
			log.Warning("telegram notifier not configured, falling back to log")
			return logNotifier{log: log}
		}
		n, err := newTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("telegram notifier init failed, falling back to log", logger.Error(err))
			return logNotifier{log: log}
		}
		return n
	default:
		return logNotifier{log: log}
	}
}

type logNotifier struct {
	log logger.ILogger
}

func (n logNotifier) Send(ctx context.Context, message string) error {
	n.log.Info("notification", logger.String("message", message))
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, message string) error {
	return nil
}

type telegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func newTelegramNotifier(token string, chatID int64) (Notifier, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		// The notifier only sends; the poller is never started.
	})
	if err != nil {
		return nil, err
	}
	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *telegramNotifier) Send(ctx context.Context, message string) error {
	if message == "" {
		return errors.New("empty notification message")
	}
	_, err := n.bot.Send(tele.ChatID(n.chatID), message)
	return err
}
