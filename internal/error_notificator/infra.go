package error_notificator

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram limits a message to 4096 characters.
const maxMessageLen = 4000

const sendTimeout = 10 * time.Second

type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
	service     string
}

func NewInfra(bot *tgbotapi.BotAPI, adminChatID int64, service string) *Infra {
	return &Infra{bot: bot, adminChatID: adminChatID, service: service}
}

// NewTelegramInfra logs in with token; it calls getMe, so it needs network.
func NewTelegramInfra(token string, adminChatID int64, service string) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return NewInfra(bot, adminChatID, service), nil
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	text := fmt.Sprintf(
		"❗ Error in %s\n\nError: %v\n\nDetails: %s",
		i.service,
		err,
		details,
	)
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen]) + "…"
	}

	// bot.Send не знает про ctx
	done := make(chan error, 1)
	go func() {
		_, err := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text))
		done <- err
	}()

	var sendErr error
	select {
	case <-ctx.Done():
		sendErr = ctx.Err()
	case sendErr = <-done:
	}
	if sendErr != nil {
		log.Printf("[error_notificator] send fail to %d: %v", i.adminChatID, sendErr)
		return sendErr
	}

	return nil
}
