package bot

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carbazar/ads-bot/internal/broadcast"
)

// Sender — реализация broadcast.Sender поверх Bot API. Единственное
// место, где ошибки Telegram переводятся в словарь рассылки.
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender { return &Sender{api: api} }

func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return mapSendError(err)
}

func (s *Sender) SendPhoto(ctx context.Context, chatID int64, photoRef, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(photoRef))
	msg.Caption = caption
	_, err := s.api.Send(msg)
	return mapSendError(err)
}

// mapSendError: 429 с retry_after -> RateLimitError, 403 -> ErrBlocked
// («Forbidden: bot was blocked by the user» и его варианты).
func mapSendError(err error) error {
	if err == nil {
		return nil
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		if tgErr.RetryAfter > 0 {
			return &broadcast.RateLimitError{RetryAfter: time.Duration(tgErr.RetryAfter) * time.Second}
		}
		if tgErr.Code == 403 {
			return broadcast.ErrBlocked
		}
	}
	return err
}
