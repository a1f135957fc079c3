package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carbazar/ads-bot/internal/domain/admins"
	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/domain/users"
	"github.com/carbazar/ads-bot/internal/moderation"
	"github.com/carbazar/ads-bot/internal/session"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	users    *users.Repo
	ads      *ads.Repo
	admins   *admins.Repo
	sessions *session.Store
	mod      *moderation.Service

	operatorID int64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	usersRepo *users.Repo, adsRepo *ads.Repo, adminsRepo *admins.Repo,
	sessions *session.Store, operatorID int64) *Bot {

	return &Bot{
		api: api, log: log,
		users: usersRepo, ads: adsRepo, admins: adminsRepo,
		sessions:   sessions,
		operatorID: operatorID,
	}
}

// SetModeration подключает сервис после создания: бот сам является его
// нотификатором, поэтому собрать всё одним конструктором нельзя.
func (b *Bot) SetModeration(m *moderation.Service) { b.mod = m }

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

// NotifySubmitter — итог модерации автору. Ошибка доставки только
// логируется: решение уже применено, откатывать нечего.
func (b *Bot) NotifySubmitter(_ context.Context, ad *ads.Ad, approved bool) {
	text := fmt.Sprintf(textRejectedNote, ad.Title)
	if approved {
		text = fmt.Sprintf(textApprovedNote, ad.Title)
	}
	b.sendText(ad.UserID, text)
}

// notifyAdmins рассылает свежеподанное объявление всем админам
// с кнопками решения.
func (b *Bot) notifyAdmins(ctx context.Context, ad *ads.Ad) {
	ids, err := b.admins.List(ctx)
	if err != nil {
		b.log.Error("list admins failed", "err", err)
		return
	}
	text := "🆕 در انتظار تایید:\n\n" + renderPendingItem(ad)
	kb := moderationKeyboard(ad.ID, len(ad.Photos) > 0)
	for _, id := range ids {
		if len(ad.Photos) > 0 {
			msg := tgbotapi.NewPhoto(id, tgbotapi.FileID(ad.Photos[0]))
			msg.Caption = text
			msg.ReplyMarkup = kb
			b.send(msg)
			continue
		}
		msg := tgbotapi.NewMessage(id, text)
		msg.ReplyMarkup = kb
		b.send(msg)
	}
}
