package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/flow"
	"github.com/carbazar/ads-bot/internal/infra/metrics"
)

// startSubmission открывает новую сессию; прежняя незаконченная,
// если была, молча перезаписывается.
func (b *Bot) startSubmission(ctx context.Context, userID int64, isReferral bool) {
	u, err := b.users.Upsert(ctx, userID)
	if err != nil {
		b.log.Error("upsert user failed", "user_id", userID, "err", err)
		b.sendText(userID, textGenericError)
		return
	}
	known := ""
	if u.Phone != nil {
		known = *u.Phone
	}
	b.sessions.Start(userID, flow.NewDraft(userID, isReferral, known))

	m := tgbotapi.NewMessage(userID, textAskTitle)
	m.ReplyMarkup = cancelKeyboard()
	b.send(m)
}

// handleFlowInput прогоняет один ввод через машину состояний.
// false — активной сессии нет, апдейт не про подачу объявления.
func (b *Bot) handleFlowInput(ctx context.Context, userID int64, in flow.Input) bool {
	return b.sessions.Do(userID, func(d *flow.Draft) bool {
		reply := d.Advance(in)
		if d.State == flow.StateDone {
			// сессия снимается безусловно — даже если вставка упала
			b.finishDraft(ctx, userID, d)
			return false
		}
		b.sendReply(userID, reply, d)
		return true
	})
}

func (b *Bot) sendReply(userID int64, r flow.Reply, d *flow.Draft) {
	var (
		text string
		kb   any
	)
	switch r {
	case flow.ReplyAskDescription:
		text, kb = textAskDescription, cancelKeyboard()
	case flow.ReplyAskPrice:
		text, kb = textAskPrice, cancelKeyboard()
	case flow.ReplyAskPhotos:
		text, kb = textAskPhotos, photosKeyboard(false)
	case flow.ReplyAskPhone:
		text, kb = textAskPhone, phoneKeyboard()
	case flow.ReplyTitleInvalid:
		text, kb = textTitleInvalid, cancelKeyboard()
	case flow.ReplyDescriptionInvalid:
		text, kb = textDescriptionInvalid, cancelKeyboard()
	case flow.ReplyPriceInvalid:
		text, kb = textPriceInvalid, cancelKeyboard()
	case flow.ReplyPhotoAdded:
		text = fmt.Sprintf(textPhotoAdded, len(d.Photos), flow.MaxPhotos)
		kb = photosKeyboard(true)
	case flow.ReplyPhotoLimit:
		text, kb = textPhotoLimit, photosKeyboard(true)
	case flow.ReplyPhotosUnexpected:
		text, kb = textPhotosUnexpected, photosKeyboard(len(d.Photos) > 0)
	case flow.ReplySkipNotFirst:
		text, kb = textSkipNotFirst, photosKeyboard(true)
	case flow.ReplyPhoneInvalid:
		text, kb = textPhoneInvalid, phoneKeyboard()
	default:
		return
	}
	m := tgbotapi.NewMessage(userID, text)
	m.ReplyMarkup = kb
	b.send(m)
}

// finishDraft — терминальный шаг: вставка pending-записи, телефон в
// профиль, копия каждому админу. Ошибка хранилища превращается в общее
// извинение, автоповтора нет.
func (b *Bot) finishDraft(ctx context.Context, userID int64, d *flow.Draft) {
	a := &ads.Ad{
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Photos:      d.Photos,
		Phone:       d.Phone,
		Status:      ads.StatusPending,
		IsReferral:  d.IsReferral,
		CreatedAt:   time.Now(),
	}
	id, err := b.ads.Create(ctx, a)
	if err != nil {
		b.log.Error("insert ad failed", "user_id", userID, "err", err)
		m := tgbotapi.NewMessage(userID, textSaveFailed)
		m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(m)
		return
	}
	a.ID = id
	metrics.SubmissionsSaved.Inc()

	if d.KnownPhone == "" {
		if err := b.users.SetPhone(ctx, userID, d.Phone); err != nil {
			b.log.Error("save phone failed", "user_id", userID, "err", err)
		}
	}

	m := tgbotapi.NewMessage(userID, textSaved)
	m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(m)

	b.notifyAdmins(ctx, a)
}

func (b *Bot) cancelSession(userID int64) {
	if b.sessions.End(userID) {
		m := tgbotapi.NewMessage(userID, textCancelled)
		m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(m)
		return
	}
	b.sendText(userID, textNoSession)
}
