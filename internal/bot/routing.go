package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carbazar/ads-bot/internal/flow"
)

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !msg.Chat.IsPrivate() {
		return
	}
	userID := msg.From.ID

	// регистрация при первом же контакте; повторы — no-op
	if _, err := b.users.Upsert(ctx, userID); err != nil {
		b.log.Error("upsert user failed", "user_id", userID, "err", err)
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if b.handleFlowInput(ctx, userID, inputFromMessage(msg)) {
		return
	}
	b.sendText(userID, textNoSession)
}

// inputFromMessage переводит апдейт в тегированный ввод машины
// состояний; текстовые сентинелы шага фото разбираются здесь же.
func inputFromMessage(msg *tgbotapi.Message) flow.Input {
	switch {
	case msg.Contact != nil:
		return flow.Input{Kind: flow.InputContact, Phone: msg.Contact.PhoneNumber}
	case len(msg.Photo) > 0:
		// Telegram присылает размеры по возрастанию — берём самый крупный
		ref := msg.Photo[len(msg.Photo)-1].FileID
		return flow.Input{Kind: flow.InputPhoto, PhotoRef: ref}
	case strings.TrimSpace(msg.Text) == wordPhotosDone:
		return flow.Input{Kind: flow.InputPhotosDone}
	case strings.TrimSpace(msg.Text) == wordPhotosSkip:
		return flow.Input{Kind: flow.InputPhotosSkip}
	default:
		return flow.Input{Kind: flow.InputText, Text: msg.Text}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	switch msg.Command() {
	case "start":
		b.sendText(userID, textGreeting)
	case "newad":
		b.startSubmission(ctx, userID, false)
	case "referral":
		b.startSubmission(ctx, userID, true)
	case "cancel":
		b.cancelSession(userID)
	case "ads":
		b.showApprovedAds(ctx, userID)
	case "pending":
		b.showPending(ctx, userID, 1, nil)
	case "report":
		b.handleReport(ctx, userID)
	case "addadmin":
		b.handleAdminChange(ctx, userID, msg.CommandArguments(), true)
	case "deladmin":
		b.handleAdminChange(ctx, userID, msg.CommandArguments(), false)
	default:
		b.sendText(userID, textGreeting)
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}
	userID := cb.From.ID
	data := cb.Data

	switch {
	case data == "nav:cancel":
		b.answerCallback(cb, "", false)
		b.clearMarkup(cb)
		b.cancelSession(userID)

	case data == "flow:photos:done":
		b.answerCallback(cb, "", false)
		if !b.handleFlowInput(ctx, userID, flow.Input{Kind: flow.InputPhotosDone}) {
			b.sendText(userID, textNoSession)
		}

	case data == "flow:photos:skip":
		b.answerCallback(cb, "", false)
		if !b.handleFlowInput(ctx, userID, flow.Input{Kind: flow.InputPhotosSkip}) {
			b.sendText(userID, textNoSession)
		}

	case strings.HasPrefix(data, "mod:"):
		b.handleModCallback(ctx, cb)

	default:
		b.answerCallback(cb, "", false)
	}
}

// clearMarkup убирает inline-кнопки у сообщения, по которому кликнули,
// чтобы не оставлять «живые» кнопки на отработанных шагах.
func (b *Bot) clearMarkup(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	b.send(tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID, rm))
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
