package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/moderation"
)

// showPending рисует страницу очереди: карточки + кнопки решения по
// каждому id + листание. editMsgID != nil — перерисовка той же страницы.
func (b *Bot) showPending(ctx context.Context, adminID int64, page int, editMsgID *int) {
	p, err := b.mod.ListPending(ctx, adminID, page)
	if err != nil {
		if errors.Is(err, moderation.ErrNotAdmin) {
			b.sendText(adminID, textNotAdmin)
			return
		}
		b.log.Error("list pending failed", "admin_id", adminID, "err", err)
		b.sendText(adminID, textGenericError)
		return
	}
	if p.Total == 0 {
		b.sendText(adminID, textQueueEmpty)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 صف بررسی — %d آگهی در انتظار\n", p.Total)
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i := range p.Ads {
		a := &p.Ads[i]
		sb.WriteString("\n")
		sb.WriteString(renderPendingItem(a))
		sb.WriteString("\n")

		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %d", a.ID), fmt.Sprintf("mod:app:%d", a.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ %d", a.ID), fmt.Sprintf("mod:rej:%d", a.ID)),
		}
		if len(a.Photos) > 0 {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🖼 %d", a.ID), fmt.Sprintf("mod:ph:%d", a.ID)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, pagingRow(p.Page, p.Pages))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)

	if editMsgID != nil {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(adminID, *editMsgID, sb.String(), kb))
		return
	}
	m := tgbotapi.NewMessage(adminID, sb.String())
	m.ReplyMarkup = kb
	b.send(m)
}

func (b *Bot) handleModCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	parts := strings.Split(cb.Data, ":")
	if len(parts) < 2 {
		b.answerCallback(cb, "", false)
		return
	}
	switch parts[1] {
	case "noop":
		b.answerCallback(cb, "", false)

	case "pg":
		b.answerCallback(cb, "", false)
		page := 1
		if len(parts) == 3 {
			if n, ok := parseID(parts[2]); ok {
				page = int(n)
			}
		}
		var editID *int
		if cb.Message != nil {
			editID = &cb.Message.MessageID
		}
		b.showPending(ctx, cb.From.ID, page, editID)

	case "app", "rej":
		if len(parts) != 3 {
			b.answerCallback(cb, "", false)
			return
		}
		adID, ok := parseID(parts[2])
		if !ok {
			b.answerCallback(cb, "", false)
			return
		}
		d := moderation.Reject
		if parts[1] == "app" {
			d = moderation.Approve
		}
		// отвечаем сразу: рассылка может занять заметное время
		b.answerCallback(cb, "", false)
		b.decide(ctx, cb, adID, d)

	case "ph":
		if len(parts) != 3 {
			b.answerCallback(cb, "", false)
			return
		}
		adID, ok := parseID(parts[2])
		if !ok {
			b.answerCallback(cb, "", false)
			return
		}
		b.answerCallback(cb, "", false)
		b.showAdPhotos(ctx, cb.From.ID, adID)
	}
}

// decide применяет решение и шлёт модератору один итог — независимо от
// числа получателей рассылки.
func (b *Bot) decide(ctx context.Context, cb *tgbotapi.CallbackQuery, adID int64, d moderation.Decision) {
	adminID := cb.From.ID
	ad, st, err := b.mod.Decide(ctx, adminID, adID, d)
	switch {
	case errors.Is(err, moderation.ErrNotAdmin):
		b.sendText(adminID, textNotAdmin)
		return
	case errors.Is(err, ads.ErrNotFound):
		b.sendText(adminID, textAdNotFound)
		return
	case errors.Is(err, ads.ErrAlreadyDecided):
		b.sendText(adminID, textAlreadyDecided)
		return
	case err != nil:
		b.log.Error("decide failed", "ad_id", adID, "err", err)
		b.sendText(adminID, textGenericError)
		return
	}

	b.clearMarkup(cb)
	if d == moderation.Approve {
		b.sendText(adminID, fmt.Sprintf(textDecidedOK, ad.ID, st.ChannelPosted, st.Delivered))
		return
	}
	b.sendText(adminID, fmt.Sprintf(textRejectedOK, ad.ID))
}

// showAdPhotos — «все фото» для модератора.
func (b *Bot) showAdPhotos(ctx context.Context, adminID, adID int64) {
	ok, err := b.admins.IsAdmin(ctx, adminID)
	if err != nil || !ok {
		b.sendText(adminID, textNotAdmin)
		return
	}
	ad, err := b.ads.GetByID(ctx, adID)
	if err != nil {
		b.sendText(adminID, textAdNotFound)
		return
	}
	if len(ad.Photos) == 0 {
		b.sendText(adminID, fmt.Sprintf("آگهی %d عکس ندارد.", adID))
		return
	}

	media := make([]interface{}, 0, len(ad.Photos))
	for i, ref := range ad.Photos {
		p := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(ref))
		if i == 0 {
			p.Caption = fmt.Sprintf("عکس‌های آگهی %d", adID)
		}
		media = append(media, p)
	}
	group := tgbotapi.NewMediaGroup(adminID, media)
	if _, err := b.api.SendMediaGroup(group); err != nil {
		b.log.Error("send media group failed", "ad_id", adID, "err", err)
	}
}

// showApprovedAds — /ads: последние одобренные, доступно всем.
func (b *Bot) showApprovedAds(ctx context.Context, userID int64) {
	items, err := b.ads.ListRecent(ctx, ads.StatusApproved, 10)
	if err != nil {
		b.log.Error("list approved failed", "err", err)
		b.sendText(userID, textGenericError)
		return
	}
	if len(items) == 0 {
		b.sendText(userID, textNoApprovedAds)
		return
	}
	for i := range items {
		a := &items[i]
		if len(a.Photos) > 0 {
			msg := tgbotapi.NewPhoto(userID, tgbotapi.FileID(a.Photos[0]))
			msg.Caption = RenderAd(a)
			b.send(msg)
			continue
		}
		b.sendText(userID, RenderAd(a))
	}
}

// handleAdminChange — /addadmin и /deladmin, только для оператора.
func (b *Bot) handleAdminChange(ctx context.Context, userID int64, args string, add bool) {
	if userID != b.operatorID {
		b.sendText(userID, textOperatorOnly)
		return
	}
	target, ok := parseID(args)
	if !ok {
		b.sendText(userID, textAdminUsage)
		return
	}

	var err error
	if add {
		err = b.admins.Add(ctx, target)
	} else {
		err = b.admins.Remove(ctx, target)
	}
	if err != nil {
		b.log.Error("admin change failed", "target", target, "err", err)
		b.sendText(userID, textGenericError)
		return
	}
	if add {
		b.sendText(userID, fmt.Sprintf(textAdminAdded, target))
		return
	}
	b.sendText(userID, fmt.Sprintf(textAdminRemoved, target))
}
