package bot

import (
	"bytes"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/flow"
)

// handleReport — /report: Excel со всеми объявлениями, только админам.
func (b *Bot) handleReport(ctx context.Context, adminID int64) {
	ok, err := b.admins.IsAdmin(ctx, adminID)
	if err != nil || !ok {
		b.sendText(adminID, textNotAdmin)
		return
	}

	items, err := b.ads.ListAll(ctx)
	if err != nil {
		b.log.Error("list ads for report failed", "err", err)
		b.sendText(adminID, textGenericError)
		return
	}
	if len(items) == 0 {
		b.sendText(adminID, textNoApprovedAds)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	headers := []string{"id", "user_id", "title", "price", "phone", "status", "referral", "photos", "created_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	var approved, rejected, pending int
	for i := range items {
		a := &items[i]
		switch a.Status {
		case ads.StatusApproved:
			approved++
		case ads.StatusRejected:
			rejected++
		default:
			pending++
		}
		rowIdx := i + 2
		values := []any{
			a.ID, a.UserID, a.Title, flow.FormatPrice(a.Price), a.Phone,
			string(a.Status), a.IsReferral, len(a.Photos),
			a.CreatedAt.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// итоговая строка под таблицей
	totalCell, _ := excelize.CoordinatesToCellName(1, len(items)+3)
	_ = f.SetCellValue(sheet, totalCell, fmt.Sprintf(
		"total: %d, approved: %d, rejected: %d, pending: %d",
		len(items), approved, rejected, pending,
	))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		b.log.Error("write report failed", "err", err)
		b.sendText(adminID, textGenericError)
		return
	}

	doc := tgbotapi.FileBytes{Name: "ads_report.xlsx", Bytes: buf.Bytes()}
	msg := tgbotapi.NewDocument(adminID, doc)
	msg.Caption = fmt.Sprintf("گزارش آگهی‌ها (%d مورد، %d تایید شده)", len(items), approved)
	b.send(msg)
}
