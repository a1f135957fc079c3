package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ انصراف", "nav:cancel"),
		),
	)
}

func photosKeyboard(hasPhotos bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✅ "+wordPhotosDone, "flow:photos:done"),
	}
	if !hasPhotos {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🚫 "+wordPhotosSkip, "flow:photos:skip"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		cancelKeyboard().InlineKeyboard[0],
	)
}

// phoneKeyboard — нижняя клавиатура с шарингом контакта.
func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 ارسال شماره من"),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// moderationKeyboard — действия по одному объявлению в очереди.
func moderationKeyboard(adID int64, withPhotos bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✅ تایید", fmt.Sprintf("mod:app:%d", adID)),
		tgbotapi.NewInlineKeyboardButtonData("❌ رد", fmt.Sprintf("mod:rej:%d", adID)),
	}
	if withPhotos {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🖼 عکس‌ها", fmt.Sprintf("mod:ph:%d", adID)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func pagingRow(page, pages int) []tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{}
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("mod:pg:%d", page-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, pages), "mod:noop"))
	if page < pages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("mod:pg:%d", page+1)))
	}
	return row
}
