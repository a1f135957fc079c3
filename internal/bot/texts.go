package bot

import (
	"fmt"
	"strings"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/flow"
)

// Все пользовательские строки — на фарси (аудитория бота — иранский
// автосалон). Идентификаторы и логи остаются английскими.
const (
	textGreeting = "سلام! به ربات آگهی‌های کاربازار خوش آمدید.\n" +
		"ثبت آگهی: /newad\n" +
		"ثبت معرفی: /referral\n" +
		"آگهی‌های تاییدشده: /ads\n" +
		"انصراف از ثبت: /cancel"

	textAskTitle       = "عنوان آگهی را وارد کنید (حداکثر ۱۰۰ حرف):"
	textAskDescription = "توضیحات آگهی را وارد کنید (حداکثر ۱۰۰۰ حرف):"
	textAskPrice       = "قیمت را به تومان وارد کنید (مثلاً 500,000,000):"
	textAskPhotos      = "حداکثر ۵ عکس بفرستید. وقتی تمام شد «تمام» را بزنید؛ اگر عکس ندارید «بدون عکس»."
	textAskPhone       = "شماره تماس را وارد کنید یا دکمه «ارسال شماره من» را بزنید. مثال: 09123456789"

	textTitleInvalid       = "عنوان نامعتبر است. باید خالی نباشد و حداکثر ۱۰۰ حرف باشد. دوباره وارد کنید:"
	textDescriptionInvalid = "توضیحات نامعتبر است. باید خالی نباشد و حداکثر ۱۰۰۰ حرف باشد. دوباره وارد کنید:"
	textPriceInvalid       = "قیمت نامعتبر است. فقط عدد مثبت وارد کنید، مثلاً 12,000,000:"
	textPhotoAdded         = "عکس دریافت شد (%d از %d). عکس بعدی را بفرستید یا «تمام» را بزنید."
	textPhotoLimit         = "بیشتر از ۵ عکس ممکن نیست. «تمام» را بزنید."
	textPhotosUnexpected   = "لطفاً فقط عکس بفرستید، یا «تمام» / «بدون عکس» را بزنید."
	textSkipNotFirst       = "شما قبلاً عکس فرستاده‌اید؛ «بدون عکس» دیگر ممکن نیست. «تمام» را بزنید."
	textPhoneInvalid       = "شماره نامعتبر است. قالب درست: 09123456789 یا +989123456789. دوباره وارد کنید:"

	textSaved        = "آگهی شما ثبت شد و پس از تایید مدیر منتشر می‌شود. ✅"
	textSaveFailed   = "متاسفانه مشکلی پیش آمد و آگهی ثبت نشد. لطفاً بعداً دوباره تلاش کنید. 🙏"
	textCancelled    = "ثبت آگهی لغو شد."
	textNoSession    = "ثبت فعالی ندارید. برای شروع /newad را بزنید."
	textApprovedNote = "تبریک! آگهی شما «%s» تایید و منتشر شد. 🎉"
	textRejectedNote = "متاسفانه آگهی شما «%s» رد شد."

	textNotAdmin       = "شما مجوز این کار را ندارید."
	textAdNotFound     = "آگهی موجود نیست."
	textAlreadyDecided = "این آگهی قبلاً بررسی شده است."
	textQueueEmpty     = "آگهی در انتظار تایید وجود ندارد."
	textDecidedOK      = "آگهی %d تایید و منتشر شد (کانال: %v، ارسال به %d کاربر)."
	textRejectedOK     = "آگهی %d رد شد و به فرستنده اطلاع داده شد."
	textNoApprovedAds  = "هنوز هیچ آگهی تاییدشده‌ای وجود ندارد."
	textGenericError   = "مشکلی پیش آمد. لطفاً دوباره تلاش کنید."

	textAdminAdded   = "کاربر %d مدیر شد."
	textAdminRemoved = "کاربر %d از مدیران حذف شد."
	textAdminUsage   = "شناسه عددی کاربر را بعد از دستور وارد کنید."
	textOperatorOnly = "فقط اپراتور اصلی می‌تواند مدیران را تغییر دهد."

	// текстовые сентинелы шага фото; транспорт переводит их в Input,
	// внутрь машины состояний эти слова не попадают
	wordPhotosDone = "تمام"
	wordPhotosSkip = "بدون عکس"

	adFooter = "🚗 اتوگالری کاربازار — خرید و فروش خودرو"
)

// RenderAd — текст объявления для канала и рассылки: заголовок,
// описание, цена с группировкой, контакт и футер.
func RenderAd(a *ads.Ad) string {
	var b strings.Builder
	if a.IsReferral {
		b.WriteString("🤝 معرفی\n")
	}
	fmt.Fprintf(&b, "📢 %s\n\n%s\n\n", a.Title, a.Description)
	fmt.Fprintf(&b, "💰 قیمت: %s تومان\n", flow.FormatPrice(a.Price))
	fmt.Fprintf(&b, "📞 تماس: %s\n\n", a.Phone)
	b.WriteString(adFooter)
	return b.String()
}

// renderPendingItem — карточка в очереди модерации (с данными автора).
func renderPendingItem(a *ads.Ad) string {
	kind := "آگهی"
	if a.IsReferral {
		kind = "معرفی"
	}
	return fmt.Sprintf(
		"#%d — %s\n📢 %s\n%s\n💰 %s تومان\n📞 %s\n👤 فرستنده: %d\n🖼 عکس: %d\n🕓 %s",
		a.ID, kind, a.Title, a.Description,
		flow.FormatPrice(a.Price), a.Phone, a.UserID, len(a.Photos),
		a.CreatedAt.Format("2006-01-02 15:04"),
	)
}
