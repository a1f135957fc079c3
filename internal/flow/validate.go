package flow

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errBadPrice = errors.New("некорректная цена")
var errBadPhone = errors.New("некорректный номер телефона")

// Форматы телефона: 0XXXXXXXXXX либо +98XXXXXXXXXX (0098 тоже принимаем).
// Канонический вид всегда +98XXXXXXXXXX.
var phoneRe = regexp.MustCompile(`^(?:\+98|0098|0)(\d{10})$`)

func ValidTitle(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= MaxTitleLen
}

func ValidDescription(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= MaxDescriptionLen
}

// FoldDigits приводит персидские и арабские цифры к ASCII:
// пользователи набирают цену и телефон в любой раскладке.
func FoldDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '۰' && r <= '۹': // U+06F0..U+06F9
			r = '0' + (r - '۰')
		case r >= '٠' && r <= '٩': // U+0660..U+0669
			r = '0' + (r - '٠')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParsePrice принимает цену с разделителями тысяч («12,000,000»,
// «۱۲،۰۰۰،۰۰۰») и возвращает положительное целое.
func ParsePrice(s string) (int64, error) {
	s = FoldDigits(strings.TrimSpace(s))
	s = strings.NewReplacer(",", "", "،", "", " ", "").Replace(s)
	if s == "" {
		return 0, errBadPrice
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errBadPrice
	}
	return n, nil
}

// FormatPrice — обратно в вид с группировкой: 12000000 -> "12,000,000".
func FormatPrice(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// NormalizePhone сводит оба допустимых формата к +98XXXXXXXXXX.
// Нормализация идемпотентна: канонический вид проходит без изменений.
func NormalizePhone(raw string) (string, error) {
	s := FoldDigits(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	m := phoneRe.FindStringSubmatch(s)
	if m == nil {
		return "", errBadPhone
	}
	return "+98" + m[1], nil
}

// NormalizeContactPhone — номер из contact-пейлоада Telegram. Клиенты
// часто отдают его без «+» («989123456789»), поэтому здесь — и только
// здесь — голый префикс 98 тоже принимается. Набранный вручную текст
// идёт через строгий NormalizePhone.
func NormalizeContactPhone(raw string) (string, error) {
	s := FoldDigits(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	if len(s) == 12 && strings.HasPrefix(s, "98") {
		s = "+" + s
	}
	return NormalizePhone(s)
}
