// Package broadcast — рассылка одобренного объявления: пост в канал
// плюс доставка каждому зарегистрированному пользователю. Политика
// ошибок по получателю: «заблокировал бота» — ставим флаг и идём дальше,
// рейт-лимит — ждём указанный сервером интервал и повторяем ограниченное
// число раз, потом пропускаем. Никакой атомарности между получателями
// нет: упали посередине — часть получила, часть нет.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/domain/users"
	"github.com/carbazar/ads-bot/internal/infra/metrics"
)

// ErrBlocked — получатель заблокировал бота (постоянная ошибка).
var ErrBlocked = errors.New("получатель заблокировал бота")

// RateLimitError — сервер просит подождать RetryAfter перед повтором.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("рейт-лимит, повтор через %s", e.RetryAfter)
}

// Sender — исходящий канал в мессенджер. Реализация в internal/bot
// переводит ошибки Telegram в ErrBlocked / RateLimitError.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoRef, caption string) error
}

type UserRepo interface {
	ListRecipients(ctx context.Context) ([]users.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

type Stats struct {
	ChannelPosted bool
	Delivered     int
	Blocked       int
	Skipped       int
}

const maxRetries = 3

type Broadcaster struct {
	sender    Sender
	users     UserRepo
	channelID int64
	format    func(*ads.Ad) string
	log       *slog.Logger

	// sleep подменяется в тестах, чтобы не ждать паузы по-настоящему
	sleep func(ctx context.Context, d time.Duration) error
}

func New(sender Sender, userRepo UserRepo, channelID int64,
	format func(*ads.Ad) string, log *slog.Logger) *Broadcaster {

	return &Broadcaster{
		sender:    sender,
		users:     userRepo,
		channelID: channelID,
		format:    format,
		log:       log,
		sleep:     sleepCtx,
	}
}

// Publish — канал и фан-аут независимы: неудача поста в канал не
// отменяет доставку пользователям.
func (b *Broadcaster) Publish(ctx context.Context, ad *ads.Ad) Stats {
	var st Stats
	text := b.format(ad)

	if b.channelID != 0 {
		if err := b.deliver(ctx, b.channelID, ad, text); err != nil {
			b.log.Error("channel post failed", "ad_id", ad.ID, "err", err)
		} else {
			st.ChannelPosted = true
		}
	}

	recipients, err := b.users.ListRecipients(ctx)
	if err != nil {
		b.log.Error("list recipients failed", "ad_id", ad.ID, "err", err)
		return st
	}

	for _, u := range recipients {
		if u.ID == ad.UserID {
			continue // автору отдельное уведомление, не рассылка
		}
		switch err := b.deliver(ctx, u.ID, ad, text); {
		case err == nil:
			st.Delivered++
			metrics.BroadcastDeliveries.WithLabelValues("delivered").Inc()
		case errors.Is(err, ErrBlocked):
			st.Blocked++
			metrics.BroadcastDeliveries.WithLabelValues("blocked").Inc()
			if err := b.users.SetBlocked(ctx, u.ID, true); err != nil {
				b.log.Error("mark blocked failed", "user_id", u.ID, "err", err)
			}
		default:
			st.Skipped++
			metrics.BroadcastDeliveries.WithLabelValues("skipped").Inc()
			b.log.Error("delivery skipped", "user_id", u.ID, "ad_id", ad.ID, "err", err)
		}
	}
	return st
}

// deliver шлёт одно объявление одному получателю: подпись на первом
// фото, ещё максимум два фото без подписи, без фото — просто текст.
func (b *Broadcaster) deliver(ctx context.Context, chatID int64, ad *ads.Ad, text string) error {
	if len(ad.Photos) == 0 {
		return b.withRetry(ctx, func(ctx context.Context) error {
			return b.sender.SendText(ctx, chatID, text)
		})
	}

	if err := b.withRetry(ctx, func(ctx context.Context) error {
		return b.sender.SendPhoto(ctx, chatID, ad.Photos[0], text)
	}); err != nil {
		return err
	}

	extra := ad.Photos[1:]
	if len(extra) > 2 {
		extra = extra[:2]
	}
	for _, ref := range extra {
		if err := b.withRetry(ctx, func(ctx context.Context) error {
			return b.sender.SendPhoto(ctx, chatID, ref, "")
		}); err != nil {
			return err
		}
	}
	return nil
}

// withRetry повторяет отправку только на рейт-лимите. Вся пауза — ровно
// тот интервал, который назвал сервер; собственный бэкофф retry.Do
// номинальный, чтобы не досыпать ничего сверх него. Остальные ошибки
// уходят наверх сразу.
func (b *Broadcaster) withRetry(ctx context.Context, send func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewConstant(time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := send(ctx)
		var rl *RateLimitError
		if errors.As(err, &rl) {
			if serr := b.sleep(ctx, rl.RetryAfter); serr != nil {
				return serr
			}
			return retry.RetryableError(err)
		}
		return err
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
