// Package moderation — очередь премодерации и решения админов.
// Сервис не знает про Telegram: репозитории, нотификатор и рассылка
// приходят интерфейсами, транспорт живёт в internal/bot.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carbazar/ads-bot/internal/broadcast"
	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/infra/metrics"
)

var ErrNotAdmin = errors.New("нет прав модератора")

const PageSize = 5

type AdRepo interface {
	GetByID(ctx context.Context, id int64) (*ads.Ad, error)
	ListByStatus(ctx context.Context, st ads.Status, limit, offset int) ([]ads.Ad, error)
	CountByStatus(ctx context.Context, st ads.Status) (int, error)
	UpdateStatus(ctx context.Context, id int64, to ads.Status) error
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Notifier сообщает автору итог модерации.
type Notifier interface {
	NotifySubmitter(ctx context.Context, ad *ads.Ad, approved bool)
}

type Broadcaster interface {
	Publish(ctx context.Context, ad *ads.Ad) broadcast.Stats
}

type Service struct {
	ads         AdRepo
	admins      AdminChecker
	notifier    Notifier
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewService(adRepo AdRepo, adminRepo AdminChecker,
	notifier Notifier, broadcaster Broadcaster, log *slog.Logger) *Service {

	return &Service{
		ads:         adRepo,
		admins:      adminRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
		log:         log,
	}
}

type Page struct {
	Ads   []ads.Ad
	Page  int
	Pages int
	Total int
}

// ListPending — страница очереди, старые первыми. Номер страницы
// зажимается в валидный диапазон, а не возвращает ошибку: админ мог
// листать очередь, которая тем временем укоротилась.
func (s *Service) ListPending(ctx context.Context, adminID int64, page int) (Page, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return Page{}, err
	}

	total, err := s.ads.CountByStatus(ctx, ads.StatusPending)
	if err != nil {
		return Page{}, fmt.Errorf("count pending: %w", err)
	}
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	items, err := s.ads.ListByStatus(ctx, ads.StatusPending, PageSize, (page-1)*PageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list pending: %w", err)
	}
	return Page{Ads: items, Page: page, Pages: pages, Total: total}, nil
}

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// Decide применяет решение. Переход статуса строго одноразовый: повторное
// решение по тому же id возвращает ads.ErrAlreadyDecided и не вызывает
// ни уведомления, ни повторной рассылки.
func (s *Service) Decide(ctx context.Context, adminID, adID int64, d Decision) (*ads.Ad, broadcast.Stats, error) {
	var st broadcast.Stats

	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, st, err
	}

	to := ads.StatusRejected
	if d == Approve {
		to = ads.StatusApproved
	}
	if err := s.ads.UpdateStatus(ctx, adID, to); err != nil {
		return nil, st, err
	}
	metrics.Decisions.WithLabelValues(string(d)).Inc()

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, st, fmt.Errorf("reload ad %d: %w", adID, err)
	}

	s.notifier.NotifySubmitter(ctx, ad, d == Approve)
	if d == Approve {
		st = s.broadcaster.Publish(ctx, ad)
		s.log.Info("ad published",
			"ad_id", ad.ID, "channel", st.ChannelPosted,
			"delivered", st.Delivered, "blocked", st.Blocked, "skipped", st.Skipped)
	}
	return ad, st, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID int64) error {
	ok, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("check admin %d: %w", userID, err)
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}
