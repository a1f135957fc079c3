package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/carbazar/ads-bot/internal/bot"
	"github.com/carbazar/ads-bot/internal/broadcast"
	"github.com/carbazar/ads-bot/internal/config"
	"github.com/carbazar/ads-bot/internal/domain/admins"
	"github.com/carbazar/ads-bot/internal/domain/ads"
	"github.com/carbazar/ads-bot/internal/domain/users"
	"github.com/carbazar/ads-bot/internal/infra/db"
	httpx "github.com/carbazar/ads-bot/internal/infra/http"
	"github.com/carbazar/ads-bot/internal/infra/logger"
	"github.com/carbazar/ads-bot/internal/moderation"
	"github.com/carbazar/ads-bot/internal/session"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	usersRepo := users.NewRepo(pool)
	adsRepo := ads.NewRepo(pool)
	adminsRepo := admins.NewRepo(pool)

	// оператор из конфига всегда в множестве админов
	if cfg.Telegram.OperatorID != 0 {
		if _, err := usersRepo.Upsert(ctx, cfg.Telegram.OperatorID); err != nil {
			log.Error("bootstrap operator user failed", "err", err)
			return
		}
		if err := adminsRepo.Ensure(ctx, cfg.Telegram.OperatorID); err != nil {
			log.Error("bootstrap operator admin failed", "err", err)
			return
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", api.Self.UserName)

	sessions := session.NewStore(cfg.App.SessionTTL)
	go sessions.Run(ctx, 10*time.Minute, func(expired int) {
		log.Info("stale sessions expired", "count", expired)
	})

	sender := bot.NewSender(api)
	bcast := broadcast.New(sender, usersRepo, cfg.Telegram.ChannelID, bot.RenderAd, log)

	// бот выступает нотификатором сервиса модерации, поэтому сервис
	// подключается после создания бота
	b := bot.New(api, log, usersRepo, adsRepo, adminsRepo, sessions, cfg.Telegram.OperatorID)
	b.SetModeration(moderation.NewService(adsRepo, adminsRepo, b, bcast, log))

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, pool.Ping)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	go func() {
		if err := b.Run(ctx, 30); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
			stop()
		}
	}()
	log.Info("bot started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
