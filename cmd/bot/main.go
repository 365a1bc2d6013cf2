package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/domain/poll"
	"homework_status_bot/internal/infra/config"
	idb "homework_status_bot/internal/infra/database"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Homework Status Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		if kind := homework.KindOf(err); !kind.IsRecoverable() {
			logger.Log.WithError(err).WithField("kind", kind).Fatal("Missing credentials, poll loop will not start")
		}
		logger.Log.WithError(err).Fatal("Could not load application configuration")
	}

	logCloser, err := logger.Init(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Could not initialize logger")
	}
	defer logCloser.Close()

	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"chat_id":     cfg.TelegramChatID,
		"interval":    cfg.PollInterval.String(),
		"epoch":       cfg.PollEpoch,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional poll journal
	var journalRepo poll.Repository
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()

		repo := idb.NewPostgresJournalRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			mainLogger.WithError(err).Fatal("Could not prepare poll journal schema")
		}
		journalRepo = repo
		mainLogger.Info("Poll journal enabled.")
	} else {
		mainLogger.Info("DATABASE_URL not set, poll journal is log-only.")
	}
	journal := app.NewJournalService(journalRepo, cfg.JournalRetention, logger.Component("journal"))
	if last, err := journal.LastCycle(ctx); err != nil {
		mainLogger.WithError(err).Warn("Could not read last poll cycle from journal")
	} else if last != nil {
		mainLogger.WithFields(logrus.Fields{
			"started_at":   last.StartedAt.Format(time.RFC3339),
			"outcome":      last.Outcome,
			"cursor_after": last.CursorAfter,
		}).Info("Last recorded poll cycle")
	}

	if journalRepo != nil {
		journalScheduler := scheduler.NewJournalScheduler(journal, logger.Component("scheduler"), cfg.CronSpecJournalPurge)
		if err := journalScheduler.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start journal scheduler")
		}
		defer journalScheduler.Stop()
	}

	// Telegram delivery
	telegramLogger := logger.Component("telegram")
	bot, err := telegram.NewBot(cfg.TelegramToken, func(err error, _ telebot.Context) {
		telegramLogger.WithError(err).Error("Telebot error")
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	notifier := telegram.NewChatNotifier(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID, telegramLogger)

	fetcher := practicum.NewClient(cfg.PracticumEndpoint, cfg.PracticumToken, cfg.HTTPTimeout, logger.Component("practicum"))

	poller := app.NewPollerService(fetcher, notifier, journal, app.PollerConfig{
		Interval: cfg.PollInterval,
		Epoch:    cfg.PollEpoch,
	}, logger.Component("poller"))

	mainLogger.Info("Application setup complete. Poll loop is starting...")
	poller.Run(ctx) // returns on SIGINT/SIGTERM

	mainLogger.Info("Shutting down application...")
	mainLogger.Info("Application shut down gracefully.")
}
