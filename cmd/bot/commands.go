package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club_meeting_bot/internal/infra/config"
	"club_meeting_bot/internal/infra/logger"
	"club_meeting_bot/internal/infra/scheduler"
	"club_meeting_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(orBackground(ctx), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"db_driver":   cfg.DatabaseDriver,
		"match_mode":  cfg.MatchMode,
		"timezone":    cfg.TimeZone,
	}).Info("Configuration loaded")

	c, err := buildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close()

	sched, err := scheduler.NewCycleScheduler(
		c.service,
		c.clock,
		c.clock.Location(),
		cfg.Schedule.ResetWeekday.Std(),
		cfg.Schedule.ResetHour,
		cfg.Schedule.ResetMinute,
		logger.Component("scheduler"),
	)
	if err != nil {
		return err
	}

	botLogger := logger.Component("telegram")
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, tc telebot.Context) {
			entry := botLogger.WithError(err)
			if tc != nil && tc.Sender() != nil && tc.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"text":      tc.Text(),
					"sender_id": tc.Sender().ID,
					"chat_id":   tc.Chat().ID,
				})
			}
			entry.Error("Telegram handler failed")
		},
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	pending := telegram.NewPendingDeletes(0)
	telegram.RegisterBotCommands(ctx, bot, c.service, cfg.AdminTelegramID, botLogger)
	telegram.RegisterSignupHandlers(ctx, bot, c.service, pending, botLogger)
	telegram.RegisterAdminHandlers(ctx, bot, c.service, cfg.AdminTelegramID, botLogger)
	mainLogger.Info("Telegram handlers registered")

	if err := sched.Start(); err != nil {
		return err
	}
	go bot.Start()
	mainLogger.Info("Bot and scheduler started")

	<-ctx.Done()
	mainLogger.Info("Shutting down")

	bot.Stop()
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		mainLogger.WithError(err).Warn("Scheduler did not stop in time")
	}
	mainLogger.Info("Shut down gracefully")
	return nil
}

// loadCLI prepares configuration and logging for the one-shot commands.
// Logs go to stderr so stdout stays machine readable.
func loadCLI() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.InitWithOutput(cfg, os.Stderr)
	return cfg, nil
}

func runStatus(ctx context.Context, out io.Writer) error {
	ctx = orBackground(ctx)
	cfg, err := loadCLI()
	if err != nil {
		return err
	}
	c, err := buildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close()

	st, err := c.service.CurrentStatus(ctx)
	if err != nil {
		return err
	}
	window := "geschlossen"
	if st.WindowOpen {
		window = "offen"
	}
	printf(out, "%s\nZusagen: %d, Anmeldung: %s, Status: %s\n", st.Message, st.Count, window, st.Tone)
	return nil
}

func runList(ctx context.Context, out io.Writer) error {
	ctx = orBackground(ctx)
	cfg, err := loadCLI()
	if err != nil {
		return err
	}
	c, err := buildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close()

	entries, err := c.service.Participants(ctx)
	if err != nil {
		return err
	}
	for i, e := range entries {
		printf(out, "%d\t%s\t%s\t%s\n", i+1, e.CallSign, e.Name, e.CreatedAt.In(c.clock.Location()).Format("2006-01-02 15:04"))
	}
	return nil
}

func runRollover(ctx context.Context, out io.Writer) error {
	ctx = orBackground(ctx)
	cfg, err := loadCLI()
	if err != nil {
		return err
	}
	c, err := buildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close()

	n, err := c.service.Rollover(ctx, c.clock.Now())
	if err != nil {
		return err
	}
	printf(out, "%d Einträge archiviert und gelöscht.\n", n)
	return nil
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
