package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"club_meeting_bot/internal/app"
	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/infra/archive"
	"club_meeting_bot/internal/infra/config"
	idb "club_meeting_bot/internal/infra/database"
	"club_meeting_bot/internal/infra/logger"
)

var errNoDatabase = errors.New("database unavailable")

// core is everything the commands share: store, clock and signup service.
type core struct {
	db      *sql.DB
	clock   *meeting.ZoneClock
	service *app.SignupService
}

func buildCore(ctx context.Context, cfg *config.AppConfig) (*core, error) {
	clock, err := meeting.NewZoneClock(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	db, dialect, err := idb.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoDatabase, err)
	}
	repo := idb.NewRosterRepository(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", errNoDatabase, err)
	}
	logger.Component("main").WithField("db_driver", cfg.DatabaseDriver).Info("Database ready")

	service := app.NewSignupService(
		repo,
		archive.NewFileSink(cfg.ArchivePath),
		clock,
		cfg.MeetingSchedule(),
		cfg.Match(),
		logger.Component("signup"),
	)
	return &core{db: db, clock: clock, service: service}, nil
}

func (c *core) close() {
	if err := c.db.Close(); err != nil {
		logger.Component("main").WithError(err).Warn("Closing database failed")
	}
}
