// internal/infra/telegram/service.go
package telegram

import (
	"context"

	"club_meeting_bot/internal/app"
	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/domain/roster"
)

// SignupService is the part of app.SignupService the bot talks to.
type SignupService interface {
	Submit(ctx context.Context, name, callSign string) (app.Outcome, error)
	ConfirmAndDeleteInCycle(ctx context.Context, cycleID, name, callSign string) (int64, error)
	CurrentStatus(ctx context.Context) (meeting.Status, error)
	Participants(ctx context.Context) ([]roster.Entry, error)
}

var _ SignupService = (*app.SignupService)(nil)
