package telegram

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type adminHandler struct {
	ctx     context.Context
	service SignupService
	adminID int64
	logger  *logrus.Entry
}

// RegisterAdminHandlers registers handlers for admin commands.
// With adminTelegramID zero every admin command is refused.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, service SignupService, adminTelegramID int64, baseLogger *logrus.Entry) {
	h := &adminHandler{ctx: ctx, service: service, adminID: adminTelegramID, logger: baseLogger}
	b.Handle("/liste", h.onList)
}

func (h *adminHandler) onList(c telebot.Context) error {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "/liste",
		"sender_id": senderID(c),
	})
	handlerLogger.Info("Command received")

	if h.adminID == 0 || senderID(c) != h.adminID {
		handlerLogger.Warn("Unauthorized access attempt")
		return c.Send(msgUnauthorized)
	}

	entries, err := h.service.Participants(h.ctx)
	if err != nil {
		handlerLogger.WithError(err).Error("Failed to list participants")
		return c.Send(msgInternalError)
	}
	handlerLogger.WithField("participants_count", len(entries)).Info("Successfully retrieved participant list")
	return c.Send(participantsText(entries))
}
