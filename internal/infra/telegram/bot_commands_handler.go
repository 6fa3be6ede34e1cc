// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type commandHandler struct {
	ctx     context.Context
	service SignupService
	adminID int64
	logger  *logrus.Entry
}

// RegisterBotCommands registers /start, /help and /status.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	service SignupService,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	h := &commandHandler{
		ctx:     ctx,
		service: service,
		adminID: adminTelegramID,
		logger:  baseLogger.WithField("handler_group", "start_help"),
	}
	b.Handle("/start", h.onStart)
	b.Handle("/help", h.onHelp)
	b.Handle("/status", h.onStatus)
}

func (h *commandHandler) isAdmin(c telebot.Context) bool {
	return h.adminID != 0 && c.Sender() != nil && c.Sender().ID == h.adminID
}

func (h *commandHandler) onStart(c telebot.Context) error {
	h.logger.WithFields(logrus.Fields{"command": "/start", "sender_id": senderID(c)}).Info("Processing /start command")

	greeting := "Hallo!"
	if c.Sender() != nil && c.Sender().FirstName != "" {
		greeting = fmt.Sprintf("Hallo %s!", c.Sender().FirstName)
	}
	return c.Send(greeting + " " + h.help(c))
}

func (h *commandHandler) onHelp(c telebot.Context) error {
	h.logger.WithFields(logrus.Fields{"command": "/help", "sender_id": senderID(c)}).Info("Processing /help command")
	return c.Send(h.help(c))
}

func (h *commandHandler) help(c telebot.Context) string {
	if h.isAdmin(c) {
		return helpText + adminHelpText
	}
	return helpText
}

func (h *commandHandler) onStatus(c telebot.Context) error {
	logCtx := h.logger.WithFields(logrus.Fields{"command": "/status", "sender_id": senderID(c)})
	logCtx.Info("Processing /status command")

	st, err := h.service.CurrentStatus(h.ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to compute meeting status")
		return c.Send(msgInternalError)
	}
	return c.Send(statusText(st))
}

func senderID(c telebot.Context) int64 {
	if c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}
