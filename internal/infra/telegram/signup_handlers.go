package telegram

import (
	"context"
	"errors"
	"fmt"

	"club_meeting_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	uniqueConfirmDelete = "confirm_delete"
	uniqueCancelDelete  = "cancel_delete"
)

var (
	btnConfirmDelete = telebot.Btn{Unique: uniqueConfirmDelete}
	btnCancelDelete  = telebot.Btn{Unique: uniqueCancelDelete}
)

type signupHandler struct {
	ctx     context.Context
	service SignupService
	pending *PendingDeletes
	logger  *logrus.Entry
}

// RegisterSignupHandlers wires /anmelden and the delete confirmation buttons.
func RegisterSignupHandlers(
	ctx context.Context,
	b *telebot.Bot,
	service SignupService,
	pending *PendingDeletes,
	baseLogger *logrus.Entry,
) {
	h := &signupHandler{
		ctx:     ctx,
		service: service,
		pending: pending,
		logger:  baseLogger.WithField("handler_group", "signup"),
	}
	b.Handle("/anmelden", h.onSignup)
	b.Handle(&btnConfirmDelete, h.onConfirmDelete)
	b.Handle(&btnCancelDelete, h.onCancelDelete)
}

func (h *signupHandler) onSignup(c telebot.Context) error {
	payload := ""
	if c.Message() != nil {
		payload = c.Message().Payload
	}
	callSign, name := ParseSignup(payload)
	logCtx := h.logger.WithFields(logrus.Fields{
		"command":   "/anmelden",
		"sender_id": senderID(c),
		"call_sign": callSign,
		"name":      name,
	})
	logCtx.Info("Signup received")

	outcome, err := h.service.Submit(h.ctx, name, callSign)
	if err != nil {
		return h.replyError(c, logCtx, err)
	}

	switch outcome.Result {
	case app.ResultAdded:
		return c.Send(fmt.Sprintf("Zusage eingetragen: %s.", outcome.Entry.Label()) + h.statusSuffix(logCtx))
	case app.ResultDuplicateFound:
		token := h.pending.Put(senderID(c), PendingDelete{Entry: outcome.Entry, CycleID: outcome.CycleID})
		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data("Ja, löschen", uniqueConfirmDelete, token),
			markup.Data("Abbrechen", uniqueCancelDelete, token),
		))
		logCtx.Info("Duplicate found, asking for delete confirmation")
		return c.Send(fmt.Sprintf("Für %s gibt es bereits eine Zusage. Soll der Eintrag gelöscht werden?", outcome.Entry.Label()), markup)
	default:
		logCtx.WithField("result", outcome.Result).Error("Unknown submission result")
		return c.Send(msgInternalError)
	}
}

func (h *signupHandler) onConfirmDelete(c telebot.Context) error {
	token := callbackData(c)
	logCtx := h.logger.WithFields(logrus.Fields{"callback": uniqueConfirmDelete, "sender_id": senderID(c)})

	pd, ok := h.pending.Take(token, senderID(c))
	if !ok {
		logCtx.Warn("Unknown or expired delete confirmation")
		_ = c.Respond()
		return c.Edit(msgExpired)
	}
	entry := pd.Entry
	logCtx = logCtx.WithFields(logrus.Fields{"call_sign": entry.CallSign, "name": entry.Name, "cycle_id": pd.CycleID})

	n, err := h.service.ConfirmAndDeleteInCycle(h.ctx, pd.CycleID, entry.Name, entry.CallSign)
	if err != nil {
		_ = c.Respond()
		switch {
		case errors.Is(err, app.ErrCycleChanged):
			logCtx.Info("Confirmation belongs to a previous cycle")
		case errors.Is(err, app.ErrWindowClosed):
			// expected outside the window, the reply says so
		default:
			logCtx.WithError(err).Error("Failed to delete entry")
		}
		return c.Edit(errorText(err))
	}
	if n == 0 {
		_ = c.Respond()
		return c.Edit(msgNothingToDrop + h.statusSuffix(logCtx))
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Gelöscht"})
	logCtx.WithField("deleted", n).Info("Entry deleted on confirmation")
	return c.Edit(fmt.Sprintf("Eintrag für %s gelöscht.", entry.Label()) + h.statusSuffix(logCtx))
}

func (h *signupHandler) onCancelDelete(c telebot.Context) error {
	h.pending.Take(callbackData(c), senderID(c))
	h.logger.WithFields(logrus.Fields{"callback": uniqueCancelDelete, "sender_id": senderID(c)}).Info("Delete cancelled")
	_ = c.Respond()
	return c.Edit(msgCancelled)
}

func (h *signupHandler) replyError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, app.ErrWindowClosed):
		// expected outside the window, the reply says so
		logCtx.Info("Signup rejected, window closed")
		return c.Send(msgWindowClosed + h.statusSuffix(logCtx))
	case errors.Is(err, app.ErrStoreUnavailable):
		logCtx.WithError(err).Error("Roster store unavailable")
	default:
		logCtx.WithError(err).Info("Signup rejected")
	}
	return c.Send(errorText(err))
}

// statusSuffix appends the current meeting status. A failure only drops
// the suffix.
func (h *signupHandler) statusSuffix(logCtx *logrus.Entry) string {
	st, err := h.service.CurrentStatus(h.ctx)
	if err != nil {
		logCtx.WithError(err).Warn("Could not load status for reply")
		return ""
	}
	return "\n\n" + statusText(st)
}

func callbackData(c telebot.Context) string {
	if c.Callback() == nil {
		return ""
	}
	return c.Callback().Data
}
