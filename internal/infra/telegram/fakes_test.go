package telegram

import (
	"context"
	"io"

	"club_meeting_bot/internal/app"
	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/domain/roster"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// fakeContext implements the subset of telebot.Context the handlers use.
// Calling anything else panics on the nil embedded interface.
type fakeContext struct {
	telebot.Context
	sender   *telebot.User
	message  *telebot.Message
	callback *telebot.Callback

	sent      []string
	markups   []*telebot.ReplyMarkup
	edited    []string
	responded int
}

func newCommand(userID int64, payload string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: userID, FirstName: "Erik"},
		message: &telebot.Message{Payload: payload},
	}
}

func newCallback(userID int64, data string) *fakeContext {
	return &fakeContext{
		sender:   &telebot.User{ID: userID},
		callback: &telebot.Callback{Data: data},
	}
}

func (c *fakeContext) Sender() *telebot.User       { return c.sender }
func (c *fakeContext) Message() *telebot.Message   { return c.message }
func (c *fakeContext) Callback() *telebot.Callback { return c.callback }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	for _, o := range opts {
		if m, ok := o.(*telebot.ReplyMarkup); ok {
			c.markups = append(c.markups, m)
		}
	}
	return nil
}

func (c *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	c.edited = append(c.edited, what.(string))
	return nil
}

func (c *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.responded++
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type fakeService struct {
	submitOutcome app.Outcome
	submitErr     error
	deleted       int64
	deleteErr     error
	deleteCalls   []roster.Entry
	deleteCycles  []string
	status        meeting.Status
	statusErr     error
	entries       []roster.Entry
}

func (s *fakeService) Submit(_ context.Context, name, callSign string) (app.Outcome, error) {
	return s.submitOutcome, s.submitErr
}

func (s *fakeService) ConfirmAndDeleteInCycle(_ context.Context, cycleID, name, callSign string) (int64, error) {
	s.deleteCalls = append(s.deleteCalls, roster.Entry{Name: name, CallSign: callSign})
	s.deleteCycles = append(s.deleteCycles, cycleID)
	return s.deleted, s.deleteErr
}

func (s *fakeService) CurrentStatus(context.Context) (meeting.Status, error) {
	return s.status, s.statusErr
}

func (s *fakeService) Participants(context.Context) ([]roster.Entry, error) {
	return s.entries, s.statusErr
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
