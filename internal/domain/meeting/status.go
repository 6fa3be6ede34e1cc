package meeting

import (
	"fmt"
	"time"
)

// DateLayout is how meeting dates are shown to participants.
const DateLayout = "02.01.2006"

// Tone names the four cells of the (held, window open) message table.
type Tone string

const (
	ToneConfirmedOpen   Tone = "confirmed_open"
	ToneConfirmedClosed Tone = "confirmed_closed"
	ToneCancelledOpen   Tone = "cancelled_open"
	ToneCancelledClosed Tone = "cancelled_closed"
)

// Status is what participants see about the coming meeting.
type Status struct {
	Count           int
	Held            bool
	WindowOpen      bool
	NextMeetingDate time.Time
	Tone            Tone
	Message         string
}

// Report derives the meeting status from the roster size and window state.
func (s Schedule) Report(count int, windowOpen bool, meetingDate time.Time) Status {
	st := Status{
		Count:           count,
		Held:            count >= s.Quorum,
		WindowOpen:      windowOpen,
		NextMeetingDate: meetingDate,
	}
	date := meetingDate.Format(DateLayout)

	switch {
	case st.Held && windowOpen:
		st.Tone = ToneConfirmedOpen
		st.Message = fmt.Sprintf(
			"Das Treffen am %s findet statt! Es haben sich %d Personen angemeldet. "+
				"Weitere Zusagen und Absagen sind bis %s möglich.",
			date, count, s.DeadlineText())
	case st.Held:
		st.Tone = ToneConfirmedClosed
		st.Message = fmt.Sprintf(
			"Das Treffen am %s findet statt! Es haben sich %d Personen angemeldet. "+
				"Die Anmeldung ist geschlossen, Änderungen sind nicht mehr möglich.",
			date, count)
	case windowOpen:
		st.Tone = ToneCancelledOpen
		st.Message = fmt.Sprintf(
			"Das Treffen am %s findet wegen zu geringer Beteiligung (%d Personen) derzeit nicht statt. "+
				"Sollte sich die Anzahl bis %s auf %d erhöhen, findet es statt.",
			date, count, s.DeadlineText(), s.Quorum)
	default:
		st.Tone = ToneCancelledClosed
		st.Message = fmt.Sprintf(
			"Das Treffen am %s findet wegen zu geringer Beteiligung (%d Personen) nicht statt. "+
				"Die Anmeldung ist geschlossen, versuche es nächste Woche wieder.",
			date, count)
	}
	return st
}
