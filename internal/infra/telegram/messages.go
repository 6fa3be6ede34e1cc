package telegram

import (
	"errors"
	"fmt"
	"strings"

	"club_meeting_bot/internal/app"
	"club_meeting_bot/internal/domain/meeting"
	"club_meeting_bot/internal/domain/roster"
)

const (
	msgInvalidInput  = "Ungültige Eingabe. Bitte nur Buchstaben, Zahlen, Leerzeichen und Bindestriche verwenden."
	msgNoInput       = "Bitte mindestens Rufzeichen oder Name angeben, z.B. /anmelden DL1ABC | Erik"
	msgWindowClosed  = "Die Anmeldung ist derzeit geschlossen."
	msgInternalError = "Es ist ein Fehler aufgetreten. Bitte versuche es später erneut."
	msgUnauthorized  = "Dieser Befehl ist nur für den Administrator."
	msgExpired       = "Diese Anfrage ist abgelaufen. Bitte sende deine Anmeldung erneut."
	msgCancelled     = "Abgebrochen, der Eintrag bleibt bestehen."
	msgNothingToDrop = "Es gibt keinen passenden Eintrag mehr."
)

const helpText = "Zusagen und Absagen für das nächste Clubtreffen.\n\n" +
	"/anmelden <Rufzeichen> | <Name>\n - Zusage eintragen. Ist die Zusage schon vorhanden, wirst du gefragt, ob sie gelöscht werden soll.\n" +
	"   Beispiele: /anmelden DL1ABC | Erik, /anmelden DL1ABC, /anmelden | Erik\n\n" +
	"/status\n - Zeigt, ob das Treffen stattfindet.\n\n" +
	"/help\n - Zeigt diese Hilfe."

const adminHelpText = "\n\n/liste\n - Teilnehmerliste (nur Administrator)."

// ParseSignup splits a /anmelden payload into call sign and name. With a "|"
// the left side is the call sign and the right side the name; without one
// the first word is the call sign and the rest the name.
func ParseSignup(payload string) (callSign, name string) {
	if left, right, ok := strings.Cut(payload, "|"); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right)
	}
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// errorText maps a service error to the reply shown to the participant.
func errorText(err error) string {
	switch {
	case errors.Is(err, roster.ErrInvalidCharacters):
		return msgInvalidInput
	case errors.Is(err, roster.ErrNoInput):
		return msgNoInput
	case errors.Is(err, app.ErrWindowClosed):
		return msgWindowClosed
	case errors.Is(err, app.ErrCycleChanged):
		return msgExpired
	default:
		return msgInternalError
	}
}

func statusText(st meeting.Status) string {
	return st.Message
}

func participantsText(entries []roster.Entry) string {
	if len(entries) == 0 {
		return "Teilnehmerliste: noch keine Zusagen."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Teilnehmerliste (%d):\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s, %s\n", i+1, dash(e.CallSign), dash(e.Name))
	}
	return strings.TrimRight(b.String(), "\n")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
