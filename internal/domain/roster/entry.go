// Package roster holds the participants signed up for the current meeting cycle.
package roster

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidCharacters = errors.New("invalid characters")
	ErrNoInput           = errors.New("no input")
)

// allowedPattern accepts latin letters, digits, German umlauts, ß, space and hyphen.
var allowedPattern = regexp.MustCompile(`^[A-Za-z0-9ÄÖÜäöüß -]+$`)

// ValidationError reports which field was rejected and why.
type ValidationError struct {
	Field string // "name", "call_sign" or "" when the whole input is empty
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Entry is one participant's commitment for the current cycle.
// At least one of Name and CallSign is non-empty once persisted.
type Entry struct {
	ID        int64
	Name      string
	CallSign  string
	CreatedAt time.Time
}

// Label is the human readable identity used in confirmations and lists.
func (e Entry) Label() string {
	switch {
	case e.CallSign != "" && e.Name != "":
		return e.CallSign + " (" + e.Name + ")"
	case e.CallSign != "":
		return e.CallSign
	default:
		return e.Name
	}
}

// Normalize canonicalizes a single field: NFC, trimmed, inner whitespace
// collapsed to one space, upper-cased with German rules.
func Normalize(s string) string {
	return upper(canonical(s))
}

// canonical is s in NFC with whitespace trimmed and collapsed, case kept.
func canonical(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func upper(s string) string {
	if s == "" {
		return ""
	}
	// A Caser keeps state, so one is built per call.
	return cases.Upper(language.German).String(s)
}

// Validate checks one field as typed, before case mapping, so letters that
// only upper-case into the allowed set (ligatures, long s) are rejected.
// Empty is always valid.
func Validate(s string) bool {
	s = canonical(s)
	return s == "" || allowedPattern.MatchString(s)
}

// NewEntry validates and normalizes a submission.
func NewEntry(name, callSign string) (Entry, error) {
	if !Validate(name) {
		return Entry{}, &ValidationError{Field: "name", Err: ErrInvalidCharacters}
	}
	if !Validate(callSign) {
		return Entry{}, &ValidationError{Field: "call_sign", Err: ErrInvalidCharacters}
	}
	e := Entry{Name: Normalize(name), CallSign: Normalize(callSign)}
	if e.Name == "" && e.CallSign == "" {
		return Entry{}, &ValidationError{Err: ErrNoInput}
	}
	return e, nil
}
