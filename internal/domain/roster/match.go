package roster

import (
	"fmt"
	"strings"
)

// MatchMode decides when two entries are the same participant. It applies to
// duplicate detection and to deletion alike.
type MatchMode string

const (
	// MatchConjunctive: same name AND same call sign, empty fields included.
	MatchConjunctive MatchMode = "conjunctive"
	// MatchDisjunctive: same name OR same call sign. Empty fields never match.
	MatchDisjunctive MatchMode = "disjunctive"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchConjunctive, "":
		return MatchConjunctive, nil
	case MatchDisjunctive:
		return MatchDisjunctive, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Matcher selects stored entries equal to Key under Mode.
type Matcher struct {
	Mode MatchMode
	Key  Entry
}

func (m Matcher) Matches(e Entry) bool {
	if m.Mode == MatchDisjunctive {
		return (m.Key.Name != "" && m.Key.Name == e.Name) ||
			(m.Key.CallSign != "" && m.Key.CallSign == e.CallSign)
	}
	return m.Key.Name == e.Name && m.Key.CallSign == e.CallSign
}
