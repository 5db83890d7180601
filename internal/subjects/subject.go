package subjects

import "strings"

// Kind discriminates the shapes a scene subject can arrive in.
type Kind string

const (
	KindText       Kind = "text"
	KindList       Kind = "list"
	KindStructured Kind = "structured"
)

// Subject is the tagged union for scene subject input. Callers resolve
// it to a canonical string once, at the extractor boundary, instead of
// branching on shape at every use site.
type Subject struct {
	Kind       Kind
	Value      string   // KindText
	Values     []string // KindList
	Subject    string   // KindStructured primary phrase
	Alternates []string // KindStructured ranked alternates
	MustTokens []string // KindStructured tokens every candidate must carry
}

// Text wraps a plain string subject.
func Text(value string) Subject {
	return Subject{Kind: KindText, Value: value}
}

// List wraps an ordered list of subject phrases.
func List(values ...string) Subject {
	return Subject{Kind: KindList, Values: values}
}

// Structured wraps a primary phrase with alternates and required tokens.
func Structured(primary string, alternates, mustTokens []string) Subject {
	return Subject{Kind: KindStructured, Subject: primary, Alternates: alternates, MustTokens: mustTokens}
}

// Canonical resolves the union to its primary search string.
func (s Subject) Canonical() string {
	switch s.Kind {
	case KindList:
		for _, value := range s.Values {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
		return ""
	case KindStructured:
		return strings.TrimSpace(s.Subject)
	default:
		return strings.TrimSpace(s.Value)
	}
}

// AllPhrases returns every phrase the subject carries, primary first,
// with blanks dropped.
func (s Subject) AllPhrases() []string {
	var raw []string
	switch s.Kind {
	case KindList:
		raw = s.Values
	case KindStructured:
		raw = append([]string{s.Subject}, s.Alternates...)
	default:
		raw = []string{s.Value}
	}
	phrases := make([]string, 0, len(raw))
	for _, value := range raw {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			phrases = append(phrases, trimmed)
		}
	}
	return phrases
}
