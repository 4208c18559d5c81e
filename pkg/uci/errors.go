package uci

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when a section or option is absent.
// Absence is an ordinary outcome, distinct from a malformed document;
// callers branch on it with errors.Is.
var ErrNotFound = errors.New("not found")

// LexError reports a malformed token, such as an unterminated quoted
// string.
type LexError struct {
	Msg  string
	Line int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseErrorKind classifies structural parse failures.
type ParseErrorKind int

const (
	// MissingSectionType: a "config" keyword with no following type.
	MissingSectionType ParseErrorKind = iota
	// OptionOutsideSection: an "option" or "list" before any "config".
	OptionOutsideSection
	// MissingName: an "option" or "list" with no option name.
	MissingName
	// MissingValue: an "option"/"list"/"package" statement with no value.
	MissingValue
	// UnexpectedToken: a statement starting with a non-keyword token.
	UnexpectedToken
)

func (k ParseErrorKind) String() string {
	switch k {
	case MissingSectionType:
		return "missing section type"
	case OptionOutsideSection:
		return "option outside of section"
	case MissingName:
		return "missing option name"
	case MissingValue:
		return "missing value"
	case UnexpectedToken:
		return "unexpected token"
	default:
		return "parse error"
	}
}

// ParseError reports a structural violation of the UCI grammar. Parsing
// fails fast: the first error aborts and no partial document is
// returned.
type ParseError struct {
	Kind ParseErrorKind
	Line int
	Tok  string // offending token text, when one exists
}

func (e *ParseError) Error() string {
	if e.Tok != "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Tok)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
}
