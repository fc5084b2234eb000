package parser

import "fmt"

// ErrorKind is the user-visible taxonomy of parser errors.
type ErrorKind uint8

//nolint:revive
const (
	ExpectedTokenButGot ErrorKind = iota
	ExpectedTokenButEOF
	UnexpectedToken
	UnexpectedModifierFor
	UnexpectedMarkedString
	UnexpectedEOF
	UnexpectedSwitchCase
	UnexpectedSwitchDefault
	ChooseWithoutStatement
	ChoiceWithoutStatement
	DuplicateFlagName
)

var kindNames = [...]string{
	ExpectedTokenButGot:     "expected token but got another",
	ExpectedTokenButEOF:     "expected token but reached end of file",
	UnexpectedToken:         "unexpected token",
	UnexpectedModifierFor:   "unexpected modifier",
	UnexpectedMarkedString:  "unexpected marked string",
	UnexpectedEOF:           "unexpected end of file",
	UnexpectedSwitchCase:    "unexpected case label",
	UnexpectedSwitchDefault: "unexpected default label",
	ChooseWithoutStatement:  "choose option without a statement",
	ChoiceWithoutStatement:  "choice option without a statement",
	DuplicateFlagName:       "duplicate flag name",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		if s := kindNames[k]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("unknown parser error kind (%d)", k)
}

// Error is a single recorded parse error, carrying up to two pieces of
// contextual information (e.g. expected/got, or the construct name).
type Error struct {
	Kind   ErrorKind
	Line   int
	Column int
	Info1  string
	Info2  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ExpectedTokenButGot:
		return fmt.Sprintf("%d:%d: expected %s, got %s", e.Line, e.Column, e.Info1, e.Info2)
	case ExpectedTokenButEOF:
		return fmt.Sprintf("%d:%d: expected %s, reached end of file", e.Line, e.Column, e.Info1)
	case UnexpectedToken:
		return fmt.Sprintf("%d:%d: unexpected %s", e.Line, e.Column, e.Info1)
	case UnexpectedModifierFor:
		return fmt.Sprintf("%d:%d: unexpected modifier for %s", e.Line, e.Column, e.Info1)
	case DuplicateFlagName:
		return fmt.Sprintf("%d:%d: duplicate flag name %q", e.Line, e.Column, e.Info1)
	default:
		if e.Info1 != "" {
			return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Info1)
		}
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Kind)
	}
}

// ErrorList accumulates parser errors. It implements error via Unwrap, so
// callers can use errors.Is/As, or errors.Join-style composition, against
// the whole batch.
type ErrorList []*Error

func (l *ErrorList) Add(kind ErrorKind, line, col int, info1, info2 string) {
	*l = append(*l, &Error{Kind: kind, Line: line, Column: col, Info1: info1, Info2: info2})
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns l as an error, or nil if l is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
