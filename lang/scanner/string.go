package scanner

import (
	"strings"

	"github.com/diannex-lang/diannex/lang/token"
)

var simpleEscapes = map[byte]byte{
	'a':  '\a',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'f':  '\f',
	'b':  '\b',
	'\\': '\\',
	'"':  '"',
}

// lexString scans a double-quoted string literal starting at the opening
// quote (not yet consumed), decoding backslash escapes. kind lets the
// caller stamp the token as plain String, MarkedString or ExcludeString
// depending on the prefix ('@' / '!') already consumed by the caller.
func (l *lexer) lexString(line, col int, kind token.Kind) token.Token {
	rawStart := l.off
	l.advanceByte() // opening quote

	var sb strings.Builder
	closed := false
	for !l.atEOF() {
		c := l.cur()
		if c == '"' {
			l.advanceByte()
			closed = true
			break
		}
		if c == '\n' {
			break
		}
		if c == '\\' {
			l.advanceByte()
			l.decodeEscape(&sb)
			continue
		}
		sb.WriteByte(c)
		l.advanceByte()
	}

	raw := string(l.src[rawStart:l.off])
	if !closed {
		l.errorf(UnenclosedString, line, col, "")
		return token.Token{Kind: token.ErrorUnenclosedString, Line: line, Column: col, Raw: raw}
	}

	return token.Token{
		Kind:    kind,
		Line:    line,
		Column:  col,
		Content: sb.String(),
		Raw:     raw,
		Data:    token.NewStringData(l.off),
	}
}

// decodeEscape is entered right after the backslash has been consumed.
func (l *lexer) decodeEscape(sb *strings.Builder) {
	if l.atEOF() {
		return
	}
	c := l.cur()
	if c == '\n' {
		// line continuation: the newline itself is elided from the value
		l.advanceByte()
		return
	}
	if mapped, ok := simpleEscapes[c]; ok {
		sb.WriteByte(mapped)
		l.advanceByte()
		return
	}
	// unknown escape sequences drop the backslash, keeping only the raw char
	sb.WriteByte(c)
	l.advanceByte()
}
