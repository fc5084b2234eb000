package scanner

import "github.com/diannex-lang/diannex/lang/token"

// lexNumber scans an integer or float literal with at most one interior
// '.' (no exponent form), then checks for a trailing '%' to produce a
// Percentage token instead of Number.
func (l *lexer) lexNumber(line, col int) token.Token {
	start := l.off
	sawDot := l.cur() == '.'
	if sawDot {
		l.advanceByte()
	}
	for !l.atEOF() && isDecimalDigit(l.cur()) {
		l.advanceByte()
	}
	if !sawDot && l.cur() == '.' && l.peekByte(1) != '.' {
		// only consume the '.' if it isn't the start of a Range ".."
		l.advanceByte()
		for !l.atEOF() && isDecimalDigit(l.cur()) {
			l.advanceByte()
		}
	}

	lit := string(l.src[start:l.off])
	kind := token.Number
	if l.cur() == '%' {
		l.advanceByte()
		kind = token.Percentage
	}
	return token.Token{Kind: kind, Line: line, Column: col, Content: lit, Raw: lit}
}
