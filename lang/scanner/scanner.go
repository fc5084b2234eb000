// Package scanner implements the hand-written lexer for the diannex
// dialogue scripting language: a single forward pass over a byte buffer
// with a small lookahead, a preprocessor layer recognizing
// #include/#ifdef/#ifndef/#endif, and inline error-token recovery so a
// single bad byte never aborts the run.
package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/diannex-lang/diannex/lang/token"
)

// FileQueue is the narrow slice of CompileContext the lexer needs: a way to
// enqueue files discovered via #include, and a way to consult project
// macros for #ifdef/#ifndef. Accepting this interface (rather than the
// compiler package's concrete CompileContext) keeps the lexer free of any
// dependency on the bytecode generator.
type FileQueue interface {
	EnqueueInclude(path string)
	HasMacro(name string) bool
}

var bom = [3]byte{0xEF, 0xBB, 0xBF}

// Lex tokenizes source, a single file's full text, appending tokens to a
// fresh slice that is returned. queue receives any #include paths
// discovered along the way (resolved relative to currentFileDir). startLine
// and startCol let callers re-lex a fragment starting somewhere other than
// 1,1; ordinary whole-file lexing always passes 1, 1.
//
// Lex never aborts on error: malformed input produces Error/ErrorString/
// ErrorUnenclosedString tokens inline and scanning continues. The returned
// error, if non-nil, is an ErrorList collecting every recoverable problem.
func Lex(source string, queue FileQueue, currentFileDir string, startLine, startCol int) ([]token.Token, error) {
	l := &lexer{
		src:     []byte(source),
		queue:   queue,
		fileDir: currentFileDir,
		line:    startLine,
		col:     startCol,
	}
	if startLine == 1 && startCol == 1 && len(l.src) >= 3 && l.src[0] == bom[0] && l.src[1] == bom[1] && l.src[2] == bom[2] {
		l.off = 3
	}
	return l.run(), l.errs.Err()
}

type lexer struct {
	src     []byte
	off     int
	line    int
	col     int
	queue   FileQueue
	fileDir string
	errs    ErrorList

	// preprocessor state: condStack[i] is true if this conditional nesting
	// level (and thus everything inside it) is currently suppressed.
	condStack []bool
}

func (l *lexer) skipping() bool {
	return len(l.condStack) > 0 && l.condStack[len(l.condStack)-1]
}

func (l *lexer) atEOF() bool { return l.off >= len(l.src) }

func (l *lexer) peekByte(ahead int) byte {
	if l.off+ahead >= len(l.src) {
		return 0
	}
	return l.src[l.off+ahead]
}

func (l *lexer) cur() byte {
	if l.atEOF() {
		return 0
	}
	return l.src[l.off]
}

// advanceByte consumes one byte, tracking line/column. Newlines are consumed
// here but the caller is responsible for emitting the Newline token.
func (l *lexer) advanceByte() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) errorf(kind ErrorKind, line, col int, info string) {
	l.errs.Add(kind, line, col, info)
}

func (l *lexer) run() []token.Token {
	var out []token.Token
	for {
		l.skipInsignificantWhitespace()
		if l.atEOF() {
			out = append(out, token.Token{Kind: token.EOF, Line: l.line, Column: l.col})
			break
		}

		line, col := l.line, l.col
		c := l.cur()

		switch {
		case c == '\n':
			l.advanceByte()
			if !l.skipping() {
				out = append(out, token.Token{Kind: token.Newline, Line: line, Column: col})
			}
			continue

		case c == '#':
			l.advanceByte()
			l.lexDirective(&out, line, col)
			continue

		case c == '/' && l.peekByte(1) == '/':
			l.lexLineComment(&out, line, col)
			continue

		case c == '/' && l.peekByte(1) == '*':
			l.lexBlockComment(&out, line, col)
			continue

		case isIdentStart(c):
			tok := l.lexIdentOrKeyword(line, col)
			if !l.skipping() {
				out = append(out, tok)
			}
			continue

		case isDecimalDigit(c) || (c == '.' && isDecimalDigit(l.peekByte(1))):
			tok := l.lexNumber(line, col)
			if !l.skipping() {
				out = append(out, tok)
			}
			continue

		case c == '"':
			tok := l.lexString(line, col, token.String)
			if !l.skipping() {
				out = append(out, tok)
			}
			continue

		case c == '@':
			l.advanceByte()
			if l.cur() != '"' {
				l.errorf(InvalidCharacter, line, col, "@")
				if !l.skipping() {
					out = append(out, token.Token{Kind: token.Error, Line: line, Column: col, Raw: "@"})
				}
				continue
			}
			tok := l.lexString(line, col, token.MarkedString)
			if !l.skipping() {
				out = append(out, tok)
			}
			continue

		case c == '!' && l.peekByte(1) == '"':
			l.advanceByte()
			tok := l.lexString(line, col, token.ExcludeString)
			if !l.skipping() {
				out = append(out, tok)
			}
			continue

		default:
			tok, isErr := l.lexOperator(line, col)
			if isErr {
				l.errorf(InvalidCharacter, line, col, tok.Raw)
				l.skipRestOfLine()
			}
			if !l.skipping() {
				out = append(out, tok)
			}
			continue
		}
	}
	return out
}

func (l *lexer) skipInsignificantWhitespace() {
	for !l.atEOF() {
		c := l.cur()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advanceByte()
			continue
		}
		break
	}
}

func (l *lexer) skipRestOfLine() {
	for !l.atEOF() && l.cur() != '\n' {
		l.advanceByte()
	}
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0xC0
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.' || c >= 0x80
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *lexer) lexIdentOrKeyword(line, col int) token.Token {
	start := l.off
	for !l.atEOF() && isIdentCont(l.cur()) {
		l.advanceByte()
	}
	lit := string(l.src[start:l.off])
	kind, kw := token.LookupIdent(lit)
	return token.Token{Kind: kind, Line: line, Column: col, Keyword: kw, Content: lit, Raw: lit}
}

func (l *lexer) lexLineComment(out *[]token.Token, line, col int) {
	l.advanceByte() // first '/'
	l.advanceByte() // second '/'
	marked := l.cur() == '!'
	if marked {
		l.advanceByte()
	}
	start := l.off
	for !l.atEOF() && l.cur() != '\n' {
		l.advanceByte()
	}
	if marked && !l.skipping() {
		*out = append(*out, token.Token{Kind: token.MarkedComment, Line: line, Column: col, Content: strings.TrimSpace(string(l.src[start:l.off]))})
	}
}

func (l *lexer) lexBlockComment(out *[]token.Token, line, col int) {
	l.advanceByte() // '/'
	l.advanceByte() // '*'
	marked := l.cur() == '!'
	if marked {
		l.advanceByte()
	}
	start := l.off
	end := l.off
	closed := false
	for !l.atEOF() {
		if l.cur() == '*' && l.peekByte(1) == '/' {
			end = l.off
			l.advanceByte()
			l.advanceByte()
			closed = true
			break
		}
		l.advanceByte()
	}
	if !closed {
		end = l.off
	}
	if marked && !l.skipping() {
		*out = append(*out, token.Token{Kind: token.MarkedComment, Line: line, Column: col, Content: strings.TrimSpace(string(l.src[start:end]))})
	}
}

// lexDirective is entered right after the '#' has been consumed.
func (l *lexer) lexDirective(out *[]token.Token, line, col int) {
	l.skipInsignificantWhitespace()
	if l.atEOF() || !isIdentStart(l.cur()) {
		l.errorf(UnexpectedEOFAfterDirective, line, col, "")
		return
	}

	start := l.off
	for !l.atEOF() && isIdentStart(l.cur()) {
		l.advanceByte()
	}
	name := string(l.src[start:l.off])
	dir := token.LookupDirective(name)
	if dir == token.DirNone {
		l.errorf(UnknownDirective, line, col, name)
		return
	}

	switch dir {
	case token.DirInclude:
		l.lexIncludeDirective(line, col)
	case token.DirIfDef, token.DirIfNDef:
		l.lexIfDirective(dir == token.DirIfNDef)
	case token.DirEndIf:
		if len(l.condStack) == 0 {
			l.errorf(TrailingEndIf, line, col, "")
			return
		}
		l.condStack = l.condStack[:len(l.condStack)-1]
	}
	_ = out
}

func (l *lexer) lexIncludeDirective(line, col int) {
	l.skipInsignificantWhitespace()
	if l.atEOF() || l.cur() != '"' {
		l.errorf(UnexpectedEOFAfterDirective, line, col, "expected include path")
		return
	}
	l.advanceByte() // opening quote
	start := l.off
	for !l.atEOF() && l.cur() != '"' && l.cur() != '\n' {
		l.advanceByte()
	}
	if l.atEOF() || l.cur() != '"' {
		l.errorf(UnenclosedString, line, col, "")
		return
	}
	path := string(l.src[start:l.off])
	l.advanceByte() // closing quote

	if l.skipping() {
		return
	}
	full := path
	if l.fileDir != "" && !isAbsPath(path) {
		full = joinPath(l.fileDir, path)
	}
	if l.queue != nil {
		l.queue.EnqueueInclude(full)
	}
}

func (l *lexer) lexIfDirective(invert bool) {
	l.skipInsignificantWhitespace()
	start := l.off
	for !l.atEOF() && isIdentCont(l.cur()) {
		l.advanceByte()
	}
	name := string(l.src[start:l.off])

	parentSkip := l.skipping()
	defined := l.queue != nil && l.queue.HasMacro(name)
	want := defined
	if invert {
		want = !defined
	}
	l.condStack = append(l.condStack, parentSkip || !want)
}

func isAbsPath(p string) bool {
	return len(p) > 0 && (p[0] == '/' || (len(p) > 2 && p[1] == ':'))
}

func joinPath(dir, rel string) string {
	if dir == "" {
		return rel
	}
	if strings.HasSuffix(dir, "/") {
		return dir + rel
	}
	return dir + "/" + rel
}

// lexOperator handles everything not already dispatched: punctuation and
// operators, including all compound assignment forms. It consumes at least
// one byte. isErr is true when the byte did not match any known operator.
func (l *lexer) lexOperator(line, col int) (token.Token, bool) {
	c := l.advanceByte()
	mk := func(k token.Kind, raw string) token.Token {
		return token.Token{Kind: k, Line: line, Column: col, Raw: raw}
	}

	switch c {
	case '(':
		return mk(token.OpenParen, "("), false
	case ')':
		return mk(token.CloseParen, ")"), false
	case '{':
		return mk(token.OpenCurly, "{"), false
	case '}':
		return mk(token.CloseCurly, "}"), false
	case '[':
		return mk(token.OpenBrack, "["), false
	case ']':
		return mk(token.CloseBrack, "]"), false
	case ';':
		return mk(token.Semicolon, ";"), false
	case ',':
		return mk(token.Comma, ","), false
	case '?':
		return mk(token.Ternary, "?"), false
	case '$':
		return mk(token.VariableStart, "$"), false
	case '~':
		return mk(token.BitwiseNegate, "~"), false
	case ':':
		return mk(token.Colon, ":"), false

	case '.':
		if l.cur() == '.' {
			l.advanceByte()
			return mk(token.Range, ".."), false
		}
		// a lone '.' not followed by a digit or another '.' is invalid
		// (identifiers absorb interior dots, numbers absorb leading dots).
		return mk(token.Error, "."), true

	case '+':
		if l.cur() == '+' {
			l.advanceByte()
			return mk(token.Increment, "++"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.PlusEquals, "+="), false
		}
		return mk(token.Plus, "+"), false

	case '-':
		if l.cur() == '-' {
			l.advanceByte()
			return mk(token.Decrement, "--"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.MinusEquals, "-="), false
		}
		return mk(token.Minus, "-"), false

	case '*':
		if l.cur() == '*' {
			l.advanceByte()
			return mk(token.Power, "**"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.MultiplyEquals, "*="), false
		}
		return mk(token.Multiply, "*"), false

	case '/':
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.DivideEquals, "/="), false
		}
		return mk(token.Divide, "/"), false

	case '%':
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.ModEquals, "%="), false
		}
		return mk(token.Mod, "%"), false

	case '&':
		if l.cur() == '&' {
			l.advanceByte()
			return mk(token.LogicalAnd, "&&"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.BitwiseAndEquals, "&="), false
		}
		return mk(token.BitwiseAnd, "&"), false

	case '|':
		if l.cur() == '|' {
			l.advanceByte()
			return mk(token.LogicalOr, "||"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.BitwiseOrEquals, "|="), false
		}
		return mk(token.BitwiseOr, "|"), false

	case '^':
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.BitwiseXorEquals, "^="), false
		}
		return mk(token.BitwiseXor, "^"), false

	case '<':
		if l.cur() == '<' {
			l.advanceByte()
			return mk(token.BitwiseLShift, "<<"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.CompareLTE, "<="), false
		}
		return mk(token.CompareLT, "<"), false

	case '>':
		if l.cur() == '>' {
			l.advanceByte()
			return mk(token.BitwiseRShift, ">>"), false
		}
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.CompareGTE, ">="), false
		}
		return mk(token.CompareGT, ">"), false

	case '=':
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.CompareEQ, "=="), false
		}
		return mk(token.Equals, "="), false

	case '!':
		if l.cur() == '=' {
			l.advanceByte()
			return mk(token.CompareNEQ, "!="), false
		}
		return mk(token.Not, "!"), false

	default:
		r, _ := utf8.DecodeRune(l.src[l.off-1:])
		return mk(token.Error, string(r)), true
	}
}
