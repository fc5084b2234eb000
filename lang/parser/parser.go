// Package parser implements the recursive-descent, precedence-climbing
// parser for the diannex dialogue scripting language. It consumes the flat
// token sequence produced by lang/scanner and produces a lang/ast tree,
// collecting recoverable errors along the way rather than aborting on the
// first one.
package parser

import (
	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

// Parse consumes tokens (a single file's output from scanner.Lex) and
// returns the root Block node together with any recorded errors. The
// returned error, if non-nil, is an ErrorList.
func Parse(tokens []token.Token) (*ast.Node, error) {
	p := &parser{toks: tokens}
	p.advance()
	root := p.parseGroupBlock(false)
	return root, p.errs.Err()
}

// abort is panicked by expect on a parse error and recovered at the nearest
// statement boundary, where the parser resynchronizes and continues.
type abort struct{}

type parser struct {
	toks []token.Token
	pos  int
	cur  token.Token
	errs ErrorList
}

func (p *parser) advance() {
	if p.pos < len(p.toks) {
		p.cur = p.toks[p.pos]
		p.pos++
	} else {
		// the scanner always terminates with an EOF token, but guard against
		// a malformed or empty token list.
		p.cur = token.Token{Kind: token.EOF}
	}
}

// peek returns the token after the current one without consuming anything.
func (p *parser) peek() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (p *parser) isMore() bool { return p.cur.Kind != token.EOF }

// skipNewlines consumes a run of Newline tokens, nothing else. Called at the
// handful of points where trailing/leading newlines are pure whitespace:
// right after an opening bracket, right before a closing one, around binary
// operators and list separators.
func (p *parser) skipNewlines() {
	for p.cur.Kind == token.Newline {
		p.advance()
	}
}

// skipTerminators consumes a run of Newline/Semicolon tokens: the statement
// separator between group statements and between scene statements.
func (p *parser) skipTerminators() {
	for p.cur.Kind == token.Newline || p.cur.Kind == token.Semicolon {
		p.advance()
	}
}

func (p *parser) check(k token.Kind) bool { return p.cur.Kind == k }

// match consumes and returns the current token if its kind is k.
func (p *parser) match(k token.Kind) (token.Token, bool) {
	if p.cur.Kind != k {
		return token.Token{}, false
	}
	t := p.cur
	p.advance()
	return t, true
}

// expect consumes the current token if it is of kind k, otherwise records an
// error and panics with abort{}, to be recovered by synchronize at the
// nearest enclosing statement.
func (p *parser) expect(k token.Kind) token.Token {
	if p.cur.Kind == k {
		t := p.cur
		p.advance()
		return t
	}
	if p.cur.Kind == token.EOF {
		p.errs.Add(ExpectedTokenButEOF, p.cur.Line, p.cur.Column, k.String(), "")
	} else {
		p.errs.Add(ExpectedTokenButGot, p.cur.Line, p.cur.Column, k.String(), p.cur.Kind.String())
	}
	panic(abort{})
}

// expectKeyword is like expect, but for one of the reserved-word Kind
// buckets where the specific Keyword value also has to match.
func (p *parser) expectKeyword(kw token.Keyword) token.Token {
	if p.cur.Keyword == kw {
		t := p.cur
		p.advance()
		return t
	}
	if p.cur.Kind == token.EOF {
		p.errs.Add(ExpectedTokenButEOF, p.cur.Line, p.cur.Column, "keyword", "")
	} else {
		p.errs.Add(ExpectedTokenButGot, p.cur.Line, p.cur.Column, "keyword", p.cur.Kind.String())
	}
	panic(abort{})
}

func (p *parser) errorf(kind ErrorKind, info1, info2 string) {
	p.errs.Add(kind, p.cur.Line, p.cur.Column, info1, info2)
}

// synchronize advances past the offending token until it finds a semicolon,
// newline, identifier, or the start of any keyword category, so the next
// statement can be parsed cleanly. Mirrors the "advances until it finds a
// semicolon, identifier, or any keyword category" recovery rule.
func (p *parser) synchronize() {
	for p.isMore() {
		switch p.cur.Kind {
		case token.Semicolon, token.Newline, token.Ident,
			token.GroupKeyword, token.MainKeyword, token.MainSubKeyword, token.ModifierKeyword,
			token.CloseCurly:
			return
		}
		p.advance()
	}
}

// recoverStatement runs fn, converting a panic(abort{}) into a synchronize
// call and a placeholder None node so the enclosing statement list can
// continue parsing past the error.
func (p *parser) recoverStatement(fn func() *ast.Node) (n *ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(abort); !ok {
				panic(r)
			}
			p.synchronize()
			n = ast.New(ast.None, p.cur.Line, p.cur.Column)
		}
	}()
	return fn()
}
