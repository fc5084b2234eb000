package parser

import (
	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

// parseGroupBlock parses a sequence of group statements. At file top level
// (inNamespace == false) it reads until EOF; as a namespace body it expects
// a enclosing pair of braces.
func (p *parser) parseGroupBlock(inNamespace bool) *ast.Node {
	line, col := p.cur.Line, p.cur.Column
	block := ast.New(ast.Block, line, col)

	if inNamespace {
		p.expect(token.OpenCurly)
	}
	p.skipNewlines()

	for p.isMore() && !p.check(token.CloseCurly) {
		stmt := p.recoverStatement(func() *ast.Node { return p.parseGroupStatement(token.KwNone) })
		if stmt != nil {
			block.Append(stmt)
		}
		p.skipNewlines()
	}

	if inNamespace {
		p.expect(token.CloseCurly)
	}
	return block
}

// parseGroupStatement parses one group-scope declaration: a namespace,
// scene, function or definition block, an optional leading modifier, or a
// marked comment.
func (p *parser) parseGroupStatement(modifier token.Keyword) *ast.Node {
	t := p.cur
	line, col := t.Line, t.Column

	switch t.Kind {
	case token.ModifierKeyword:
		p.advance()
		p.skipNewlines()
		return p.parseGroupStatement(t.Keyword)

	case token.MarkedComment:
		if modifier != token.KwNone {
			p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
		}
		p.advance()
		n := ast.New(ast.MarkedComment, line, col)
		n.Content = t.Content
		return n

	case token.GroupKeyword:
		p.advance()
		p.skipNewlines()
		name := p.expect(token.Ident)
		p.skipNewlines()

		switch t.Keyword {
		case token.KwNamespace:
			if modifier != token.KwNone {
				p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
			}
			body := p.parseGroupBlock(true)
			body.Kind = ast.Namespace
			body.Content = name.Content
			return body

		case token.KwScene:
			return p.parseSceneDecl(name, modifier)

		case token.KwFunc:
			return p.parseFunctionDecl(name, modifier)

		case token.KwDef:
			if modifier != token.KwNone {
				p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
			}
			return p.parseDefinitionBlock(name)
		}
		// unreachable: GroupKeyword only carries the four keywords above.
		panic(abort{})

	default:
		p.errorf(UnexpectedToken, t.Kind.String(), "")
		panic(abort{})
	}
}

// parseFlags reads zero or more leading `flag NAME require EXPR [default
// EXPR]` declarations from a scene/function body, stopping at the first
// token that isn't a flag declaration.
func (p *parser) parseFlags() []*ast.Flag {
	var flags []*ast.Flag
	seen := map[string]bool{}
	for p.cur.Keyword == token.KwFlag {
		p.advance()
		p.skipNewlines()
		nameTok := p.expect(token.Ident)
		p.skipNewlines()
		p.expectKeyword(token.KwRequire)
		p.skipNewlines()
		required := p.parseExpr()

		var def *ast.Node
		if p.cur.Keyword == token.KwDefault {
			p.advance()
			p.skipNewlines()
			def = p.parseExpr()
		}

		if seen[nameTok.Content] {
			p.errs.Add(DuplicateFlagName, nameTok.Line, nameTok.Column, nameTok.Content, "")
		}
		seen[nameTok.Content] = true
		flags = append(flags, &ast.Flag{Name: nameTok.Content, Required: required, Default: def})

		p.skipTerminators()
	}
	return flags
}

func (p *parser) parseSceneDecl(name token.Token, modifier token.Keyword) *ast.Node {
	n := ast.New(ast.Scene, name.Line, name.Column)
	n.Content = name.Content
	n.Modifier = modifier

	p.expect(token.OpenCurly)
	p.skipNewlines()
	n.Flags = p.parseFlags()

	body := ast.New(ast.SceneBlock, p.cur.Line, p.cur.Column)
	for p.isMore() && !p.check(token.CloseCurly) {
		stmt := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
		if stmt != nil {
			body.Append(stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.CloseCurly)

	n.Append(body)
	return n
}

func (p *parser) parseFunctionDecl(name token.Token, modifier token.Keyword) *ast.Node {
	n := ast.New(ast.Function, name.Line, name.Column)
	n.Content = name.Content
	n.Modifier = modifier

	p.expect(token.OpenParen)
	p.skipNewlines()
	for !p.check(token.CloseParen) {
		arg := p.expect(token.Ident)
		n.Args = append(n.Args, arg.Content)
		p.skipNewlines()
		if _, ok := p.match(token.Comma); !ok {
			break
		}
		p.skipNewlines()
	}
	p.expect(token.CloseParen)
	p.skipNewlines()

	p.expect(token.OpenCurly)
	p.skipNewlines()
	n.Flags = p.parseFlags()

	body := ast.New(ast.SceneBlock, p.cur.Line, p.cur.Column)
	for p.isMore() && !p.check(token.CloseCurly) {
		stmt := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
		if stmt != nil {
			body.Append(stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.CloseCurly)

	n.Append(body)
	return n
}

// parseDefinitionBlock parses `def NAME { IDENT = STRING ... }`.
func (p *parser) parseDefinitionBlock(name token.Token) *ast.Node {
	n := ast.New(ast.Definitions, name.Line, name.Column)
	n.Content = name.Content

	p.expect(token.OpenCurly)
	p.skipNewlines()

	for p.isMore() && !p.check(token.CloseCurly) {
		entry := p.recoverStatement(p.parseDefinitionStatement)
		if entry != nil {
			n.Append(entry)
		}
		p.skipTerminators()
	}
	p.expect(token.CloseCurly)
	return n
}

func (p *parser) parseDefinitionStatement() *ast.Node {
	t := p.cur
	if t.Kind == token.MarkedComment {
		p.advance()
		n := ast.New(ast.MarkedComment, t.Line, t.Column)
		n.Content = t.Content
		return n
	}

	key := p.expect(token.Ident)
	p.skipNewlines()
	p.expect(token.Equals)
	p.skipNewlines()

	var val token.Token
	exclude := p.check(token.ExcludeString)
	switch {
	case exclude:
		val = p.expect(token.ExcludeString)
	default:
		val = p.expect(token.String)
	}

	n := ast.New(ast.Definition, key.Line, key.Column)
	n.Content = key.Content
	n.ExcludeTranslation = exclude
	n.Token = &val
	return n
}
