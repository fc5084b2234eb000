package parser

import (
	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

// compoundAssignOps is the set of assignment operator token kinds (plain =
// and every compound form); used only as a membership test in
// parseVariableStatement.
var compoundAssignOps = map[token.Kind]bool{
	token.Equals:           true,
	token.PlusEquals:       true,
	token.MinusEquals:      true,
	token.MultiplyEquals:   true,
	token.DivideEquals:     true,
	token.ModEquals:        true,
	token.BitwiseAndEquals: true,
	token.BitwiseOrEquals:  true,
	token.BitwiseXorEquals: true,
}

// parseSceneBlockBody parses a brace-delimited run of scene statements.
func (p *parser) parseSceneBlockBody() *ast.Node {
	open := p.expect(token.OpenCurly)
	p.skipNewlines()

	body := ast.New(ast.SceneBlock, open.Line, open.Column)
	for p.isMore() && !p.check(token.CloseCurly) {
		stmt := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
		if stmt != nil {
			body.Append(stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.CloseCurly)
	return body
}

// parseSceneStatement is the scene-scope statement dispatcher.
func (p *parser) parseSceneStatement(modifier token.Keyword) *ast.Node {
	p.skipTerminators()
	t := p.cur
	line, col := t.Line, t.Column

	switch t.Kind {
	case token.ModifierKeyword:
		p.advance()
		p.skipNewlines()
		return p.parseSceneStatement(t.Keyword)

	case token.MarkedComment:
		if modifier != token.KwNone {
			p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
		}
		p.advance()
		n := ast.New(ast.MarkedComment, line, col)
		n.Content = t.Content
		return n

	case token.VariableStart:
		if modifier != token.KwNone && modifier != token.KwLocal && modifier != token.KwGlobal {
			p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
		}
		return p.parseVariableStatement(modifier)

	case token.Increment, token.Decrement:
		p.advance()
		p.skipNewlines()
		v := p.parseVariable()
		kind := ast.Increment
		if t.Kind == token.Decrement {
			kind = ast.Decrement
		}
		n := ast.New(kind, line, col)
		n.Content = v.Content
		n.Children = v.Children
		return n

	case token.Ident:
		return p.parseIdentStatement(modifier)

	case token.String, token.ExcludeString:
		return p.parseTextRunStatement(modifier)

	case token.MarkedString:
		p.errorf(UnexpectedMarkedString, "", "")
		panic(abort{})

	case token.MainKeyword:
		return p.parseMainKeywordStatement(modifier)

	default:
		if t.Kind == token.EOF {
			p.errorf(UnexpectedEOF, "", "")
		} else {
			p.errorf(UnexpectedToken, t.Kind.String(), "")
		}
		panic(abort{})
	}
}

// parseVariableStatement parses `$name[...] (OP= expr | ++ | --)`.
func (p *parser) parseVariableStatement(modifier token.Keyword) *ast.Node {
	v := p.parseVariable()

	switch p.cur.Kind {
	case token.Increment, token.Decrement:
		kind := ast.Increment
		if p.cur.Kind == token.Decrement {
			kind = ast.Decrement
		}
		p.advance()
		n := ast.New(kind, v.Line, v.Col)
		n.Content = v.Content
		n.Modifier = modifier
		n.Children = v.Children
		return n
	}

	if !compoundAssignOps[p.cur.Kind] {
		// a bare variable read used as a statement (its value is discarded);
		// represented directly as the Variable node.
		return v
	}

	op := p.cur
	p.advance()
	p.skipNewlines()
	value := p.parseExpr()

	n := ast.New(ast.Assign, v.Line, v.Col)
	n.Content = v.Content
	n.Modifier = modifier
	n.Token = &op
	n.Children = append(v.Children, value)
	return n
}

// parseIdentStatement handles the two forms headed by a bare identifier:
// a call statement `name(args)`, or a shorthand character `name: stmt`.
func (p *parser) parseIdentStatement(modifier token.Keyword) *ast.Node {
	name := p.cur
	if p.peek().Kind == token.Colon {
		p.advance() // identifier
		p.advance() // colon
		p.skipNewlines()
		if modifier != token.KwNone {
			p.errorf(UnexpectedModifierFor, token.Colon.String(), "")
		}
		n := ast.New(ast.ShorthandChar, name.Line, name.Column)
		n.Content = name.Content
		n.Append(p.parseSceneStatement(token.KwNone))
		return n
	}

	if modifier != token.KwNone {
		p.errorf(UnexpectedModifierFor, name.Kind.String(), "")
	}
	call := p.parseCall()
	return call
}

// parseTextRunStatement handles the two forms headed by a string literal: a
// text run, or a shorthand character `"text": stmt`.
func (p *parser) parseTextRunStatement(modifier token.Keyword) *ast.Node {
	str := p.cur
	if p.peek().Kind == token.Colon {
		p.advance() // string
		p.advance() // colon
		p.skipNewlines()
		if modifier != token.KwNone {
			p.errorf(UnexpectedModifierFor, token.Colon.String(), "")
		}
		n := ast.New(ast.ShorthandChar, str.Line, str.Column)
		n.Content = str.Content
		n.Append(p.parseSceneStatement(token.KwNone))
		return n
	}

	if modifier != token.KwNone {
		p.errorf(UnexpectedModifierFor, str.Kind.String(), "")
	}
	p.advance()
	n := ast.New(ast.TextRun, str.Line, str.Column)
	n.Content = str.Content
	n.Token = &str
	n.ExcludeTranslation = str.Kind == token.ExcludeString
	return n
}

func (p *parser) parseMainKeywordStatement(modifier token.Keyword) *ast.Node {
	t := p.cur
	if modifier != token.KwNone {
		p.errorf(UnexpectedModifierFor, t.Kind.String(), "")
	}

	switch t.Keyword {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwDo:
		return p.parseDo()
	case token.KwRepeat:
		return p.parseRepeat()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwSequence:
		return p.parseSequence()
	case token.KwChoice:
		return p.parseChoice()
	case token.KwChoose:
		return p.parseChoose()
	case token.KwContinue:
		p.advance()
		return ast.New(ast.Continue, t.Line, t.Column)
	case token.KwBreak:
		p.advance()
		return ast.New(ast.Break, t.Line, t.Column)
	case token.KwReturn:
		p.advance()
		n := ast.New(ast.Return, t.Line, t.Column)
		if p.canStartExpr() {
			n.Append(p.parseExpr())
		}
		return n
	case token.KwCase:
		p.errorf(UnexpectedSwitchCase, "", "")
		panic(abort{})
	case token.KwDefault:
		p.errorf(UnexpectedSwitchDefault, "", "")
		panic(abort{})
	default:
		p.errorf(UnexpectedToken, t.Kind.String(), "")
		panic(abort{})
	}
}

// canStartExpr reports whether the current token could begin an expression,
// used to decide whether `return` is followed by a value.
func (p *parser) canStartExpr() bool {
	switch p.cur.Kind {
	case token.Number, token.Percentage, token.String, token.MarkedString, token.ExcludeString,
		token.Undefined, token.OpenParen, token.OpenBrack, token.VariableStart,
		token.Ident, token.Not, token.Minus, token.BitwiseNegate, token.Increment, token.Decrement:
		return true
	default:
		return false
	}
}

func (p *parser) parseIf() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	cond := p.parseExpr()
	p.skipNewlines()
	p.expect(token.CloseParen)
	p.skipNewlines()
	then := p.parseSceneBlockBody()

	n := ast.New(ast.If, kw.Line, kw.Column)
	n.Append(cond, then)

	save := p.pos
	saveCur := p.cur
	p.skipNewlines()
	if p.cur.Keyword == token.KwElse {
		p.advance()
		p.skipNewlines()
		if p.cur.Keyword == token.KwIf {
			n.Append(p.parseIf())
		} else {
			n.Append(p.parseSceneBlockBody())
		}
	} else {
		p.pos = save
		p.cur = saveCur
	}
	return n
}

func (p *parser) parseWhile() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	cond := p.parseExpr()
	p.skipNewlines()
	p.expect(token.CloseParen)
	p.skipNewlines()
	body := p.parseSceneBlockBody()

	n := ast.New(ast.While, kw.Line, kw.Column)
	n.Append(cond, body)
	return n
}

// parseForClauseStatement parses a single init/step clause of a `for` loop:
// a variable mutation, the only statement form that makes sense there.
func (p *parser) parseForClauseStatement() *ast.Node {
	if p.cur.Kind != token.VariableStart {
		p.errorf(UnexpectedToken, p.cur.Kind.String(), "")
		panic(abort{})
	}
	return p.parseVariableStatement(token.KwNone)
}

func (p *parser) parseFor() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	initStmt := p.parseForClauseStatement()
	p.skipNewlines()
	p.expect(token.Semicolon)
	p.skipNewlines()
	cond := p.parseExpr()
	p.skipNewlines()
	p.expect(token.Semicolon)
	p.skipNewlines()
	step := p.parseForClauseStatement()
	p.skipNewlines()
	p.expect(token.CloseParen)
	p.skipNewlines()
	body := p.parseSceneBlockBody()

	n := ast.New(ast.For, kw.Line, kw.Column)
	n.Append(initStmt, cond, step, body)
	return n
}

func (p *parser) parseDo() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	body := p.parseSceneBlockBody()
	p.skipNewlines()
	p.expectKeyword(token.KwWhile)
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	cond := p.parseExpr()
	p.skipNewlines()
	p.expect(token.CloseParen)

	n := ast.New(ast.Do, kw.Line, kw.Column)
	n.Append(body, cond)
	return n
}

func (p *parser) parseRepeat() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	count := p.parseExpr()
	p.skipNewlines()
	p.expect(token.CloseParen)
	p.skipNewlines()
	body := p.parseSceneBlockBody()

	n := ast.New(ast.Repeat, kw.Line, kw.Column)
	n.Append(count, body)
	return n
}

// parseSwitch distinguishes the arbitrary form (explicit `case`/`default`
// labels, fall-through, explicit `break`) from the simple form (bare
// value-or-range labels, each clause self-contained) by looking at the
// first token inside the braces.
func (p *parser) parseSwitch() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenParen)
	p.skipNewlines()
	sel := p.parseExpr()
	p.skipNewlines()
	p.expect(token.CloseParen)
	p.skipNewlines()
	p.expect(token.OpenCurly)
	p.skipNewlines()

	arbitrary := p.cur.Keyword == token.KwCase || p.cur.Keyword == token.KwDefault

	var n *ast.Node
	if arbitrary {
		n = ast.New(ast.Switch, kw.Line, kw.Column)
		n.Append(sel)
		for p.isMore() && !p.check(token.CloseCurly) {
			switch p.cur.Keyword {
			case token.KwCase:
				caseTok := p.cur
				p.advance()
				p.skipNewlines()
				val := p.parseExpr()
				p.skipNewlines()
				p.expect(token.Colon)
				label := ast.New(ast.SwitchCase, caseTok.Line, caseTok.Column)
				label.Append(val)
				n.Append(label)
			case token.KwDefault:
				defTok := p.cur
				p.advance()
				p.skipNewlines()
				p.expect(token.Colon)
				n.Append(ast.New(ast.SwitchDefault, defTok.Line, defTok.Column))
			default:
				stmt := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
				if stmt != nil {
					n.Append(stmt)
				}
			}
			p.skipNewlines()
		}
	} else {
		n = ast.New(ast.SwitchSimple, kw.Line, kw.Column)
		n.Append(sel)
		for p.isMore() && !p.check(token.CloseCurly) {
			if p.cur.Keyword == token.KwDefault {
				defTok := p.cur
				p.advance()
				p.skipNewlines()
				p.expect(token.Colon)
				p.skipNewlines()
				body := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
				n.Append(ast.New(ast.SwitchDefault, defTok.Line, defTok.Column), body)
			} else {
				label := p.parseRangeOrExpr()
				p.skipNewlines()
				p.expect(token.Colon)
				p.skipNewlines()
				body := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
				n.Append(label, body)
			}
			p.skipNewlines()
		}
	}

	p.expect(token.CloseCurly)
	return n
}

// parseSequence parses `sequence $var { LABEL[, LABEL...]: stmt ... }`.
func (p *parser) parseSequence() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	sel := p.parseVariable()
	p.skipNewlines()
	p.expect(token.OpenCurly)
	p.skipNewlines()

	n := ast.New(ast.Sequence, kw.Line, kw.Column)
	n.Append(sel)

	for p.isMore() && !p.check(token.CloseCurly) {
		n.Append(p.parseSequenceClauseGroup())
		p.skipNewlines()
	}
	p.expect(token.CloseCurly)
	return n
}

func (p *parser) parseSequenceClauseGroup() *ast.Node {
	group := ast.New(ast.SwitchCase, p.cur.Line, p.cur.Column)
	var labels []*ast.Node
	for {
		labels = append(labels, p.parseRangeOrExpr())
		p.skipNewlines()
		if _, ok := p.match(token.Comma); !ok {
			break
		}
		p.skipNewlines()
	}
	p.expect(token.Colon)
	p.skipNewlines()
	body := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
	for _, label := range labels {
		group.Append(label, body)
	}
	return group
}

// parseChoiceOrChooseOption parses the `chance EXPR [require EXPR]: stmt`
// tail shared by choice and choose options. errKind selects which
// without-a-statement error to raise if the body is missing.
func (p *parser) parseChoiceOrChooseOption(errKind ErrorKind) (chance, require, body *ast.Node) {
	p.expectKeyword(token.KwChance)
	p.skipNewlines()
	chance = p.parseExpr()
	p.skipNewlines()

	if p.cur.Keyword == token.KwRequire {
		p.advance()
		p.skipNewlines()
		require = p.parseExpr()
		p.skipNewlines()
	} else {
		require = ast.New(ast.None, p.cur.Line, p.cur.Column)
	}

	colon := p.expect(token.Colon)
	p.skipNewlines()

	if p.cur.Keyword == token.KwChoice || p.cur.Keyword == token.KwChance || p.check(token.CloseCurly) {
		p.errs.Add(errKind, colon.Line, colon.Column, "", "")
		body = ast.New(ast.None, colon.Line, colon.Column)
		return chance, require, body
	}
	body = p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
	return chance, require, body
}

func (p *parser) parseChoice() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenCurly)
	p.skipNewlines()

	n := ast.New(ast.Choice, kw.Line, kw.Column)
	before := p.recoverStatement(func() *ast.Node { return p.parseSceneStatement(token.KwNone) })
	n.Append(before)
	p.skipNewlines()

	for p.isMore() && p.cur.Keyword == token.KwChoice {
		optKw := p.cur
		p.advance()
		p.skipNewlines()

		var text *ast.Node
		switch p.cur.Kind {
		case token.String, token.MarkedString, token.ExcludeString:
			str := p.cur
			p.advance()
			text = ast.New(ast.ChoiceText, str.Line, str.Column)
			text.Content = str.Content
			text.Token = &str
			text.ExcludeTranslation = str.Kind == token.ExcludeString
		default:
			text = ast.New(ast.None, optKw.Line, optKw.Column)
		}
		p.skipNewlines()

		chance, require, body := p.parseChoiceOrChooseOption(ChoiceWithoutStatement)
		n.Append(text, chance, require, body)
		p.skipNewlines()
	}

	p.expect(token.CloseCurly)
	return n
}

func (p *parser) parseChoose() *ast.Node {
	kw := p.cur
	p.advance()
	p.skipNewlines()
	p.expect(token.OpenCurly)
	p.skipNewlines()

	n := ast.New(ast.Choose, kw.Line, kw.Column)
	for p.isMore() && p.cur.Keyword == token.KwChance {
		chance, require, body := p.parseChoiceOrChooseOption(ChooseWithoutStatement)
		n.Append(chance, require, body)
		p.skipNewlines()
	}
	p.expect(token.CloseCurly)
	return n
}
