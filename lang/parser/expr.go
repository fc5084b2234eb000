package parser

import (
	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

// parseExpr parses a full expression, starting at the loosest-binding
// layer (the conditional operator). The layering below mirrors the
// reference compiler's ParseConditional/ParseOr/ParseAnd/ParseCompare/
// ParseBitwise/ParseBitShift/ParseAddSub/ParseMulDiv/ParseExprLast chain:
// each layer parses its operand from the next-tighter layer, so precedence
// is encoded directly in the call graph rather than a table.
func (p *parser) parseExpr() *ast.Node {
	return p.parseConditional()
}

func (p *parser) parseConditional() *ast.Node {
	cond := p.parseLogicalOr()
	if _, ok := p.match(token.Ternary); !ok {
		return cond
	}
	p.skipNewlines()
	then := p.parseExpr()
	p.skipNewlines()
	p.expect(token.Colon)
	p.skipNewlines()
	els := p.parseConditional() // right-associative

	n := ast.New(ast.ExprTernary, cond.Line, cond.Col)
	n.Append(cond, then, els)
	return n
}

// binaryLayer parses a left-associative chain of binary operators whose
// kinds are in ops, with operands coming from next.
func (p *parser) binaryLayer(next func() *ast.Node, ops ...token.Kind) *ast.Node {
	left := next()
	for {
		matched := false
		for _, k := range ops {
			if p.check(k) {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		opTok := p.cur
		p.advance()
		p.skipNewlines()
		right := next()

		n := ast.New(ast.ExprBinary, opTok.Line, opTok.Column)
		n.Token = &opTok
		n.Append(left, right)
		left = n
	}
}

func (p *parser) parseLogicalOr() *ast.Node {
	return p.binaryLayer(p.parseLogicalAnd, token.LogicalOr)
}

func (p *parser) parseLogicalAnd() *ast.Node {
	return p.binaryLayer(p.parseCompare, token.LogicalAnd)
}

func (p *parser) parseCompare() *ast.Node {
	return p.binaryLayer(p.parseBitwise,
		token.CompareEQ, token.CompareNEQ,
		token.CompareLT, token.CompareLTE,
		token.CompareGT, token.CompareGTE)
}

func (p *parser) parseBitwise() *ast.Node {
	return p.binaryLayer(p.parseBitShift, token.BitwiseAnd, token.BitwiseOr, token.BitwiseXor)
}

func (p *parser) parseBitShift() *ast.Node {
	return p.binaryLayer(p.parseAddSub, token.BitwiseLShift, token.BitwiseRShift)
}

func (p *parser) parseAddSub() *ast.Node {
	return p.binaryLayer(p.parseMulDiv, token.Plus, token.Minus)
}

func (p *parser) parseMulDiv() *ast.Node {
	return p.binaryLayer(p.parseUnary, token.Multiply, token.Divide, token.Mod, token.Power)
}

func (p *parser) parseUnary() *ast.Node {
	switch p.cur.Kind {
	case token.Not:
		t := p.cur
		p.advance()
		operand := p.parseUnary()
		n := ast.New(ast.ExprNot, t.Line, t.Column)
		n.Token = &t
		n.Append(operand)
		return n

	case token.Minus:
		t := p.cur
		p.advance()
		operand := p.parseUnary()
		n := ast.New(ast.ExprNegate, t.Line, t.Column)
		n.Token = &t
		n.Append(operand)
		return n

	case token.BitwiseNegate:
		t := p.cur
		p.advance()
		operand := p.parseUnary()
		n := ast.New(ast.ExprBitwiseNegate, t.Line, t.Column)
		n.Token = &t
		n.Append(operand)
		return n

	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression, then applies any trailing `[idx]`
// subscript chain and a single trailing `++`/`--`.
func (p *parser) parsePostfix() *ast.Node {
	n := p.parsePrimary()

	for p.check(token.OpenBrack) {
		p.advance()
		p.skipNewlines()
		idx := p.parseExpr()
		p.skipNewlines()
		p.expect(token.CloseBrack)

		if n.Kind == ast.Variable {
			n.Children = append(n.Children, idx)
			continue
		}
		acc := ast.New(ast.ExprAccessArray, n.Line, n.Col)
		acc.Append(n, idx)
		n = acc
	}

	if n.Kind == ast.Variable {
		switch p.cur.Kind {
		case token.Increment:
			p.advance()
			post := ast.New(ast.ExprPostIncrement, n.Line, n.Col)
			post.Content = n.Content
			post.Children = n.Children
			return post
		case token.Decrement:
			p.advance()
			post := ast.New(ast.ExprPostDecrement, n.Line, n.Col)
			post.Content = n.Content
			post.Children = n.Children
			return post
		}
	}
	return n
}

func (p *parser) parsePrimary() *ast.Node {
	t := p.cur
	switch t.Kind {
	case token.Number, token.Percentage, token.String, token.MarkedString, token.ExcludeString, token.Undefined:
		p.advance()
		n := ast.New(ast.ExprConstant, t.Line, t.Column)
		n.Token = &t
		n.Content = t.Content
		return n

	case token.OpenParen:
		p.advance()
		p.skipNewlines()
		inner := p.parseExpr()
		p.skipNewlines()
		p.expect(token.CloseParen)
		return inner

	case token.OpenBrack:
		p.advance()
		p.skipNewlines()
		n := ast.New(ast.ExprArray, t.Line, t.Column)
		for !p.check(token.CloseBrack) {
			n.Append(p.parseExpr())
			p.skipNewlines()
			if _, ok := p.match(token.Comma); !ok {
				break
			}
			p.skipNewlines()
		}
		p.expect(token.CloseBrack)
		return n

	case token.Increment, token.Decrement:
		p.advance()
		p.skipNewlines()
		v := p.parseVariable()
		kind := ast.ExprPreIncrement
		if t.Kind == token.Decrement {
			kind = ast.ExprPreDecrement
		}
		n := ast.New(kind, t.Line, t.Column)
		n.Content = v.Content
		n.Children = v.Children
		return n

	case token.VariableStart:
		return p.parseVariable()

	case token.Ident:
		return p.parseCall()

	default:
		if t.Kind == token.EOF {
			p.errorf(UnexpectedEOF, "", "")
		} else {
			p.errorf(UnexpectedToken, t.Kind.String(), "")
		}
		panic(abort{})
	}
}

// parseVariable parses `$name` followed by zero or more `[index]`
// subscripts, as a read (the caller wraps it in Assign/Increment/Decrement
// when it is actually a mutation target).
func (p *parser) parseVariable() *ast.Node {
	start := p.expect(token.VariableStart)
	name := p.expect(token.Ident)
	n := ast.New(ast.Variable, start.Line, start.Column)
	n.Content = name.Content
	for p.check(token.OpenBrack) {
		p.advance()
		p.skipNewlines()
		n.Append(p.parseExpr())
		p.skipNewlines()
		p.expect(token.CloseBrack)
	}
	return n
}

// parseCall parses `name(args...)`, the only form a bare identifier takes
// as an expression.
func (p *parser) parseCall() *ast.Node {
	name := p.expect(token.Ident)
	n := ast.New(ast.SceneFunction, name.Line, name.Column)
	n.Content = name.Content
	p.expect(token.OpenParen)
	p.skipNewlines()
	for !p.check(token.CloseParen) {
		n.Append(p.parseExpr())
		p.skipNewlines()
		if _, ok := p.match(token.Comma); !ok {
			break
		}
		p.skipNewlines()
	}
	p.expect(token.CloseParen)
	return n
}

// parseRangeOrExpr parses a single expression, or (if followed by `..`) a
// range `lo..hi`, for use in switch/sequence case labels.
func (p *parser) parseRangeOrExpr() *ast.Node {
	lo := p.parseExpr()
	if _, ok := p.match(token.Range); !ok {
		return lo
	}
	p.skipNewlines()
	hi := p.parseExpr()
	n := ast.New(ast.ExprRange, lo.Line, lo.Col)
	n.Append(lo, hi)
	return n
}
