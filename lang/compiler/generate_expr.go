package compiler

import (
	"strconv"
	"strings"

	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

var binaryOpcodes = map[token.Kind]Opcode{
	token.Plus:          Add,
	token.Minus:         Sub,
	token.Multiply:      Mul,
	token.Divide:        Div,
	token.Mod:           Mod,
	token.Power:         Pow,
	token.BitwiseAnd:    Bitand,
	token.BitwiseOr:     Bitor,
	token.BitwiseXor:    Bitxor,
	token.BitwiseLShift: Bitls,
	token.BitwiseRShift: Bitrs,
	token.CompareEQ:     Cmpeq,
	token.CompareNEQ:    Cmpneq,
	token.CompareLT:     Cmplt,
	token.CompareLTE:    Cmplte,
	token.CompareGT:     Cmpgt,
	token.CompareGTE:    Cmpgte,
}

// generateExpression emits code that leaves exactly one value on the stack.
func generateExpression(ctx *CompileContext, n *ast.Node) {
	switch n.Kind {
	case ast.ExprConstant:
		generateConstant(ctx, n)

	case ast.ExprBinary:
		switch n.Token.Kind {
		case token.LogicalAnd:
			generateExpression(ctx, n.Children[0])
			ctx.Emit(Dup)
			end := ctx.EmitPlaceholderJump(Jf)
			ctx.Emit(Pop)
			generateExpression(ctx, n.Children[1])
			ctx.Patch(end)
		case token.LogicalOr:
			generateExpression(ctx, n.Children[0])
			ctx.Emit(Dup)
			end := ctx.EmitPlaceholderJump(Jt)
			ctx.Emit(Pop)
			generateExpression(ctx, n.Children[1])
			ctx.Patch(end)
		default:
			generateExpression(ctx, n.Children[0])
			generateExpression(ctx, n.Children[1])
			op, ok := binaryOpcodes[n.Token.Kind]
			if !ok {
				ctx.Errs.Add(UnexpectedError, n.Line, n.Col, "unknown binary operator "+n.Token.Kind.String())
				return
			}
			ctx.Emit(op)
		}

	case ast.ExprTernary:
		generateExpression(ctx, n.Children[0])
		elseJump := ctx.EmitPlaceholderJump(Jf)
		generateExpression(ctx, n.Children[1])
		endJump := ctx.EmitPlaceholderJump(J)
		ctx.Patch(elseJump)
		generateExpression(ctx, n.Children[2])
		ctx.Patch(endJump)

	case ast.ExprNot:
		generateExpression(ctx, n.Children[0])
		ctx.Emit(Inv)

	case ast.ExprNegate:
		generateExpression(ctx, n.Children[0])
		ctx.Emit(Neg)

	case ast.ExprBitwiseNegate:
		generateExpression(ctx, n.Children[0])
		ctx.Emit(Bitneg)

	case ast.ExprArray:
		for _, c := range n.Children {
			generateExpression(ctx, c)
		}
		ctx.EmitInt(Makearr, int32(len(n.Children)))

	case ast.ExprAccessArray:
		generateExpression(ctx, n.Children[0])
		generateExpression(ctx, n.Children[1])
		ctx.Emit(Pusharrind)

	case ast.Variable:
		generateVariableRead(ctx, n)

	case ast.SceneFunction:
		for _, arg := range n.Children {
			generateExpression(ctx, arg)
		}
		ctx.EmitPatchCall(n.Content, int32(len(n.Children)))

	case ast.ExprPreIncrement, ast.ExprPreDecrement, ast.ExprPostIncrement, ast.ExprPostDecrement:
		generateIncDecExpression(ctx, n)

	default:
		ctx.Errs.Add(UnexpectedError, n.Line, n.Col, "unexpected expression node: "+n.Kind.String())
	}
}

func generateConstant(ctx *CompileContext, n *ast.Node) {
	tok := n.Token
	switch tok.Kind {
	case token.Number:
		if strings.ContainsRune(n.Content, '.') {
			f, _ := strconv.ParseFloat(n.Content, 64)
			ctx.EmitFloat(f)
		} else {
			i, _ := strconv.ParseInt(n.Content, 10, 64)
			ctx.EmitInt(Pushi, int32(i))
		}

	case token.Percentage:
		f, _ := strconv.ParseFloat(n.Content, 64)
		ctx.EmitFloat(f / 100)

	case token.Undefined:
		ctx.Emit(Pushu)

	case token.MarkedString:
		idx := ctx.RegisterTranslation(ctx.Symbol(""), n.Content)
		stampStringID(ctx, tok)
		ctx.EmitInt(Pushs, int32(idx))

	case token.String, token.ExcludeString:
		ctx.EmitInt(Pushbs, ctx.Intern(n.Content))

	default:
		ctx.Errs.Add(UnexpectedError, n.Line, n.Col, "unexpected constant token: "+tok.Kind.String())
	}
}

// generateVariableRead emits code to push the current value of a (possibly
// subscripted) variable.
func generateVariableRead(ctx *CompileContext, n *ast.Node) {
	local := ctx.LookupLocal(n.Content)
	emitVariableBasePush(ctx, n.Content, local)
	for _, idx := range n.Children {
		generateExpression(ctx, idx)
		ctx.Emit(Pusharrind)
	}
}

// emitVariableBasePush pushes the current value of the named variable (a
// slot >= 0 selects a local, -1 a global).
func emitVariableBasePush(ctx *CompileContext, name string, local int) {
	if local >= 0 {
		ctx.EmitInt(Pushvarloc, int32(local))
	} else {
		ctx.EmitInt(Pushvarglb, ctx.Intern(name))
	}
}

// emitVariableWrite emits the trailing set instruction for a variable
// assignment target.
func emitVariableWrite(ctx *CompileContext, name string, local int) {
	if local >= 0 {
		ctx.EmitInt(Setvarloc, int32(local))
	} else {
		ctx.EmitInt(Setvarglb, ctx.Intern(name))
	}
}

// generateIncDecExpression implements the pre/post ++/-- expansion from
// §4.3: push the base variable, walk every subscript with dup2/pusharrind to
// read the current element (keeping each (container, index) pair beneath it
// on the stack), push 1 and add/sub, then either dup (bare variable) or
// save (subscripted - the setarrind chain below needs the stack slot, so the
// expression's result is stashed out of band and restored with load once the
// write-back finishes) to pick the pre- or post-mutation value as this
// expression's result, and finally unwind one setarrind per subscript plus
// the outer variable set.
func generateIncDecExpression(ctx *CompileContext, n *ast.Node) {
	op := Add
	if n.Kind == ast.ExprPreDecrement || n.Kind == ast.ExprPostDecrement {
		op = Sub
	}
	isPre := n.Kind == ast.ExprPreIncrement || n.Kind == ast.ExprPreDecrement

	local := ctx.LookupLocal(n.Content)
	emitVariableBasePush(ctx, n.Content, local)
	for _, idx := range n.Children {
		generateExpression(ctx, idx)
		ctx.Emit(Dup2)
		ctx.Emit(Pusharrind)
	}
	nsubs := len(n.Children)
	stash := Dup
	if nsubs != 0 {
		stash = Save
	}

	if isPre {
		ctx.EmitInt(Pushi, 1)
		ctx.Emit(op)
		ctx.Emit(stash)
	} else {
		ctx.Emit(stash)
		ctx.EmitInt(Pushi, 1)
		ctx.Emit(op)
	}

	for i := 0; i < nsubs; i++ {
		ctx.Emit(Setarrind)
	}
	emitVariableWrite(ctx, n.Content, local)
	if nsubs != 0 {
		ctx.Emit(Load)
	}
}

// generateIncDecStatement implements ++/-- used as a statement: identical to
// the expression form but with the result discarded, so no dup/save/load is
// needed at all.
func generateIncDecStatement(ctx *CompileContext, n *ast.Node) {
	op := Add
	if n.Kind == ast.Decrement {
		op = Sub
	}

	local := ctx.LookupLocal(n.Content)
	emitVariableBasePush(ctx, n.Content, local)
	for _, idx := range n.Children {
		generateExpression(ctx, idx)
		ctx.Emit(Dup2)
		ctx.Emit(Pusharrind)
	}

	ctx.EmitInt(Pushi, 1)
	ctx.Emit(op)

	for range n.Children {
		ctx.Emit(Setarrind)
	}
	emitVariableWrite(ctx, n.Content, local)
}

// compoundAssignOpcodes maps a compound-assignment token to the arithmetic
// opcode it applies between the current value and the right-hand side.
var compoundAssignOpcodes = map[token.Kind]Opcode{
	token.PlusEquals:       Add,
	token.MinusEquals:      Sub,
	token.MultiplyEquals:   Mul,
	token.DivideEquals:     Div,
	token.ModEquals:        Mod,
	token.BitwiseAndEquals: Bitand,
	token.BitwiseOrEquals:  Bitor,
	token.BitwiseXorEquals: Bitxor,
}

// generateAssign implements the §4.3 assignment expansion for `$a[i][j] OP=
// expr` (and its `=` and bare-variable special cases). The last child is the
// right-hand side; the rest are the subscript chain. A non-`=` operator
// reads the current element by doing dup2/pusharrind even on the last
// subscript (needed to fetch the value the operator applies to); plain `=`
// skips that final read since nothing needs to consume it.
func generateAssign(ctx *CompileContext, n *ast.Node) {
	subs := n.Children[:len(n.Children)-1]
	value := n.Children[len(n.Children)-1]

	var local int
	if n.Modifier == token.KwLocal {
		local = ctx.DeclareLocal(n.Content, n.Line, n.Col)
	} else {
		local = ctx.LookupLocal(n.Content)
	}

	arr := len(subs) != 0
	op, compound := compoundAssignOpcodes[n.Token.Kind]

	if arr || compound {
		emitVariableBasePush(ctx, n.Content, local)
		for i, s := range subs {
			generateExpression(ctx, s)
			if i+1 < len(subs) || compound {
				ctx.Emit(Dup2)
				ctx.Emit(Pusharrind)
			}
		}
	}

	generateExpression(ctx, value)
	if compound {
		ctx.Emit(op)
	}

	if arr {
		for range subs {
			ctx.Emit(Setarrind)
		}
	}
	emitVariableWrite(ctx, n.Content, local)
}
