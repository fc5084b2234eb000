package compiler

import "github.com/diannex-lang/diannex/lang/ast"

// generateSceneBlock emits every statement of a scene/function body or a
// nested `{ ... }` block in order.
func generateSceneBlock(ctx *CompileContext, block *ast.Node) {
	for _, stmt := range block.Children {
		generateSceneStatement(ctx, stmt)
	}
}

// generateSceneStatement is the scene-scope statement dispatcher, the direct
// counterpart of generateExpression one level up.
func generateSceneStatement(ctx *CompileContext, n *ast.Node) {
	switch n.Kind {
	case ast.SceneBlock:
		generateSceneBlock(ctx, n)

	case ast.Increment, ast.Decrement:
		generateIncDecStatement(ctx, n)

	case ast.Assign:
		generateAssign(ctx, n)

	case ast.Variable:
		// a bare variable read used as a statement; its value is discarded.
		generateVariableRead(ctx, n)
		ctx.Emit(Pop)

	case ast.ShorthandChar:
		generateShorthandChar(ctx, n)

	case ast.SceneFunction:
		for _, arg := range n.Children {
			generateExpression(ctx, arg)
		}
		ctx.EmitPatchCall(n.Content, int32(len(n.Children)))
		ctx.Emit(Pop)

	case ast.TextRun:
		generateTextRun(ctx, n, true)

	case ast.ChoiceText:
		generateTextRun(ctx, n, false)

	case ast.If:
		generateIf(ctx, n)
	case ast.While:
		generateWhile(ctx, n)
	case ast.For:
		generateFor(ctx, n)
	case ast.Do:
		generateDo(ctx, n)
	case ast.Repeat:
		generateRepeat(ctx, n)
	case ast.Switch:
		generateSwitch(ctx, n)
	case ast.SwitchSimple:
		generateSwitchSimple(ctx, n)
	case ast.Choice:
		generateChoice(ctx, n)
	case ast.Choose:
		generateChoose(ctx, n)
	case ast.Sequence:
		generateSequence(ctx, n)

	case ast.Continue:
		generateContinue(ctx, n)
	case ast.Break:
		generateBreak(ctx, n)
	case ast.Return:
		generateReturn(ctx, n)

	case ast.MarkedComment:
		ctx.RegisterCommentTranslation(ctx.Symbol(""), n.Content)

	case ast.None:
		// a statement the parser could not recover a real node for.

	default:
		ctx.Errs.Add(UnexpectedError, n.Line, n.Col, "unexpected scene statement node: "+n.Kind.String())
	}
}

// generateShorthandChar implements `name: stmt` / `"text": stmt`: push the
// speaker name (never translated, matching a plain or excluded text run),
// call the builtin char(name) and discard its result, then generate the
// attached statement in its own local scope.
func generateShorthandChar(ctx *CompileContext, n *ast.Node) {
	ctx.EmitInt(Pushbs, ctx.Intern(n.Content))
	ctx.EmitPatchCall("char", 1)
	ctx.Emit(Pop)

	ctx.PushLocalFrame()
	generateSceneStatement(ctx, n.Children[0])
	ctx.PopLocalFrame()
}

// generateTextRun pushes a text run's (or a choice option's text's) string
// value. isStatement additionally emits the textrun opcode that hands the
// pushed string to the runtime's dialogue box - a choice's option text is
// only ever an operand to choiceadd/choiceaddt, never run on its own.
func generateTextRun(ctx *CompileContext, n *ast.Node, isStatement bool) {
	if n.ExcludeTranslation {
		ctx.EmitInt(Pushbs, ctx.Intern(n.Content))
	} else {
		idx := ctx.RegisterTranslation(ctx.Symbol(""), n.Content)
		stampStringID(ctx, n.Token)
		ctx.EmitInt(Pushs, int32(idx))
	}
	if isStatement {
		ctx.Emit(Textrun)
	}
}

func generateIf(ctx *CompileContext, n *ast.Node) {
	generateExpression(ctx, n.Children[0])
	fail := ctx.EmitPlaceholderJump(Jf)

	ctx.PushLocalFrame()
	generateSceneStatement(ctx, n.Children[1])
	ctx.PopLocalFrame()

	if len(n.Children) == 3 {
		end := ctx.EmitPlaceholderJump(J)
		ctx.Patch(fail)
		ctx.PushLocalFrame()
		generateSceneStatement(ctx, n.Children[2])
		ctx.PopLocalFrame()
		ctx.Patch(end)
	} else {
		ctx.Patch(fail)
	}
}

func generateWhile(ctx *CompileContext, n *ast.Node) {
	ctx.PushLocalFrame()

	condIdx := len(ctx.Bytecode)
	generateExpression(ctx, n.Children[0])
	fail := ctx.EmitPlaceholderJump(Jf)

	ctx.PushLoop()
	generateSceneStatement(ctx, n.Children[1])
	back := ctx.EmitPlaceholderJump(J)
	ctx.PatchTo(back, condIdx)
	ctx.PopLoop(condIdx)

	ctx.Patch(fail)
	ctx.PopLocalFrame()
}

func generateFor(ctx *CompileContext, n *ast.Node) {
	ctx.PushLocalFrame()
	generateSceneStatement(ctx, n.Children[0]) // init

	condIdx := len(ctx.Bytecode)
	generateExpression(ctx, n.Children[1]) // cond
	fail := ctx.EmitPlaceholderJump(Jf)

	ctx.PushLoop()
	generateSceneStatement(ctx, n.Children[3]) // body
	contIdx := len(ctx.Bytecode)
	generateSceneStatement(ctx, n.Children[2]) // step
	back := ctx.EmitPlaceholderJump(J)
	ctx.PatchTo(back, condIdx)

	ctx.Patch(fail)
	ctx.PopLoop(contIdx)
	ctx.PopLocalFrame()
}

func generateDo(ctx *CompileContext, n *ast.Node) {
	ctx.PushLocalFrame()

	topIdx := len(ctx.Bytecode)
	ctx.PushLoop()
	generateSceneStatement(ctx, n.Children[0]) // body
	contIdx := len(ctx.Bytecode)
	generateExpression(ctx, n.Children[1]) // cond
	back := ctx.EmitPlaceholderJump(Jt)
	ctx.PatchTo(back, topIdx)
	ctx.PopLoop(contIdx)

	ctx.PopLocalFrame()
}

func generateRepeat(ctx *CompileContext, n *ast.Node) {
	generateExpression(ctx, n.Children[0]) // count

	topIdx := len(ctx.Bytecode)
	ctx.Emit(Dup)
	ctx.EmitInt(Pushi, 0)
	ctx.Emit(Cmpgt)
	fail := ctx.EmitPlaceholderJump(Jf)

	ctx.PushLocalFrame()
	ctx.PushLoop(Pop)
	generateSceneStatement(ctx, n.Children[1]) // body
	contIdx := len(ctx.Bytecode)
	ctx.EmitInt(Pushi, 1)
	ctx.Emit(Sub)
	back := ctx.EmitPlaceholderJump(J)
	ctx.PatchTo(back, topIdx)

	ctx.Patch(fail)
	ctx.PopLoop(contIdx)
	ctx.Emit(Pop)
	ctx.PopLocalFrame()
}

// finishNonIteratingLoop closes out a switch/switchSimple's loop context.
// Neither construct has a continue target of its own - diannex has no
// "restart the switch" notion - so a continue written directly inside one
// only ever reaches here provisionally. If there's a loop further out to
// send it to, this rewrites those continues into a small stub that drops
// this construct's own selector (its returnCleanup) and re-registers the
// jump on the enclosing loop; otherwise any still-pending continue has
// nowhere valid to go and PopLoop(-1) reports it.
func finishNonIteratingLoop(ctx *CompileContext, loop *loopContext, enclosing *loopContext) {
	if enclosing == nil || len(loop.continuePatch) == 0 {
		ctx.PopLoop(-1)
		return
	}

	end := ctx.EmitPlaceholderJump(J)
	ctx.patchContinues(loop, len(ctx.Bytecode))
	for _, op := range loop.returnCleanup {
		ctx.Emit(op)
	}
	newContinue := ctx.EmitPlaceholderJump(J)
	for _, pj := range loop.breakPatch {
		ctx.Patch(pj.index)
	}
	ctx.loopStack = ctx.loopStack[:len(ctx.loopStack)-1]
	enclosing.continuePatch = append(enclosing.continuePatch, pendingJump{index: newContinue})
	ctx.Patch(end)
}

// generateSwitch implements the arbitrary-form switch: explicit case/default
// labels and fall-through, matched top-to-bottom against dup'd copies of the
// selector.
func generateSwitch(ctx *CompileContext, n *ast.Node) {
	var enclosing *loopContext
	if len(ctx.loopStack) != 0 {
		enclosing = ctx.loopStack[len(ctx.loopStack)-1]
	}

	generateExpression(ctx, n.Children[0])
	ctx.PushLocalFrame()
	loop := ctx.PushLoop(Pop)

	type caseEntry struct {
		jumpIdx int
		nodeIdx int // index into rest
	}
	rest := n.Children[1:]
	var cases []caseEntry
	foundCase := false
	defaultInd := -1
	defaultInsertLoc := -1

	for i, curr := range rest {
		switch curr.Kind {
		case ast.SwitchCase:
			foundCase = true
			ctx.Emit(Dup)
			generateExpression(ctx, curr.Children[0])
			ctx.Emit(Cmpeq)
			cases = append(cases, caseEntry{ctx.EmitPlaceholderJump(Jt), i})
		case ast.SwitchDefault:
			foundCase = true
			defaultInd = i
			defaultInsertLoc = len(cases)
		default:
			if !foundCase {
				ctx.Errs.Add(StatementsBeforeSwitchCase, curr.Line, curr.Col, "")
			}
		}
	}

	hasAllFail := defaultInd == -1
	var allFail int
	if !hasAllFail {
		jmp := ctx.EmitPlaceholderJump(J)
		entry := caseEntry{jmp, defaultInd}
		cases = append(cases[:defaultInsertLoc], append([]caseEntry{entry}, cases[defaultInsertLoc:]...)...)
	} else {
		allFail = ctx.EmitPlaceholderJump(J)
	}

	for idx, c := range cases {
		end := len(rest)
		if idx+1 < len(cases) {
			end = cases[idx+1].nodeIdx
		}
		ctx.Patch(c.jumpIdx)
		for i := c.nodeIdx + 1; i < end; i++ {
			generateSceneStatement(ctx, rest[i])
		}
	}

	finishNonIteratingLoop(ctx, loop, enclosing)
	if hasAllFail {
		ctx.Patch(allFail)
	}
	ctx.Emit(Pop)
	ctx.PopLocalFrame()
}

// generateSwitchSimple implements the simple-form switch: bare value-or-range
// labels, each clause self-contained (no fall-through, no explicit break
// needed to end a clause).
func generateSwitchSimple(ctx *CompileContext, n *ast.Node) {
	var enclosing *loopContext
	if len(ctx.loopStack) != 0 {
		enclosing = ctx.loopStack[len(ctx.loopStack)-1]
	}

	generateExpression(ctx, n.Children[0])
	ctx.PushLocalFrame()
	loop := ctx.PushLoop(Pop)

	rest := n.Children[1:]
	numPairs := len(rest) / 2
	var jumps []int
	defaultPair := -1

	for k := 0; k < numPairs; k++ {
		label := rest[k*2]
		switch {
		case label.Kind == ast.SwitchDefault:
			defaultPair = k
		case label.Kind == ast.ExprRange:
			ctx.Emit(Dup)
			generateExpression(ctx, label.Children[0])
			ctx.Emit(Cmpgte)
			toNext := ctx.EmitPlaceholderJump(Jf)
			ctx.Emit(Dup)
			generateExpression(ctx, label.Children[1])
			ctx.Emit(Cmplte)
			jumps = append(jumps, ctx.EmitPlaceholderJump(Jt))
			ctx.Patch(toNext)
		default:
			ctx.Emit(Dup)
			generateExpression(ctx, label)
			ctx.Emit(Cmpeq)
			jumps = append(jumps, ctx.EmitPlaceholderJump(Jt))
		}
	}

	if defaultPair != -1 {
		generateSceneStatement(ctx, rest[defaultPair*2+1])
	}

	toEnd := []int{ctx.EmitPlaceholderJump(J)}
	counter := 0
	for k := 0; k < numPairs; k++ {
		if k == defaultPair {
			continue
		}
		ctx.Patch(jumps[counter])
		generateSceneStatement(ctx, rest[k*2+1])
		toEnd = append(toEnd, ctx.EmitPlaceholderJump(J))
		counter++
	}

	finishNonIteratingLoop(ctx, loop, enclosing)
	for _, idx := range toEnd {
		ctx.Patch(idx)
	}
	ctx.Emit(Pop)
	ctx.PopLocalFrame()
}

// generateChoice implements `choice { stmt; choice "text" chance C [require
// R]: stmt ... }`: an always-run leading statement, then one choicebeg/
// choiceadd(t)/choicesel dialogue-box round, then the chosen option's
// statement.
func generateChoice(ctx *CompileContext, n *ast.Node) {
	ctx.Emit(Choicebeg)

	ctx.PushLocalFrame()
	generateSceneStatement(ctx, n.Children[0])
	ctx.PopLocalFrame()

	rest := n.Children[1:]
	numOptions := len(rest) / 4
	var choices []int

	for k := 0; k < numOptions; k++ {
		base := k * 4
		text, chance, require := rest[base], rest[base+1], rest[base+2]

		if text.Kind == ast.None {
			ctx.Emit(Pushu)
		} else {
			generateSceneStatement(ctx, text)
		}

		generateExpression(ctx, chance)
		if require.Kind == ast.None {
			choices = append(choices, ctx.EmitPlaceholderJump(Choiceadd))
		} else {
			generateExpression(ctx, require)
			choices = append(choices, ctx.EmitPlaceholderJump(Choiceaddt))
		}
	}

	ctx.Emit(Choicesel)

	var jumps []int
	for k := 0; k < numOptions; k++ {
		ctx.Patch(choices[k])
		ctx.PushLocalFrame()
		generateSceneStatement(ctx, rest[k*4+3])
		ctx.PopLocalFrame()
		if k+1 < numOptions {
			jumps = append(jumps, ctx.EmitPlaceholderJump(J))
		}
	}
	for _, idx := range jumps {
		ctx.Patch(idx)
	}
}

// generateChoose implements `choose { chance C [require R]: stmt ... }`: the
// same chooseadd(t)/choosesel round as choice, without the leading statement
// or option text (a choose has no dialogue box to show).
func generateChoose(ctx *CompileContext, n *ast.Node) {
	numOptions := len(n.Children) / 3
	var choices []int

	for k := 0; k < numOptions; k++ {
		base := k * 3
		chance, require := n.Children[base], n.Children[base+1]

		generateExpression(ctx, chance)
		if require.Kind == ast.None {
			choices = append(choices, ctx.EmitPlaceholderJump(Chooseadd))
		} else {
			generateExpression(ctx, require)
			choices = append(choices, ctx.EmitPlaceholderJump(Chooseaddt))
		}
	}

	ctx.Emit(Choosesel)

	var jumps []int
	for k := 0; k < numOptions; k++ {
		ctx.Patch(choices[k])
		ctx.PushLocalFrame()
		generateSceneStatement(ctx, n.Children[k*3+2])
		ctx.PopLocalFrame()
		if k+1 < numOptions {
			jumps = append(jumps, ctx.EmitPlaceholderJump(J))
		}
	}
	for _, idx := range jumps {
		ctx.Patch(idx)
	}
}

// seqJump records a sequence label's match jump: jt is the jt testing this
// label, farther is the jt that fires when the selector already sits at a
// closing range's upper bound (-1 if this label isn't a range, or isn't the
// last label of its comma-group).
type seqJump struct {
	jt      int
	farther int
}

// generateSequence implements `sequence $var { LABEL[, LABEL...]: stmt ...
// }`: match $var against each label (in source order, across every
// comma-group) and run the first one that hits. Before running its body, a
// matched clause steps $var so a second call advances through the group: a
// plain label that isn't the last of its group sets $var to the next label's
// value (a range's lower bound); a range label that isn't the last increments
// $var until it reaches the range's upper bound and then steps on to the next
// label the same way; a range that is the last label increments $var until
// its upper bound and then leaves it there; a plain last label leaves $var
// unchanged. continue restarts the whole match from the selector load.
func generateSequence(ctx *CompileContext, n *ast.Node) {
	sel := n.Children[0]
	local := ctx.LookupLocal(sel.Content)
	groups := n.Children[1:]

	topIdx := len(ctx.Bytecode)
	generateExpression(ctx, sel)
	ctx.PushLocalFrame()
	loop := ctx.PushLoop(Pop)

	var jumps []seqJump
	for _, group := range groups {
		pairs := group.Children
		for i := 0; i+1 < len(pairs); i += 2 {
			label := pairs[i]
			ctx.Emit(Dup)
			if label.Kind == ast.ExprRange {
				farther := -1
				if i+2 >= len(pairs) {
					generateExpression(ctx, label.Children[1])
					ctx.Emit(Cmpeq)
					farther = ctx.EmitPlaceholderJump(Jt)
					ctx.Emit(Dup)
				}
				generateExpression(ctx, label.Children[0])
				ctx.Emit(Cmpgte)
				toNext := ctx.EmitPlaceholderJump(Jf)
				ctx.Emit(Dup)
				generateExpression(ctx, label.Children[1])
				ctx.Emit(Cmplte)
				jt := ctx.EmitPlaceholderJump(Jt)
				ctx.Patch(toNext)
				jumps = append(jumps, seqJump{jt, farther})
			} else {
				generateExpression(ctx, label)
				ctx.Emit(Cmpeq)
				jumps = append(jumps, seqJump{ctx.EmitPlaceholderJump(Jt), -1})
			}
		}
	}

	toEnd := []int{ctx.EmitPlaceholderJump(J)}

	counter := 0
	for _, group := range groups {
		pairs := group.Children
		for i := 1; i < len(pairs); i += 2 {
			label, body := pairs[i-1], pairs[i]
			cj := jumps[counter]
			ctx.Patch(cj.jt)

			switch {
			case i+1 < len(pairs):
				next := pairs[i+1]
				if label.Kind == ast.ExprRange {
					// a range label: step on to the next label only if the
					// selector has already reached the range's upper bound,
					// otherwise just increment within the range.
					ctx.Emit(Dup)
					generateExpression(ctx, label.Children[1])
					ctx.Emit(Cmpeq)
					notEqual := ctx.EmitPlaceholderJump(Jf)
					generateSequenceNextValue(ctx, next)
					equal := ctx.EmitPlaceholderJump(J)
					ctx.Patch(notEqual)
					ctx.Emit(Dup)
					ctx.EmitInt(Pushi, 1)
					ctx.Emit(Add)
					ctx.Patch(equal)
					emitVariableWrite(ctx, sel.Content, local)
				} else {
					generateSequenceNextValue(ctx, next)
					emitVariableWrite(ctx, sel.Content, local)
				}
			case cj.farther != -1:
				ctx.Emit(Dup)
				ctx.EmitInt(Pushi, 1)
				ctx.Emit(Add)
				emitVariableWrite(ctx, sel.Content, local)
				ctx.Patch(cj.farther)
			}

			generateSceneStatement(ctx, body)
			toEnd = append(toEnd, ctx.EmitPlaceholderJump(J))
			counter++
		}
	}

	if len(loop.continuePatch) != 0 {
		ctx.Emit(Pop)
		back := ctx.EmitPlaceholderJump(J)
		ctx.PatchTo(back, topIdx)
		ctx.PopLoop(len(ctx.Bytecode) - 2)
	} else {
		ctx.PopLoop(-1)
	}
	for _, idx := range toEnd {
		ctx.Patch(idx)
	}
	ctx.Emit(Pop)
	ctx.PopLocalFrame()
}

// generateSequenceNextValue pushes the value $var should step to: a range
// label's lower bound, or a plain label's value directly.
func generateSequenceNextValue(ctx *CompileContext, next *ast.Node) {
	if next.Kind == ast.ExprRange {
		generateExpression(ctx, next.Children[0])
	} else {
		generateExpression(ctx, next)
	}
}

func generateContinue(ctx *CompileContext, n *ast.Node) {
	loop := ctx.CurrentLoop()
	if loop == nil {
		ctx.Errs.Add(ContinueOutsideOfLoop, n.Line, n.Col, "")
		return
	}
	ctx.popLocalsForJump(loop)
	idx := ctx.EmitPlaceholderJump(J)
	loop.continuePatch = append(loop.continuePatch, pendingJump{idx, n.Line, n.Col})
}

func generateBreak(ctx *CompileContext, n *ast.Node) {
	loop := ctx.CurrentLoop()
	if loop == nil {
		ctx.Errs.Add(BreakOutsideOfLoop, n.Line, n.Col, "")
		return
	}
	ctx.popLocalsForJump(loop)
	idx := ctx.EmitPlaceholderJump(J)
	loop.breakPatch = append(loop.breakPatch, pendingJump{idx, n.Line, n.Col})
}

// cleanupOp is one instruction of a return's unwind sequence: every
// enclosing loop's returnCleanup, outermost last, followed by a freeloc for
// every currently live local, innermost first.
type cleanupOp struct {
	op   Opcode
	slot int32
}

// generateReturn implements `return [expr]`: stash the return value (if any)
// out of band with save/pop, replay the unwind sequence, then restore the
// value with load and ret. With no value, the unwind sequence (if any) is
// followed by a bare exit.
func generateReturn(ctx *CompileContext, n *ast.Node) {
	var ops []cleanupOp
	for i := len(ctx.loopStack) - 1; i >= 0; i-- {
		for _, op := range ctx.loopStack[i].returnCleanup {
			ops = append(ops, cleanupOp{op: op})
		}
	}
	for i := len(ctx.LocalStack) - 1; i >= 0; i-- {
		ops = append(ops, cleanupOp{op: Freeloc, slot: int32(i)})
	}
	cleanup := len(ops) != 0

	hasValue := len(n.Children) == 1
	if hasValue {
		generateExpression(ctx, n.Children[0])
		if cleanup {
			ctx.Emit(Save)
			ctx.Emit(Pop)
		}
	}

	for _, c := range ops {
		if c.op == Freeloc {
			ctx.EmitInt(Freeloc, c.slot)
		} else {
			ctx.Emit(c.op)
		}
	}

	if !hasValue {
		ctx.Emit(Exit)
		return
	}
	if cleanup {
		ctx.Emit(Load)
	}
	ctx.Emit(Ret)
}
