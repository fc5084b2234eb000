// Package compiler walks a lang/ast tree and emits diannex bytecode into a
// shared CompileContext: symbol tables, an interned string pool, a flat
// instruction stream with index-based jump patching, and the translation
// record stream consumed by the .dxt writers.
package compiler

import "github.com/diannex-lang/diannex/lang/ast"

// Generate walks root (one file's parsed Block) and emits into ctx. Errors
// are accumulated on ctx.Errs rather than returned directly, matching the
// lexer/parser's accumulate-and-continue error policy; callers should check
// ctx.Errs.Err() after Generate returns.
func Generate(ctx *CompileContext, root *ast.Node) {
	generateGroupBlock(ctx, root)
}

func generateGroupBlock(ctx *CompileContext, block *ast.Node) {
	for _, stmt := range block.Children {
		generateGroupStatement(ctx, stmt)
	}
}

func generateGroupStatement(ctx *CompileContext, n *ast.Node) {
	switch n.Kind {
	case ast.Namespace:
		ctx.SymbolStack = append(ctx.SymbolStack, n.Content)
		generateGroupBlock(ctx, n)
		ctx.SymbolStack = ctx.SymbolStack[:len(ctx.SymbolStack)-1]

	case ast.Scene:
		generateScene(ctx, n)

	case ast.Function:
		generateFunction(ctx, n)

	case ast.Definitions:
		generateDefinitions(ctx, n)

	case ast.MarkedComment:
		ctx.RegisterCommentTranslation(ctx.Symbol(""), n.Content)

	case ast.None:
		// placeholder for a group statement the parser could not recover a
		// real node for; nothing to emit.

	default:
		ctx.Errs.Add(UnexpectedError, n.Line, n.Col, "unexpected group node: "+n.Kind.String())
	}
}

// generateFlagExpressions compiles each flag's require (and optional
// default) expression as its own free-standing instruction sequence,
// terminated by ret so it can be entered independently of the scene or
// function body, and returns the flattened [require0, default0, require1,
// default1, ...] entry-index list the scene/function table records after
// the body entry. A flag with no default expression gets a pushu fragment
// instead, so every slot in the list is a valid, dereferenceable entry.
func generateFlagExpressions(ctx *CompileContext, flags []*ast.Flag) []int {
	var indices []int
	for _, f := range flags {
		reqEntry := len(ctx.Bytecode)
		if f.Required != nil {
			generateExpression(ctx, f.Required)
		} else {
			ctx.Emit(Pushu)
		}
		ctx.Emit(Ret)

		defEntry := len(ctx.Bytecode)
		if f.Default != nil {
			generateExpression(ctx, f.Default)
		} else {
			ctx.Emit(Pushu)
		}
		ctx.Emit(Ret)

		indices = append(indices, reqEntry, defEntry)
	}
	return indices
}

func generateScene(ctx *CompileContext, n *ast.Node) {
	symbol := ctx.Symbol(n.Content)
	if _, exists := ctx.SceneTable[symbol]; exists {
		ctx.Errs.Add(SceneAlreadyExists, n.Line, n.Col, symbol)
		return
	}

	ctx.SymbolStack = append(ctx.SymbolStack, n.Content)
	defer func() { ctx.SymbolStack = ctx.SymbolStack[:len(ctx.SymbolStack)-1] }()

	body := n.Children[0]
	bodyEntry := -1
	if len(body.Children) > 0 {
		bodyEntry = len(ctx.Bytecode)
		ctx.PushLocalFrame()
		generateSceneBlock(ctx, body)
		ctx.PopLocalFrame()
		ctx.Emit(Exit)
	}

	indices := append([]int{bodyEntry}, generateFlagExpressions(ctx, n.Flags)...)
	ctx.SceneTable[symbol] = indices
}

func generateFunction(ctx *CompileContext, n *ast.Node) {
	symbol := ctx.Symbol(n.Content)
	if _, exists := ctx.FunctionTable[symbol]; exists {
		ctx.Errs.Add(FunctionAlreadyExists, n.Line, n.Col, symbol)
		return
	}

	ctx.SymbolStack = append(ctx.SymbolStack, n.Content)
	defer func() { ctx.SymbolStack = ctx.SymbolStack[:len(ctx.SymbolStack)-1] }()

	body := n.Children[0]
	bodyEntry := len(ctx.Bytecode)
	ctx.PushLocalFrame()
	for _, arg := range n.Args {
		ctx.DeclareLocal(arg, n.Line, n.Col)
	}

	wasGeneratingFunction := ctx.GeneratingFunction
	ctx.GeneratingFunction = true
	generateSceneBlock(ctx, body)
	ctx.GeneratingFunction = wasGeneratingFunction

	ctx.PopLocalFrame()
	ctx.Emit(Exit)

	indices := append([]int{bodyEntry}, generateFlagExpressions(ctx, n.Flags)...)
	ctx.FunctionTable[symbol] = indices
}

func generateDefinitions(ctx *CompileContext, n *ast.Node) {
	ctx.SymbolStack = append(ctx.SymbolStack, n.Content)
	defer func() { ctx.SymbolStack = ctx.SymbolStack[:len(ctx.SymbolStack)-1] }()

	for _, def := range n.Children {
		if def.Kind == ast.MarkedComment {
			ctx.RegisterCommentTranslation(ctx.Symbol(""), def.Content)
			continue
		}
		generateDefinition(ctx, def)
	}
}

func generateDefinition(ctx *CompileContext, n *ast.Node) {
	symbol := ctx.Symbol(n.Content)
	if _, exists := ctx.DefinitionTable[symbol]; exists {
		ctx.Errs.Add(DefinitionAlreadyExists, n.Line, n.Col, symbol)
		return
	}

	text := n.Token.Content
	if n.ExcludeTranslation {
		ctx.DefinitionTable[symbol] = DefinitionEntry{
			Value:     ctx.Intern(text),
			IsString:  true,
			BodyEntry: -1,
		}
		return
	}

	idx := ctx.RegisterTranslation(symbol, text)
	stampStringID(ctx, n.Token)
	ctx.DefinitionTable[symbol] = DefinitionEntry{
		Value:     int32(idx),
		IsString:  true,
		BodyEntry: -1,
	}
}
