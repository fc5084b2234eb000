package ast_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "scene", ast.Scene.String())
	require.Equal(t, "definition", ast.Definition.String())
	require.Contains(t, ast.Kind(200).String(), "unknown node kind")
}

func TestAppend(t *testing.T) {
	n := ast.New(ast.Block, 1, 1)
	child := ast.New(ast.TextRun, 1, 1)
	child.Content = "hi"

	n.Append(child)
	require.Len(t, n.Children, 1)
	require.Same(t, child, n.Children[0])
}

func TestDump(t *testing.T) {
	scene := ast.New(ast.Scene, 1, 1)
	scene.Content = "main"
	scene.Flags = []*ast.Flag{{
		Name:     "seen",
		Required: ast.New(ast.ExprConstant, 1, 1),
	}}

	block := ast.New(ast.SceneBlock, 2, 1)
	text := ast.New(ast.TextRun, 2, 1)
	text.Content = "Hello"
	text.Token = &token.Token{Kind: token.String, Content: "Hello"}
	block.Append(text)
	scene.Append(block)

	var b strings.Builder
	ast.Dump(&b, scene)
	out := b.String()

	require.Contains(t, out, `scene "main" flag(seen)`)
	require.Contains(t, out, `text run "Hello"`)
	require.Contains(t, out, "require:")
}
