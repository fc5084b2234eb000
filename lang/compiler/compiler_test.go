package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/lang/compiler"
	"github.com/diannex-lang/diannex/lang/parser"
	"github.com/diannex-lang/diannex/lang/scanner"
)

type stubQueue struct{}

func (stubQueue) EnqueueInclude(string) {}
func (stubQueue) HasMacro(string) bool  { return false }

func compileSource(t *testing.T, src string) *compiler.CompileContext {
	t.Helper()
	toks, err := scanner.Lex(src, stubQueue{}, ".", 1, 1)
	require.NoError(t, err)
	root, err := parser.Parse(toks)
	require.NoError(t, err)

	ctx := compiler.NewCompileContext(nil)
	compiler.Generate(ctx, root)
	require.NoError(t, ctx.Errs.Err())
	return ctx
}

func TestGenerateSceneTextRun(t *testing.T) {
	ctx := compileSource(t, `
scene main {
	"Hello, world!"
}
`)
	entries, ok := ctx.SceneTable["main"]
	require.True(t, ok)
	require.NotEmpty(t, entries)

	var sawTextrun bool
	for _, in := range ctx.Bytecode {
		if in.Op == compiler.Textrun {
			sawTextrun = true
		}
	}
	require.True(t, sawTextrun, "expected a textrun instruction for the scene's string literal")
}

func TestGenerateIfElseBranches(t *testing.T) {
	ctx := compileSource(t, `
scene main {
	$x = 1
	if ($x == 1) {
		"One"
	} else {
		"Not one"
	}
}
`)
	var sawJf, sawJ, sawCmpeq bool
	for _, in := range ctx.Bytecode {
		switch in.Op {
		case compiler.Jf:
			sawJf = true
		case compiler.J:
			sawJ = true
		case compiler.Cmpeq:
			sawCmpeq = true
		}
	}
	require.True(t, sawCmpeq, "condition should compile to a cmpeq")
	require.True(t, sawJf, "if should emit a conditional jump")
	require.True(t, sawJ, "else arm should emit an unconditional jump past the then arm")
}

func TestGenerateWhileLoopBreakContinue(t *testing.T) {
	ctx := compileSource(t, `
scene main {
	$i = 0
	while ($i < 3) {
		if ($i == 1) {
			continue
		}
		if ($i == 2) {
			break
		}
		$i += 1
	}
}
`)
	require.NoError(t, ctx.Errs.Err())
	require.NotEmpty(t, ctx.Bytecode)
}

func TestGenerateSwitchSimpleAndArbitrary(t *testing.T) {
	ctx := compileSource(t, `
scene main {
	$x = 1
	switch ($x) {
		1: "one"
		default: "other"
	}
	switch ($x) {
		case 1:
			"one"
		default:
			"other"
	}
}
`)
	require.NoError(t, ctx.Errs.Err())
}

func TestGenerateFunctionCallAndDefinitions(t *testing.T) {
	ctx := compileSource(t, `
def greetings {
	hello = "Hello!"
}

func greet(name) {
	"Greeting called"
}

scene main {
	greet("World")
}
`)
	require.NoError(t, ctx.Errs.Err())
	_, ok := ctx.FunctionTable["greet"]
	require.True(t, ok)
	_, ok = ctx.DefinitionTable["greetings.hello"]
	require.True(t, ok)

	var sawCall bool
	for _, in := range ctx.Bytecode {
		if in.Op == compiler.PatchCall {
			sawCall = true
		}
	}
	require.True(t, sawCall)
}

func TestGenerateChoiceAndChoose(t *testing.T) {
	ctx := compileSource(t, `
scene main {
	choice {
		"Pick one"
		choice chance 1: "First"
		choice chance 1 require $flag: "Second"
	}
	choose {
		chance 1: "Maybe this"
		chance 2: "Or that"
	}
}
`)
	require.NoError(t, ctx.Errs.Err())

	var sawChoicebeg, sawChoosesel bool
	for _, in := range ctx.Bytecode {
		switch in.Op {
		case compiler.Choicebeg:
			sawChoicebeg = true
		case compiler.Choosesel:
			sawChoosesel = true
		}
	}
	require.True(t, sawChoicebeg)
	require.True(t, sawChoosesel)
}

func TestDuplicateSceneIsAnError(t *testing.T) {
	toks, err := scanner.Lex(`
scene main { "a" }
scene main { "b" }
`, stubQueue{}, ".", 1, 1)
	require.NoError(t, err)
	root, err := parser.Parse(toks)
	require.NoError(t, err)

	ctx := compiler.NewCompileContext(nil)
	compiler.Generate(ctx, root)
	err = ctx.Errs.Err()
	require.Error(t, err)
}
