package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/parser"
	"github.com/diannex-lang/diannex/lang/scanner"
)

// stubQueue satisfies scanner.FileQueue without tracking anything; these
// tests never exercise #include/#ifdef.
type stubQueue struct{}

func (stubQueue) EnqueueInclude(string) {}
func (stubQueue) HasMacro(string) bool  { return false }

func parse(t *testing.T, src string) (*ast.Node, error) {
	t.Helper()
	toks, lexErr := scanner.Lex(src, stubQueue{}, ".", 1, 1)
	require.NoError(t, lexErr)
	return parser.Parse(toks)
}

func TestParseScene(t *testing.T) {
	root, err := parse(t, `
scene main {
	"Hello, world!"
	$x = 1
	if ($x == 1) {
		"One"
	} else {
		"Not one"
	}
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, `scene "main"`)
	require.Contains(t, dump, `text run "Hello, world!"`)
	require.Contains(t, dump, "assign")
	require.Contains(t, dump, "if")
}

func TestParseSceneWithFlags(t *testing.T) {
	root, err := parse(t, `
scene intro {
	flag seen require $visited == 0 default 0
	"Welcome"
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, "flag(seen)")
	require.Contains(t, dump, "require:")
	require.Contains(t, dump, "default:")
}

func TestParseDuplicateFlagName(t *testing.T) {
	_, err := parse(t, `
scene intro {
	flag seen require 1
	flag seen require 2
	"Welcome"
}
`)
	require.Error(t, err)
	var el parser.ErrorList
	require.ErrorAs(t, err, &el)
	found := false
	for _, e := range el {
		if e.Kind == parser.DuplicateFlagName {
			found = true
		}
	}
	require.True(t, found, "expected a DuplicateFlagName error, got: %v", err)
}

func TestParseFunction(t *testing.T) {
	root, err := parse(t, `
func add(a, b) {
	return $a + $b
}
`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	fn := root.Children[0]
	require.Equal(t, ast.Function, fn.Kind)
	require.Equal(t, []string{"a", "b"}, fn.Args)
}

func TestParseLoopsAndSwitch(t *testing.T) {
	root, err := parse(t, `
scene main {
	while ($x < 10) {
		$x++
	}
	for ($i = 0; $i < 3; $i++) {
		"tick"
	}
	switch ($x) {
		case 1:
			"one"
			break
		default:
			"other"
	}
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, "while")
	require.Contains(t, dump, "for")
	require.Contains(t, dump, "switch")
	require.Contains(t, dump, "case")
	require.Contains(t, dump, "default")
}

func TestParseSwitchSimpleRange(t *testing.T) {
	root, err := parse(t, `
scene main {
	switch ($x) {
		1..3: "low"
		default: "other"
	}
}
`)
	require.NoError(t, err)
	require.Contains(t, root.String(), "range expression")
}

func TestParseSequence(t *testing.T) {
	root, err := parse(t, `
scene main {
	sequence $step {
		1, 2: "starting"
		3..5: "middle"
	}
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, "sequence")
	require.Contains(t, dump, "range expression")
}

func TestParseChoiceAndChoose(t *testing.T) {
	root, err := parse(t, `
scene main {
	choice {
		"Pick one:"
		choice "Go left" chance 1: "left"
		choice "Go right" chance 1 require $canGoRight: "right"
	}
	choose {
		chance 1: "a"
		chance 2 require $flag: "b"
	}
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, "choice")
	require.Contains(t, dump, "choice text")
	require.Contains(t, dump, "choose")
}

func TestParseChoiceOptionWithoutStatement(t *testing.T) {
	_, err := parse(t, `
scene main {
	choice {
		"Pick one:"
		choice "Go left" chance 1:
	}
}
`)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "choice option without a statement"))
}

func TestParseShorthandCharacterAndCall(t *testing.T) {
	root, err := parse(t, `
scene main {
	narrator: "It was a dark night."
	doSomething(1, 2)
}
`)
	require.NoError(t, err)
	dump := root.String()
	require.Contains(t, dump, "shorthand character")
	require.Contains(t, dump, "scene function call")
}

func TestParseRecoversFromError(t *testing.T) {
	root, err := parse(t, `
scene main {
	$x = )
	"still parsed"
}
`)
	require.Error(t, err)
	require.Contains(t, root.String(), `text run "still parsed"`)
}
