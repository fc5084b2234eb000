// Package ast defines the diannex syntax tree produced by lang/parser and
// consumed by lang/compiler.
//
// Unlike a typical Go AST (one Go type per node kind), Node is a single
// tagged-variant struct: a Kind enum selects which of Content, Token,
// Modifier, Flags and Children are meaningful, and Children holds the node's
// subnodes in a fixed, kind-specific order. This mirrors how the reference
// implementation's own Node type carries one generic `nodes` vector indexed
// positionally per kind, rather than a class hierarchy; dispatch throughout
// lang/parser and lang/compiler is a single switch on Kind.
package ast

import (
	"fmt"

	"github.com/diannex-lang/diannex/lang/token"
)

// Kind tags the variant a Node represents.
type Kind uint8

//nolint:revive
const (
	Illegal Kind = iota

	// File scope.
	Block
	Namespace
	Scene
	Function
	Definitions
	MarkedComment

	// Scene/function scope.
	SceneBlock
	TextRun
	Variable
	Increment
	Decrement
	Assign
	SceneFunction
	ShorthandChar
	If
	While
	For
	Do
	Repeat
	Switch
	SwitchSimple
	SwitchCase
	SwitchDefault
	Continue
	Break
	Return
	Choice
	ChoiceText
	Choose
	Sequence
	None

	// Expressions.
	ExprConstant
	ExprBinary
	ExprTernary
	ExprNot
	ExprNegate
	ExprBitwiseNegate
	ExprArray
	ExprAccessArray
	ExprRange
	ExprPreIncrement
	ExprPostIncrement
	ExprPreDecrement
	ExprPostDecrement

	// Definitions scope.
	Definition

	maxKind
)

var kindNames = [...]string{
	Illegal:           "illegal",
	Block:             "block",
	Namespace:         "namespace",
	Scene:             "scene",
	Function:          "function",
	Definitions:       "definitions",
	MarkedComment:     "marked comment",
	SceneBlock:        "scene block",
	TextRun:           "text run",
	Variable:          "variable",
	Increment:         "increment",
	Decrement:         "decrement",
	Assign:            "assign",
	SceneFunction:     "scene function call",
	ShorthandChar:     "shorthand character",
	If:                "if",
	While:             "while",
	For:               "for",
	Do:                "do",
	Repeat:            "repeat",
	Switch:            "switch",
	SwitchSimple:      "simple switch",
	SwitchCase:        "case",
	SwitchDefault:     "default",
	Continue:          "continue",
	Break:             "break",
	Return:            "return",
	Choice:            "choice",
	ChoiceText:        "choice text",
	Choose:            "choose",
	Sequence:          "sequence",
	None:              "none",
	ExprConstant:      "constant",
	ExprBinary:        "binary expression",
	ExprTernary:       "ternary expression",
	ExprNot:           "not expression",
	ExprNegate:        "negate expression",
	ExprBitwiseNegate: "bitwise negate expression",
	ExprArray:         "array expression",
	ExprAccessArray:   "array access",
	ExprRange:         "range expression",
	ExprPreIncrement:  "pre-increment",
	ExprPostIncrement: "post-increment",
	ExprPreDecrement:  "pre-decrement",
	ExprPostDecrement: "post-decrement",
	Definition:        "definition",
}

func (k Kind) String() string {
	if k < maxKind {
		if s := kindNames[k]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("unknown node kind (%d)", k)
}

// Flag is a named precondition on a Scene or Function: `flag NAME require
// EXPR [default EXPR]`. Required is nil only if the parser already reported
// an error (every flag must carry a require expression); Default is nil when
// the flag has no default-value expression.
type Flag struct {
	Name     string
	Required *Node
	Default  *Node
}

// Node is a single diannex syntax tree node. Which fields are meaningful, and
// what Children holds and in what order, is determined entirely by Kind; see
// the per-kind construction helpers in lang/parser's expr.go and stmt.go for the exact
// shape each kind uses.
type Node struct {
	Kind Kind

	Line int
	Col  int

	// Content holds a name or literal text: scene/namespace/function/
	// definition/variable identifiers, TextRun and MarkedComment text, and
	// the key half of a Definition.
	Content string

	// Token retains the source token for kinds that need it for position or
	// re-lexing: operator tokens on expression nodes, the literal token
	// backing ExprConstant and TextRun (so lang/compiler can thread assigned
	// string ids back through token.StringData), and the value token of a
	// Definition.
	Token *token.Token

	// Modifier is KwLocal/KwGlobal on Assign, postfix Increment/Decrement,
	// Scene and Function nodes, and KwNone otherwise.
	Modifier token.Keyword

	// ExcludeTranslation marks a TextRun or Definition value that must not
	// be registered as a translatable string (source used a `!"..."` or
	// `= !"..."` form).
	ExcludeTranslation bool

	// Flags holds the flag set of a Scene or Function.
	Flags []*Flag

	// Args holds a Function's parameter names, in declaration order. The
	// bytecode generator declares them as the function's first local slots;
	// flags take no local slots.
	Args []string

	// Children holds the node's subnodes in kind-specific order.
	Children []*Node
}

// New returns a bare Node of the given kind at the given position. Callers
// fill in the remaining fields appropriate to Kind directly.
func New(kind Kind, line, col int) *Node {
	return &Node{Kind: kind, Line: line, Col: col}
}

// Append adds children to n and returns n, for compact construction call
// chains in the parser.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}
