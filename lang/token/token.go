// Package token defines the lexical tokens of the diannex dialogue
// scripting language, the reserved-word tables consulted by the lexer, and
// the compact Pos source-position encoding shared by the lexer, parser and
// bytecode generator.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind uint8

//nolint:revive
const (
	Illegal Kind = iota
	EOF
	Newline

	Ident
	Number
	Percentage
	String
	MarkedString  // @"..."
	ExcludeString // !"..."
	Undefined     // the identifier "undefined"

	GroupKeyword  // namespace, scene, def, func
	MainKeyword   // choice, choose, if, else, while, for, do, repeat, switch, continue, break, return, case, default, sequence, flag
	MainSubKeyword // require, chance
	ModifierKeyword // local, global

	PreprocessorDirective // the text following '#', e.g. include, ifdef, ifndef, endif
	MarkedComment  // //! or /*! ... */

	OpenParen
	CloseParen
	OpenCurly
	CloseCurly
	OpenBrack
	CloseBrack
	Semicolon
	Colon
	Comma
	Ternary // ?
	Range   // ..

	VariableStart // $

	Equals
	Plus
	Increment
	PlusEquals
	Minus
	Decrement
	MinusEquals
	Multiply
	Power
	MultiplyEquals
	Divide
	DivideEquals
	Mod
	ModEquals
	Not

	CompareEQ
	CompareGT
	CompareLT
	CompareGTE
	CompareLTE
	CompareNEQ

	LogicalAnd
	LogicalOr

	BitwiseLShift
	BitwiseRShift
	BitwiseAnd
	BitwiseAndEquals
	BitwiseOr
	BitwiseOrEquals
	BitwiseXor
	BitwiseXorEquals
	BitwiseNegate

	Error
	ErrorString
	ErrorUnenclosedString

	maxKind
)

var kindNames = [...]string{
	Illegal:               "illegal",
	EOF:                   "end of file",
	Newline:               "newline",
	Ident:                 "identifier",
	Number:                "number",
	Percentage:            "percentage",
	String:                "string",
	MarkedString:          "marked string",
	ExcludeString:         "excluded string",
	Undefined:             "undefined",
	GroupKeyword:          "group keyword",
	MainKeyword:           "keyword",
	MainSubKeyword:        "keyword",
	ModifierKeyword:       "modifier",
	PreprocessorDirective: "directive",
	MarkedComment:         "marked comment",
	OpenParen:             "(",
	CloseParen:            ")",
	OpenCurly:             "{",
	CloseCurly:            "}",
	OpenBrack:             "[",
	CloseBrack:            "]",
	Semicolon:             ";",
	Colon:                 ":",
	Comma:                 ",",
	Ternary:               "?",
	Range:                 "..",
	VariableStart:         "$",
	Equals:                "=",
	Plus:                  "+",
	Increment:             "++",
	PlusEquals:            "+=",
	Minus:                 "-",
	Decrement:             "--",
	MinusEquals:           "-=",
	Multiply:              "*",
	Power:                 "**",
	MultiplyEquals:        "*=",
	Divide:                "/",
	DivideEquals:          "/=",
	Mod:                   "%",
	ModEquals:             "%=",
	Not:                   "!",
	CompareEQ:             "==",
	CompareGT:             ">",
	CompareLT:             "<",
	CompareGTE:            ">=",
	CompareLTE:            "<=",
	CompareNEQ:            "!=",
	LogicalAnd:            "&&",
	LogicalOr:             "||",
	BitwiseLShift:         "<<",
	BitwiseRShift:         ">>",
	BitwiseAnd:            "&",
	BitwiseAndEquals:      "&=",
	BitwiseOr:             "|",
	BitwiseOrEquals:       "|=",
	BitwiseXor:            "^",
	BitwiseXorEquals:      "^=",
	BitwiseNegate:         "~",
	Error:                 "error",
	ErrorString:           "error string",
	ErrorUnenclosedString: "unenclosed string",
}

func (k Kind) String() string {
	if k < maxKind {
		if s := kindNames[k]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("unknown token kind (%d)", k)
}

// Keyword identifies a reserved word, independent of which Kind bucket
// (GroupKeyword, MainKeyword, MainSubKeyword, ModifierKeyword) it was
// tokenized under.
type Keyword uint8

//nolint:revive
const (
	KwNone Keyword = iota

	// Group scope
	KwNamespace
	KwScene
	KwDef
	KwFunc

	// Main (scene/function) scope
	KwChoice
	KwChoose
	KwIf
	KwElse
	KwWhile
	KwFor
	KwDo
	KwRepeat
	KwSwitch
	KwContinue
	KwBreak
	KwReturn
	KwCase
	KwDefault
	KwSequence
	KwFlag

	// choice/choose sub-scope
	KwRequire
	KwChance

	// modifiers, valid in either scope
	KwLocal
	KwGlobal
)

var keywordNames = map[string]struct {
	Kind Kind
	Kw   Keyword
}{
	"namespace": {GroupKeyword, KwNamespace},
	"scene":     {GroupKeyword, KwScene},
	"def":       {GroupKeyword, KwDef},
	"func":      {GroupKeyword, KwFunc},

	"choice":   {MainKeyword, KwChoice},
	"choose":   {MainKeyword, KwChoose},
	"if":       {MainKeyword, KwIf},
	"else":     {MainKeyword, KwElse},
	"while":    {MainKeyword, KwWhile},
	"for":      {MainKeyword, KwFor},
	"do":       {MainKeyword, KwDo},
	"repeat":   {MainKeyword, KwRepeat},
	"switch":   {MainKeyword, KwSwitch},
	"continue": {MainKeyword, KwContinue},
	"break":    {MainKeyword, KwBreak},
	"return":   {MainKeyword, KwReturn},
	"case":     {MainKeyword, KwCase},
	"default":  {MainKeyword, KwDefault},
	"sequence": {MainKeyword, KwSequence},
	"flag":     {MainKeyword, KwFlag},

	"require": {MainSubKeyword, KwRequire},
	"chance":  {MainSubKeyword, KwChance},

	"local":  {ModifierKeyword, KwLocal},
	"global": {ModifierKeyword, KwGlobal},
}

// LookupIdent returns the Kind and Keyword for an identifier lexeme: either
// one of the reserved-word entries above, Undefined for the literal text
// "undefined", or (Ident, KwNone) for a plain identifier.
func LookupIdent(lit string) (Kind, Keyword) {
	if lit == "undefined" {
		return Undefined, KwNone
	}
	if kw, ok := keywordNames[lit]; ok {
		return kw.Kind, kw.Kw
	}
	return Ident, KwNone
}

// Directive identifies a recognized preprocessor directive keyword.
type Directive uint8

const (
	DirNone Directive = iota
	DirInclude
	DirIfDef
	DirIfNDef
	DirEndIf
)

var directiveNames = map[string]Directive{
	"include": DirInclude,
	"ifdef":   DirIfDef,
	"ifndef":  DirIfNDef,
	"endif":   DirEndIf,
}

// LookupDirective returns the Directive for a directive name (the text
// following '#', e.g. "include"), or DirNone if unrecognized.
func LookupDirective(name string) Directive {
	return directiveNames[name]
}

// StringData is attached to String/MarkedString tokens. It is mutated late
// in compilation (after parsing) to record the stable localization id
// assigned to the literal, and the byte offset in the original source
// immediately following the closing quote, which the driver uses to splice
// the id back into the source text when addStringIds is enabled.
//
// Each string-literal token owns its own StringData (it is never shared
// across tokens); the compiler communicates assigned ids back through this
// record rather than through any shared mutable global.
type StringData struct {
	AssignedID      int // -1 if not yet assigned
	EndOfStringByte int
}

// NewStringData returns a StringData with no id assigned yet.
func NewStringData(endOfStringByte int) *StringData {
	return &StringData{AssignedID: -1, EndOfStringByte: endOfStringByte}
}

// Token is a single lexical token: its kind, source position, and payload.
type Token struct {
	Kind    Kind
	Line    int
	Column  int
	Keyword Keyword     // valid when Kind is one of the *Keyword kinds
	Content string      // identifier/number/string literal text (unescaped for strings)
	Raw     string      // the literal source text, used for round-tripping
	Data    *StringData // set for String/MarkedString tokens
}

// Pos returns the packed source position of the token.
func (t Token) Pos() Pos { return MakePos(t.Line, t.Column) }

func (t Token) String() string {
	switch t.Kind {
	case Ident, Number, Percentage, String, MarkedString, ExcludeString:
		return fmt.Sprintf("%s %q", t.Kind, t.Content)
	case GroupKeyword, MainKeyword, MainSubKeyword, ModifierKeyword:
		return fmt.Sprintf("keyword %q", t.Raw)
	default:
		return t.Kind.String()
	}
}
