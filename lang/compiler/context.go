package compiler

import (
	"strings"

	"github.com/dolthub/swiss"

	"github.com/diannex-lang/diannex/lang/ast"
	"github.com/diannex-lang/diannex/lang/token"
)

// Options is the narrow slice of project configuration the generator
// consults: whether to stamp localization ids into source, and the
// preprocessor macro set. Accepting this interface rather than a concrete
// project-options type keeps lang/compiler free of any dependency on the
// internal project-file format.
type Options interface {
	AddStringIDs() bool
	HasMacro(name string) bool
}

type defaultOptions struct{}

func (defaultOptions) AddStringIDs() bool    { return false }
func (defaultOptions) HasMacro(string) bool { return false }

// DefinitionEntry is one def-block entry's compiled form: either an
// immediate int or an interned string id (IsString true), plus the entry
// instruction index of its value expression body (-1 if the value was a
// plain literal with no expression to run).
type DefinitionEntry struct {
	Value     int32
	IsString  bool
	BodyEntry int
}

// TranslationRecord is one entry in the translation stream: a localizable
// string (or a marked-comment hint, IsComment true) keyed by the
// fully-qualified symbol it was found under.
type TranslationRecord struct {
	Key       string
	IsComment bool
	Text      string
	ID        int
}

// StringIDPos records where in a source file a string literal's assigned
// localization id should be spliced back in.
type StringIDPos struct {
	ByteOffset int
	ID         int
}

// pendingJump is a not-yet-patched jump instruction awaiting a continue or
// break target, together with the source position that wrote it (so a
// continue/break that turns out to have nowhere valid to go - a continue
// inside a switch with no enclosing loop - can still be reported precisely).
type pendingJump struct {
	index int
	line  int
	col   int
}

// loopContext is pushed on entry to while/for/do/repeat/switch/switchSimple/
// sequence and popped on exit; continue/break patch into it. switch and
// switchSimple push one too even though they are not themselves iterating -
// diannex has no "restart the switch" notion for continue - so a continue
// written directly inside one is provisionally registered here and then, once
// the construct's body is fully generated, rewritten into a small stub that
// drops the construct's own returnCleanup and re-registers on whatever loop
// encloses it (see finishNonIteratingLoop).
type loopContext struct {
	// returnCleanup holds the opcodes (no operands) that must run before
	// control leaves this construct out of band - a continue being
	// redirected past it, or a return unwinding through it - to drop
	// whatever it keeps live on the stack across iterations (repeat's
	// counter, switch/sequence's selector).
	returnCleanup []Opcode
	// localCountStackIndex is len(LocalCountStack)-1 at the point this loop
	// was pushed, the frame a continue/break must unwind local declarations
	// back down to.
	localCountStackIndex int
	continuePatch         []pendingJump
	breakPatch            []pendingJump
}

// CompileContext is the mutable state threaded through one compilation run,
// shared across every file's bytecode generation pass. It is the direct
// analog of the reference compiler's single global compile context: one
// instance, one instruction stream, one symbol table, for the whole run.
type CompileContext struct {
	Options Options

	// file queue
	Queue       []string
	Files       map[string]bool
	CurrentFile string

	// per-file outputs carried forward from lex/parse
	TokenLists map[string][]token.Token
	ParseLists map[string]*ast.Node

	// registries
	SceneTable      map[string][]int
	FunctionTable   map[string][]int
	DefinitionTable map[string]DefinitionEntry

	// interning. internIndex is a swiss.Map rather than a builtin map: the
	// intern table is the hottest lookup in the whole generator (every
	// constant, every variable name, every call candidate goes through it),
	// and it is purely string-keyed with no need for builtin-map's
	// iteration-order randomization.
	internalStrings []string
	internIndex     *swiss.Map[string, int32]

	// instruction stream
	Bytecode []Instruction
	Offset   int

	// scoping
	SymbolStack     []string
	LocalStack      []string
	LocalCountStack []int
	loopStack       []*loopContext

	// translation
	TranslationRecords []TranslationRecord
	TranslationIndex   int
	StringIDPositions  map[string][]StringIDPos
	MaxStringID        int

	GeneratingFunction bool

	Errs ErrorList
}

// NewCompileContext returns an empty CompileContext ready to enqueue files
// into. A nil opts uses defaults (no string-id stamping, no macros defined).
func NewCompileContext(opts Options) *CompileContext {
	if opts == nil {
		opts = defaultOptions{}
	}
	return &CompileContext{
		Options:           opts,
		Files:             map[string]bool{},
		TokenLists:        map[string][]token.Token{},
		ParseLists:        map[string]*ast.Node{},
		SceneTable:        map[string][]int{},
		FunctionTable:     map[string][]int{},
		DefinitionTable:   map[string]DefinitionEntry{},
		internIndex:       swiss.NewMap[string, int32](64),
		StringIDPositions: map[string][]StringIDPos{},
	}
}

// EnqueueInclude appends path to the file queue if it hasn't been seen
// before, satisfying lang/scanner.FileQueue.
func (c *CompileContext) EnqueueInclude(path string) {
	if c.Files[path] {
		return
	}
	c.Files[path] = true
	c.Queue = append(c.Queue, path)
}

// HasMacro satisfies lang/scanner.FileQueue.
func (c *CompileContext) HasMacro(name string) bool { return c.Options.HasMacro(name) }

// InternalStrings returns the deduplicated string pool in assignment order.
func (c *CompileContext) InternalStrings() []string { return c.internalStrings }

// Intern returns s's index in the internal string table, appending it if
// this is the first occurrence.
func (c *CompileContext) Intern(s string) int32 {
	if idx, ok := c.internIndex.Get(s); ok {
		return idx
	}
	idx := int32(len(c.internalStrings))
	c.internalStrings = append(c.internalStrings, s)
	c.internIndex.Put(s, idx)
	return idx
}

// Symbol joins the current namespace/scene stack with name into a
// fully-qualified symbol.
func (c *CompileContext) Symbol(name string) string {
	if len(c.SymbolStack) == 0 {
		return name
	}
	return strings.Join(c.SymbolStack, ".") + "." + name
}

// CandidateSymbols returns the fully-qualified candidate names for a call to
// name, most-specific (deepest enclosing scope) first, for a patch_call
// instruction.
func (c *CompileContext) CandidateSymbols(name string) []string {
	candidates := make([]string, 0, len(c.SymbolStack)+1)
	for i := len(c.SymbolStack); i >= 0; i-- {
		if i == 0 {
			candidates = append(candidates, name)
			continue
		}
		candidates = append(candidates, strings.Join(c.SymbolStack[:i], ".")+"."+name)
	}
	return candidates
}

// emit appends in to the bytecode stream, stamping its ByteOffset and
// advancing Offset, and returns its index.
func (c *CompileContext) emit(in Instruction) int {
	in.ByteOffset = c.Offset
	c.Offset += in.Size()
	c.Bytecode = append(c.Bytecode, in)
	return len(c.Bytecode) - 1
}

// Emit emits a bare or fixed-argument opcode not requiring later patching.
func (c *CompileContext) Emit(op Opcode) int { return c.emit(Instruction{Op: op}) }

// EmitInt emits a single-int32-argument opcode.
func (c *CompileContext) EmitInt(op Opcode, arg int32) int {
	return c.emit(Instruction{Op: op, Arg1: arg})
}

// EmitTwoInts emits pushints/pushbints.
func (c *CompileContext) EmitTwoInts(op Opcode, a, b int32) int {
	return c.emit(Instruction{Op: op, Arg1: a, Arg2: b})
}

// EmitFloat emits pushd.
func (c *CompileContext) EmitFloat(v float64) int {
	return c.emit(Instruction{Op: Pushd, Float: v})
}

// EmitPatchCall emits a patch_call instruction for a call to name.
func (c *CompileContext) EmitPatchCall(name string, argCount int32) int {
	return c.emit(Instruction{Op: PatchCall, ArgCount: argCount, Candidates: c.CandidateSymbols(name)})
}

// EmitPlaceholderJump emits a jump-family opcode with a zero argument,
// returning its index so a later Patch call can fill in the real offset.
func (c *CompileContext) EmitPlaceholderJump(op Opcode) int {
	return c.emit(Instruction{Op: op})
}

// Patch fills the jump argument at index with the offset to the current end
// of the stream.
func (c *CompileContext) Patch(index int) {
	c.PatchTo(index, len(c.Bytecode))
}

// PatchTo fills the jump argument at index with the offset to targetIndex's
// instruction (or the current stream end, if targetIndex == len(Bytecode)).
// targetIndex is an instruction index captured earlier with len(ctx.Bytecode)
// - this is how every backward jump (a loop re-test, a continue target) is
// expressed, rather than the reference compiler's raw byte-offset arithmetic.
func (c *CompileContext) PatchTo(index, targetIndex int) {
	in := &c.Bytecode[index]
	if !in.Op.hasJumpArg() {
		panic("compiler: Patch called on a non-jump instruction")
	}
	var targetOffset int
	if targetIndex >= len(c.Bytecode) {
		targetOffset = c.Offset
	} else {
		targetOffset = c.Bytecode[targetIndex].ByteOffset
	}
	in.Arg1 = int32(targetOffset - (in.ByteOffset + 5))
}

// PushLocalFrame starts a new local-variable scope.
func (c *CompileContext) PushLocalFrame() {
	c.LocalCountStack = append(c.LocalCountStack, 0)
}

// DeclareLocal adds name as a new local in the current frame and returns its
// slot index. A name already live in an enclosing or the same frame still
// gets a new (shadowing) slot - generation keeps going so the rest of the
// body's bytecode stays well-formed - but LocalVariableAlreadyExists is
// recorded.
func (c *CompileContext) DeclareLocal(name string, line, col int) int {
	if c.LookupLocal(name) >= 0 {
		c.Errs.Add(LocalVariableAlreadyExists, line, col, name)
	}
	c.LocalCountStack[len(c.LocalCountStack)-1]++
	slot := len(c.LocalStack)
	c.LocalStack = append(c.LocalStack, name)
	return slot
}

// LookupLocal returns name's slot index, searching innermost-scope first, or
// -1 if name is not a live local.
func (c *CompileContext) LookupLocal(name string) int {
	for i := len(c.LocalStack) - 1; i >= 0; i-- {
		if c.LocalStack[i] == name {
			return i
		}
	}
	return -1
}

// PopLocalFrame emits freeloc for every local declared since the matching
// PushLocalFrame and releases them.
func (c *CompileContext) PopLocalFrame() {
	n := c.LocalCountStack[len(c.LocalCountStack)-1]
	c.LocalCountStack = c.LocalCountStack[:len(c.LocalCountStack)-1]
	for i := 0; i < n; i++ {
		slot := len(c.LocalStack) - 1
		c.EmitInt(Freeloc, int32(slot))
		c.LocalStack = c.LocalStack[:slot]
	}
}

// PushLoop starts a new loop context. returnCleanup lists the opcodes that
// must run whenever control leaves the construct other than by falling off
// its natural end - break, a continue redirected past it, or a return.
func (c *CompileContext) PushLoop(returnCleanup ...Opcode) *loopContext {
	lc := &loopContext{returnCleanup: returnCleanup, localCountStackIndex: len(c.LocalCountStack) - 1}
	c.loopStack = append(c.loopStack, lc)
	return lc
}

// PopLoop patches the innermost loop context's pending jumps and removes it.
// continueTarget is the instruction index a continue should land on; -1 means
// the construct has no continue target of its own (switch/switchSimple with
// no enclosing loop to redirect to), in which case any still-pending
// continues are reported as errors rather than patched to something bogus.
// break always lands on the current end of the stream.
func (c *CompileContext) PopLoop(continueTarget int) {
	loop := c.CurrentLoop()
	c.patchContinues(loop, continueTarget)
	for _, pj := range loop.breakPatch {
		c.Patch(pj.index)
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

// patchContinues resolves loop's continuePatch list without touching
// breakPatch or popping the stack. It is also used standalone by
// finishNonIteratingLoop, which then patches the breaks and pops the loop
// context itself instead of calling PopLoop.
func (c *CompileContext) patchContinues(loop *loopContext, continueTarget int) {
	if continueTarget == -1 {
		for _, pj := range loop.continuePatch {
			c.Errs.Add(ContinueOutsideOfLoop, pj.line, pj.col, "")
			c.Patch(pj.index)
		}
		return
	}
	for _, pj := range loop.continuePatch {
		c.PatchTo(pj.index, continueTarget)
	}
}

// popLocalsForJump emits freeloc for every local declared since loop's own
// frame was pushed, without removing them from LocalStack/LocalCountStack -
// a continue or break jumps out of those declarations' lexical scope, but
// code after the statement (on a path that doesn't jump) still sees them.
func (c *CompileContext) popLocalsForJump(loop *loopContext) {
	slot := len(c.LocalStack) - 1
	for frame := len(c.LocalCountStack) - 1; frame >= loop.localCountStackIndex; frame-- {
		for i := 0; i < c.LocalCountStack[frame]; i++ {
			c.EmitInt(Freeloc, int32(slot))
			slot--
		}
	}
}

// CurrentLoop returns the innermost loop context, or nil outside any loop.
func (c *CompileContext) CurrentLoop() *loopContext {
	if len(c.loopStack) == 0 {
		return nil
	}
	return c.loopStack[len(c.loopStack)-1]
}

// RegisterTranslation records a localizable string under key and returns the
// index it was assigned (== TranslationIndex before the increment),
// matching the ordinal the pushs/pushints instruction must carry.
func (c *CompileContext) RegisterTranslation(key, text string) int {
	idx := c.TranslationIndex
	c.TranslationRecords = append(c.TranslationRecords, TranslationRecord{Key: key, Text: text, ID: idx})
	c.TranslationIndex++
	return idx
}

// RegisterCommentTranslation records a marked-comment translator hint; these
// do not consume a translation-index ordinal.
func (c *CompileContext) RegisterCommentTranslation(key, text string) {
	c.TranslationRecords = append(c.TranslationRecords, TranslationRecord{Key: key, IsComment: true, Text: text})
}

// NextStringID returns a fresh localization id, incrementing MaxStringID.
func (c *CompileContext) NextStringID() int {
	c.MaxStringID++
	return c.MaxStringID
}

// RecordStringIDPosition records where id should be spliced back into the
// current file's source text.
func (c *CompileContext) RecordStringIDPosition(offset, id int) {
	c.StringIDPositions[c.CurrentFile] = append(c.StringIDPositions[c.CurrentFile], StringIDPos{ByteOffset: offset, ID: id})
}
