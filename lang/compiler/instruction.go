package compiler

// Instruction is one emitted bytecode instruction, in its pre-serialization
// in-memory form. Which of Arg1/Arg2/Float/Candidates is meaningful is
// determined entirely by Op, the same tagged-variant shape lang/ast.Node
// uses for syntax tree nodes.
type Instruction struct {
	Op Opcode

	// ByteOffset is this instruction's address in the final bytecode stream,
	// assigned once on emission and never revised.
	ByteOffset int

	// Arg1 is the sole int32 argument for single-int opcodes (pushi, pushs,
	// pushbs, makearr, pushvarglb, setvarglb, pushvarloc, setvarloc, freeloc),
	// the relative jump offset for j/jt/jf/choiceadd/choiceaddt/chooseadd/
	// chooseaddt, and the interned string id for pushints/pushbints.
	Arg1 int32

	// Arg2 is the second int32 argument of pushints/pushbints (the repeat
	// count).
	Arg2 int32

	// Float is pushd's operand.
	Float float64

	// ArgCount and Candidates are patch_call's operands: the number of
	// arguments already pushed, and the fully-qualified candidate names to
	// try at load time, most-specific first.
	ArgCount   int32
	Candidates []string
}

// Size returns the instruction's on-wire size in bytes: the opcode byte plus
// its argument encoding.
func (in Instruction) Size() int {
	switch in.Op {
	case Pushd:
		return 9
	case Pushints, Pushbints:
		return 9
	case PatchCall:
		n := 1 + 4 + 4
		for _, c := range in.Candidates {
			n += len(c) + 1 // NUL-terminated, matching writeCString
		}
		return n
	case Nop, Pop, Dup, Dup2, Save, Load,
		Add, Sub, Mul, Div, Mod, Pow, Neg,
		Bitand, Bitor, Bitxor, Bitls, Bitrs, Bitneg, Inv,
		Cmpeq, Cmpneq, Cmplt, Cmplte, Cmpgt, Cmpgte,
		Pusharrind, Setarrind,
		Exit, Ret, Textrun, Choicebeg, Choicesel, Choosesel, Pushu:
		return 1
	default:
		// pushi, pushs, pushbs, makearr, pushvarglb, setvarglb, pushvarloc,
		// setvarloc, freeloc, j, jt, jf, choiceadd, choiceaddt, chooseadd,
		// chooseaddt: opcode + one int32.
		return 5
	}
}
