package compiler

import "fmt"

// Opcode identifies a single bytecode instruction. The comment beside each
// constant is a stack picture: values consumed, then "OP", then values
// produced, matching the convention the reference virtual machine documents
// its instruction set with.
type Opcode uint8

//nolint:revive
const (
	Nop Opcode = iota

	// stack
	Pushi   //    - pushi<int>    i
	Pushd   //    - pushd<float>  d
	Pushs   //    - pushs<strid>  s
	Pushbs  //    - pushbs<strid> s        (string pushed without translation lookup)
	Pushu   //    - pushu         undefined
	Pushints  //    - pushints<strid,count>  s
	Pushbints //    - pushbints<strid,count> s
	Makearr //  xN makearr<n>    arr
	Dup     //   x dup           x x
	Dup2    // x y dup2          x y x y
	Pop     //   x pop           -
	Save    //   x save          x          (stashes x in a scratch slot)
	Load    //   - load          x          (restores the stashed value)

	// arithmetic
	Add // a b add -> a+b
	Sub // a b sub -> a-b
	Mul // a b mul -> a*b
	Div // a b div -> a/b
	Mod // a b mod -> a%b
	Pow // a b pow -> a**b
	Neg //   a neg -> -a

	// bitwise
	Bitand // a b bitand -> a&b
	Bitor  // a b bitor  -> a|b
	Bitxor // a b bitxor -> a^b
	Bitls  // a b bitls  -> a<<b
	Bitrs  // a b bitrs  -> a>>b
	Bitneg //   a bitneg -> ^a
	Inv    //   a inv    -> !a  (logical not)

	// compare
	Cmpeq  // a b cmpeq  -> a==b
	Cmpneq // a b cmpneq -> a!=b
	Cmplt  // a b cmplt  -> a<b
	Cmplte // a b cmplte -> a<=b
	Cmpgt  // a b cmpgt  -> a>b
	Cmpgte // a b cmpgte -> a>=b

	// variables
	Pushvarglb // - pushvarglb<strid>       v
	Setvarglb  // v setvarglb<strid>        -
	Pushvarloc // - pushvarloc<slot>        v
	Setvarloc  // v setvarloc<slot>         -
	Pusharrind // a i pusharrind            a[i]
	Setarrind  // a i v setarrind           a        (writes a[i]=v, leaves the (possibly same) container for the next level's setarrind or the final set)
	Freeloc    // - freeloc<slot>           -

	// control flow
	J          // - j<offset>          -            (unconditional jump)
	Jt         // c jt<offset>         -             (jump if truthy)
	Jf         // c jf<offset>         -             (jump if falsy)
	Exit       // - exit               -             (return with no value)
	Ret        // v ret                -             (return with a value)
	Textrun    // s textrun            -
	Choicebeg  // - choicebeg          -
	Choiceadd  // t c choiceadd<offset>   -          (text, chance)
	Choiceaddt // t c r choiceaddt<offset> -         (text, chance, require)
	Choicesel  // - choicesel          idx
	Chooseadd  // c chooseadd<offset>     -          (chance)
	Chooseaddt // c r chooseaddt<offset>  -          (chance, require)
	Choosesel  // - choosesel          idx
	PatchCall  // args... patch_call<argcount,candidates> result

	maxOpcode
)

var opcodeNames = [...]string{
	Nop: "nop",

	Pushi: "pushi", Pushd: "pushd", Pushs: "pushs", Pushbs: "pushbs", Pushu: "pushu",
	Pushints: "pushints", Pushbints: "pushbints", Makearr: "makearr",
	Dup: "dup", Dup2: "dup2", Pop: "pop", Save: "save", Load: "load",

	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod", Pow: "pow", Neg: "neg",

	Bitand: "bitand", Bitor: "bitor", Bitxor: "bitxor", Bitls: "bitls", Bitrs: "bitrs",
	Bitneg: "bitneg", Inv: "inv",

	Cmpeq: "cmpeq", Cmpneq: "cmpneq", Cmplt: "cmplt", Cmplte: "cmplte",
	Cmpgt: "cmpgt", Cmpgte: "cmpgte",

	Pushvarglb: "pushvarglb", Setvarglb: "setvarglb", Pushvarloc: "pushvarloc",
	Setvarloc: "setvarloc", Pusharrind: "pusharrind", Setarrind: "setarrind", Freeloc: "freeloc",

	J: "j", Jt: "jt", Jf: "jf", Exit: "exit", Ret: "ret", Textrun: "textrun",
	Choicebeg: "choicebeg", Choiceadd: "choiceadd", Choiceaddt: "choiceaddt", Choicesel: "choicesel",
	Chooseadd: "chooseadd", Chooseaddt: "chooseaddt", Choosesel: "choosesel", PatchCall: "patch_call",
}

func (o Opcode) String() string {
	if o < maxOpcode {
		if s := opcodeNames[o]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("unknown opcode (%d)", o)
}

// hasJumpArg reports whether o carries a single relative-offset argument
// patched later by Patch/PatchTo.
func (o Opcode) hasJumpArg() bool {
	switch o {
	case J, Jt, Jf, Choiceadd, Choiceaddt, Chooseadd, Chooseaddt:
		return true
	default:
		return false
	}
}
