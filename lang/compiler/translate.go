package compiler

import "github.com/diannex-lang/diannex/lang/token"

// stampStringID implements the addStringIds project option: when enabled
// and tok's StringData has no id yet, mints one and records where in the
// source file it should be spliced back in. Idempotent by construction - a
// token that already carries an id is left untouched, satisfying the
// "generating ids twice is a no-op" property.
func stampStringID(ctx *CompileContext, tok *token.Token) {
	if !ctx.Options.AddStringIDs() || tok == nil || tok.Data == nil {
		return
	}
	if tok.Data.AssignedID >= 0 {
		return
	}
	id := ctx.NextStringID()
	tok.Data.AssignedID = id
	ctx.RecordStringIDPosition(tok.Data.EndOfStringByte, id)
}
