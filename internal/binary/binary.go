// Package binary serializes a finished compiler.CompileContext into the
// .dxb wire format: a small fixed header followed by an optionally
// zlib-compressed payload holding the scene/function/definition tables, the
// instruction stream, the interned string table, and the internal
// translation table.
package binary

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/diannex-lang/diannex/lang/compiler"
)

const (
	magic   = "DNX"
	version = 0

	flagCompressed              = 1 << 0
	flagShuffle                 = 1 << 1
	flagInternalTranslationFile = 1 << 2

	emptyIndex = 0xFFFFFFFF
	stringBit  = uint32(1) << 31
)

// Options controls how the payload is framed; Compressed corresponds to the
// project's compression setting. There is no shuffle option: Write never
// sets the shuffle flag bit.
type Options struct {
	Compressed bool
}

// Write serializes ctx's compiled output to w per the .dxb layout: magic,
// version, flags, then a uint32 payload size and the (possibly
// zlib-compressed) payload itself.
func Write(w io.Writer, ctx *compiler.CompileContext, opts Options) error {
	var payload bytes.Buffer
	writePayload(&payload, ctx)

	body := payload.Bytes()
	if opts.Compressed {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(body); err != nil {
			return fmt.Errorf("binary: compress payload: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("binary: compress payload: %w", err)
		}
		body = compressed.Bytes()
	}

	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := writeUint8(w, version); err != nil {
		return err
	}

	flags := uint8(0)
	if opts.Compressed {
		flags |= flagCompressed
	}
	flags |= flagInternalTranslationFile
	if err := writeUint8(w, flags); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func writePayload(buf *bytes.Buffer, ctx *compiler.CompileContext) {
	writeSymbolTable(buf, ctx, ctx.SceneTable)
	writeSymbolTable(buf, ctx, ctx.FunctionTable)

	writeUint32(buf, uint32(len(ctx.DefinitionTable)))
	for _, key := range sortedKeys(ctx.DefinitionTable) {
		entry := ctx.DefinitionTable[key]
		writeUint32(buf, uint32(ctx.Intern(key)))
		if entry.IsString {
			writeUint32(buf, uint32(entry.Value)|stringBit)
		} else {
			writeUint32(buf, uint32(entry.Value))
		}
		writeIndex(buf, entry.BodyEntry)
	}

	writeUint32(buf, uint32(len(ctx.Bytecode)))
	for _, in := range ctx.Bytecode {
		writeInstruction(buf, in)
	}

	strs := ctx.InternalStrings()
	writeUint32(buf, uint32(len(strs)))
	for _, s := range strs {
		writeCString(buf, s)
	}

	var nonComment []string
	for _, rec := range ctx.TranslationRecords {
		if !rec.IsComment {
			nonComment = append(nonComment, rec.Text)
		}
	}
	writeUint32(buf, uint32(len(nonComment)))
	for _, s := range nonComment {
		writeCString(buf, s)
	}
}

// writeSymbolTable writes a scene/function table: symbol string id, entry
// count, then each entry (an instruction index, or emptyIndex for a -1
// sentinel).
func writeSymbolTable(buf *bytes.Buffer, ctx *compiler.CompileContext, table map[string][]int) {
	writeUint32(buf, uint32(len(table)))
	for _, symbol := range sortedKeys(table) {
		indices := table[symbol]
		writeUint32(buf, uint32(ctx.Intern(symbol)))
		writeUint32(buf, uint32(len(indices)))
		for _, idx := range indices {
			writeIndex(buf, idx)
		}
	}
}

func writeIndex(buf *bytes.Buffer, idx int) {
	if idx < 0 {
		writeUint32(buf, emptyIndex)
		return
	}
	writeUint32(buf, uint32(idx))
}

// writeInstruction encodes one instruction: opcode byte, then its
// operand(s), matching compiler.Instruction.Size's layout exactly.
func writeInstruction(buf *bytes.Buffer, in compiler.Instruction) {
	writeUint8Buf(buf, uint8(in.Op))
	switch in.Size() {
	case 1:
		// no operand
	case 5:
		writeInt32(buf, in.Arg1)
	case 9:
		if in.Op == compiler.Pushd {
			writeFloat64(buf, in.Float)
		} else {
			writeInt32(buf, in.Arg1)
			writeInt32(buf, in.Arg2)
		}
	default:
		// patch_call
		writeUint32(buf, uint32(in.ArgCount))
		writeUint32(buf, uint32(len(in.Candidates)))
		for _, c := range in.Candidates {
			writeCString(buf, c)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func writeUint8Buf(buf *bytes.Buffer, v uint8) { buf.WriteByte(v) }

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeInt32(buf *bytes.Buffer, v int32) { writeUint32(buf, uint32(v)) }

func writeFloat64(buf *bytes.Buffer, v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	buf.Write(tmp[:])
}

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

// WriteTranslationBinary writes strs (a translation file's strings, in file
// order) in the same header-plus-string-table shape Write uses for a
// compiled module's internal translation table, for the --to_binary mode
// that turns a standalone .dxt file into its .dxb-compatible binary form.
func WriteTranslationBinary(w io.Writer, strs []string, opts Options) error {
	var payload bytes.Buffer
	writeUint32(&payload, uint32(len(strs)))
	for _, s := range strs {
		writeCString(&payload, s)
	}

	body := payload.Bytes()
	if opts.Compressed {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(body); err != nil {
			return fmt.Errorf("binary: compress payload: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("binary: compress payload: %w", err)
		}
		body = compressed.Bytes()
	}

	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := writeUint8(w, version); err != nil {
		return err
	}
	flags := uint8(flagInternalTranslationFile)
	if opts.Compressed {
		flags |= flagCompressed
	}
	if err := writeUint8(w, flags); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
