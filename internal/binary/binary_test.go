package binary_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/internal/binary"
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

func TestWriteUncompressedHeader(t *testing.T) {
	ctx := compileSource(t, `scene main { "Hello" }`)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, ctx, binary.Options{}))

	out := buf.Bytes()
	require.True(t, len(out) > 8)
	require.Equal(t, "DNX", string(out[:3]))
	require.Equal(t, byte(0), out[3]) // version
	require.Equal(t, byte(4), out[4]) // only the internal-translation-file bit, nothing compressed
}

func TestWriteCompressedSetsFlag(t *testing.T) {
	ctx := compileSource(t, `scene main { "Hello, compressed world!" }`)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, ctx, binary.Options{Compressed: true}))

	out := buf.Bytes()
	require.Equal(t, byte(1), out[4]&1)
}

func TestWriteTranslationBinaryRoundTripsLength(t *testing.T) {
	var buf bytes.Buffer
	strs := []string{"hello", "world", "with \"quotes\""}
	require.NoError(t, binary.WriteTranslationBinary(&buf, strs, binary.Options{}))

	out := buf.Bytes()
	require.Equal(t, "DNX", string(out[:3]))
	require.True(t, len(out) > 8)
}
