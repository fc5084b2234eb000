package translation_test

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/internal/translation"
	"github.com/diannex-lang/diannex/lang/compiler"
)

func TestSanitizeEscapesControlAndQuoteChars(t *testing.T) {
	got := translation.Sanitize("line one\n\"quoted\"\ttabbed")
	require.Equal(t, `line one\n\"quoted\"\ttabbed`, got)
}

func TestConvertPrivateToPublicExtractsStringLines(t *testing.T) {
	priv := "@main.hello\n#a translator hint\n\"Hello, world!\"\n\n@main.bye\n\"Goodbye!\"\n"

	var out strings.Builder
	require.NoError(t, translation.ConvertPrivateToPublic(strings.NewReader(priv), &out))
	require.Equal(t, "Hello, world!\nGoodbye!\n", out.String())
}

func TestConvertPublicToPrivateReplacesStringText(t *testing.T) {
	priv := "@main.hello\n\"Hello, world!\"&00000000\n"
	pub := "Bonjour le monde !\n"

	var out strings.Builder
	require.NoError(t, translation.ConvertPublicToPrivate(strings.NewReader(pub), strings.NewReader(priv), &out))
	require.Equal(t, "@main.hello\n\"Bonjour le monde !\"&00000000\n", out.String())
}

func TestReadPrivateStringsExtractsQuotedText(t *testing.T) {
	priv := "@main.hello\n\"Hello, world!\"&00000000\n\"Goodbye!\"\n"
	strs, err := translation.ReadPrivateStrings(strings.NewReader(priv))
	require.NoError(t, err)
	require.Equal(t, []string{"Hello, world!", "Goodbye!"}, strs)
}

func TestReadPublicStringsReturnsEveryLine(t *testing.T) {
	pub := "Hello, world!\nGoodbye!\n"
	strs, err := translation.ReadPublicStrings(strings.NewReader(pub))
	require.NoError(t, err)
	require.Equal(t, []string{"Hello, world!", "Goodbye!"}, strs)
}

func TestWritePrivateGroupsRecordsUnderKeyHeaders(t *testing.T) {
	ctx := &compiler.CompileContext{
		TranslationRecords: []compiler.TranslationRecord{
			{Key: "main.greet", IsComment: true, Text: "shown on first visit"},
			{Key: "main.greet", Text: "Hello, world!", ID: 0},
			{Key: "main.bye", Text: "Goodbye!", ID: 1},
		},
	}

	var out strings.Builder
	require.NoError(t, translation.WritePrivate(&out, ctx, true))

	want := "@main.greet\n" +
		"#shown on first visit\n" +
		"\"Hello, world!\"&00000000\n" +
		"\n" +
		"@main.bye\n" +
		"\"Goodbye!\"&00000001\n"

	if patch := diff.Diff(want, out.String()); patch != "" {
		t.Errorf("unexpected WritePrivate output:\n%s", patch)
	}
}

func TestUpgradeFileToNewerMarksUnmatchedAsNew(t *testing.T) {
	older := "\"Hello, world!\"&00000000\n"
	newer := "\"Hello, world!\"&00000000\n\"Brand new line\"&00000001\n"

	var out strings.Builder
	require.NoError(t, translation.UpgradeFileToNewer(strings.NewReader(older), true, strings.NewReader(newer), &out))
	result := out.String()
	require.Contains(t, result, "Hello, world!")
	require.Contains(t, result, "[new]")
}
