package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diannex-lang/diannex/internal/project"
)

func TestGenerateThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mygame.yaml")

	require.NoError(t, project.Generate(path, "mygame"))

	format, err := project.Load(path)
	require.NoError(t, err)
	require.Equal(t, "mygame", format.Name)
	require.Equal(t, []string{"main.dx"}, format.Options.Files)
	require.True(t, format.Options.InterpolationEnabled)
	require.True(t, format.Options.Compression)
	require.Equal(t, "./out/", format.Options.BinaryOutputDir)
}

func TestLoadFillsProjectNameFromPathWhenOmitted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "untitled.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  files: [main.dx]\n"), 0o644))

	format, err := project.Load(path)
	require.NoError(t, err)
	require.Equal(t, "untitled", format.Name)
}

func TestCompilerOptionsAdaptsMacrosAndStringIDs(t *testing.T) {
	opts := &project.Options{
		AddStringIDs: true,
		Macros:       map[string]string{"DEBUG": "1"},
	}
	co := project.CompilerOptions{Options: opts}
	require.True(t, co.AddStringIDs())
	require.True(t, co.HasMacro("DEBUG"))
	require.False(t, co.HasMacro("RELEASE"))
}
