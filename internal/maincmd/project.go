package maincmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/diannex-lang/diannex/internal/project"
	"github.com/diannex-lang/diannex/lang/compiler"
)

// runProject compiles a project loaded from a project file, with any
// project-option flags given on the command line overriding the file's own
// settings.
func (c *Cmd) runProject(_ context.Context, stdio mainer.Stdio, path string) error {
	format, err := project.Load(path)
	if err != nil {
		return err
	}
	opts := &format.Options

	if len(c.args) != 0 {
		opts.Files = c.args
	}
	if c.BinaryDir != "" {
		opts.BinaryOutputDir = c.BinaryDir
	}
	if c.BinaryName != "" {
		opts.BinaryName = c.BinaryName
	}
	if c.Public {
		opts.TranslationPublic = true
	}
	if c.Private {
		opts.TranslationPrivate = true
	}
	if c.PubName != "" {
		opts.TranslationPublicName = c.PubName
	}
	if c.PrivName != "" {
		opts.TranslationPrivateName = c.PrivName
	}
	if c.PrivDir != "" {
		opts.TranslationPrivateOutDir = c.PrivDir
	}
	if c.Compress {
		opts.Compression = true
	}

	base := filepath.Dir(path)
	files := make([]string, len(opts.Files))
	for i, f := range opts.Files {
		files[i] = filepath.Join(base, f)
	}

	fmt.Fprintln(stdio.Stdout, "Beginning compilation process...")
	ctx := compiler.NewCompileContext(project.CompilerOptions{Options: opts})
	if err := compile(ctx, files, *opts); err != nil {
		return err
	}
	if opts.CompileFinishMessage != "" {
		fmt.Fprintln(stdio.Stdout, opts.CompileFinishMessage)
	} else {
		fmt.Fprintln(stdio.Stdout, "Completed!")
	}
	return nil
}

// runCli compiles the given files directly, using only the project-option
// flags (no project file).
func (c *Cmd) runCli(_ context.Context, stdio mainer.Stdio, files []string) error {
	opts := project.Options{
		Files:                    files,
		InterpolationEnabled:     true,
		BinaryOutputDir:          "./out/",
		BinaryName:               "out",
		TranslationPrivateOutDir: "./translations/",
		TranslationPrivateName:   "out",
		TranslationPublicName:    "out",
	}
	if c.BinaryDir != "" {
		opts.BinaryOutputDir = c.BinaryDir
	}
	if c.BinaryName != "" {
		opts.BinaryName = c.BinaryName
	}
	opts.TranslationPublic = c.Public
	opts.TranslationPrivate = c.Private
	if c.PubName != "" {
		opts.TranslationPublicName = c.PubName
	}
	if c.PrivName != "" {
		opts.TranslationPrivateName = c.PrivName
	}
	if c.PrivDir != "" {
		opts.TranslationPrivateOutDir = c.PrivDir
	}
	opts.Compression = c.Compress

	fmt.Fprintln(stdio.Stdout, "Beginning compilation process...")
	ctx := compiler.NewCompileContext(project.CompilerOptions{Options: &opts})
	if err := compile(ctx, files, opts); err != nil {
		return err
	}
	fmt.Fprintln(stdio.Stdout, "Completed!")
	return nil
}
