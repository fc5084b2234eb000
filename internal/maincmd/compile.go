package maincmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diannex-lang/diannex/internal/binary"
	"github.com/diannex-lang/diannex/internal/project"
	"github.com/diannex-lang/diannex/internal/translation"
	"github.com/diannex-lang/diannex/lang/compiler"
	"github.com/diannex-lang/diannex/lang/parser"
	"github.com/diannex-lang/diannex/lang/scanner"
)

// compile runs every queued file through the lex and parse phases, then - if
// neither phase recorded any error - the bytecode generator, and finally
// writes the requested binary and translation outputs. It mirrors the
// reference compiler's single-pass, file-queue-driven build: later files can
// still grow the queue via #include while earlier ones are still being
// lexed.
func compile(ctx *compiler.CompileContext, files []string, opts project.Options) error {
	for _, f := range files {
		ctx.EnqueueInclude(f)
	}

	var phaseErrs []error

	for i := 0; i < len(ctx.Queue); i++ {
		file := ctx.Queue[i]
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("compile: read %s: %w", file, err)
		}

		toks, err := scanner.Lex(string(src), ctx, filepath.Dir(file), 1, 1)
		ctx.TokenLists[file] = toks
		if err != nil {
			phaseErrs = append(phaseErrs, err)
		}

		root, err := parser.Parse(toks)
		ctx.ParseLists[file] = root
		if err != nil {
			phaseErrs = append(phaseErrs, err)
		}
	}

	// Codegen only runs once every file has lexed and parsed clean - running
	// it over a tree the parser only partially recovered would just pile on
	// more, less meaningful errors.
	if len(phaseErrs) != 0 {
		return errors.Join(phaseErrs...)
	}

	ctx.CurrentFile = ""
	for _, file := range ctx.Queue {
		ctx.CurrentFile = file
		compiler.Generate(ctx, ctx.ParseLists[file])
	}
	if err := ctx.Errs.Err(); err != nil {
		return err
	}

	return writeOutputs(ctx, opts)
}

func writeOutputs(ctx *compiler.CompileContext, opts project.Options) error {
	binDir := opts.BinaryOutputDir
	if binDir == "" {
		binDir = "./out/"
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("compile: create %s: %w", binDir, err)
	}

	binName := opts.BinaryName
	if binName == "" {
		binName = "out"
	}

	binPath := filepath.Join(binDir, binName+".dxb")
	bf, err := os.Create(binPath)
	if err != nil {
		return fmt.Errorf("compile: create %s: %w", binPath, err)
	}
	defer bf.Close()
	if err := binary.Write(bf, ctx, binary.Options{Compressed: opts.Compression}); err != nil {
		return fmt.Errorf("compile: write %s: %w", binPath, err)
	}

	if opts.TranslationPublic {
		dir := opts.TranslationPrivateOutDir
		if dir == "" {
			dir = "./translations/"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("compile: create %s: %w", dir, err)
		}
		name := opts.TranslationPublicName
		if name == "" {
			name = binName
		}
		path := filepath.Join(dir, name+".dxt")
		pf, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("compile: create %s: %w", path, err)
		}
		defer pf.Close()
		if err := translation.WritePublic(pf, ctx); err != nil {
			return fmt.Errorf("compile: write %s: %w", path, err)
		}
	}

	if opts.TranslationPrivate {
		dir := opts.TranslationPrivateOutDir
		if dir == "" {
			dir = "./translations/"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("compile: create %s: %w", dir, err)
		}
		name := opts.TranslationPrivateName
		if name == "" {
			name = binName
		}
		path := filepath.Join(dir, name+".dxt")
		pf, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("compile: create %s: %w", path, err)
		}
		defer pf.Close()
		if err := translation.WritePrivate(pf, ctx, opts.UseStringIDs); err != nil {
			return fmt.Errorf("compile: write %s: %w", path, err)
		}
	}

	return nil
}
