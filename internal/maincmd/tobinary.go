package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/diannex-lang/diannex/internal/binary"
	"github.com/diannex-lang/diannex/internal/translation"
)

// runToBinary converts a standalone translation file's string table into
// the same binary encoding a compiled module's internal translation table
// uses.
func (c *Cmd) runToBinary(_ context.Context, stdio mainer.Stdio) error {
	isInputPrivate := c.InPrivate != ""
	inPath := c.InPrivate
	if !isInputPrivate {
		inPath = c.InPublic
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("to_binary: open %s: %w", inPath, err)
	}
	defer in.Close()

	fmt.Fprintln(stdio.Stdout, "Converting to binary format...")

	var strs []string
	if isInputPrivate {
		strs, err = translation.ReadPrivateStrings(in)
	} else {
		strs, err = translation.ReadPublicStrings(in)
	}
	if err != nil {
		return err
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("to_binary: create %s: %w", c.Out, err)
	}
	defer out.Close()

	if err := binary.WriteTranslationBinary(out, strs, binary.Options{Compressed: c.Compress}); err != nil {
		return err
	}

	fmt.Fprintln(stdio.Stdout, "Completed!")
	return nil
}
