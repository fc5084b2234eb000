package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/diannex-lang/diannex/internal/translation"
)

// runConvert converts a translation file between its public and private
// formats: private->public directly, or public->private by pairing the
// public file's bare strings with a matching private file's structure.
func (c *Cmd) runConvert(_ context.Context, stdio mainer.Stdio) error {
	out, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("convert: create %s: %w", c.Out, err)
	}
	defer out.Close()

	fmt.Fprintln(stdio.Stdout, "Converting...")

	if c.InPrivate != "" {
		in, err := os.Open(c.InPrivate)
		if err != nil {
			return fmt.Errorf("convert: open %s: %w", c.InPrivate, err)
		}
		defer in.Close()
		if err := translation.ConvertPrivateToPublic(in, out); err != nil {
			return err
		}
	} else {
		in, err := os.Open(c.InPublic)
		if err != nil {
			return fmt.Errorf("convert: open %s: %w", c.InPublic, err)
		}
		defer in.Close()
		match, err := os.Open(c.InMatch)
		if err != nil {
			return fmt.Errorf("convert: open %s: %w", c.InMatch, err)
		}
		defer match.Close()
		if err := translation.ConvertPublicToPrivate(in, match, out); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdio.Stdout, "Completed!")
	return nil
}

// runUpgrade rewrites a newer private translation file's string lines,
// preferring text already recorded for matching ids in an older file.
func (c *Cmd) runUpgrade(_ context.Context, stdio mainer.Stdio) error {
	isInputPrivate := c.InPrivate != ""
	inPath := c.InPrivate
	if !isInputPrivate {
		inPath = c.InPublic
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("upgrade: open %s: %w", inPath, err)
	}
	defer in.Close()

	newer, err := os.Open(c.InNewer)
	if err != nil {
		return fmt.Errorf("upgrade: open %s: %w", c.InNewer, err)
	}
	defer newer.Close()

	out, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("upgrade: create %s: %w", c.Out, err)
	}
	defer out.Close()

	fmt.Fprintln(stdio.Stdout, "Upgrading...")
	if err := translation.UpgradeFileToNewer(in, isInputPrivate, newer, out); err != nil {
		return err
	}
	fmt.Fprintln(stdio.Stdout, "Completed!")
	return nil
}
