package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/diannex-lang/diannex/internal/project"
)

// runGenerate writes a fresh project file template named by --generate.
func (c *Cmd) runGenerate(_ context.Context, stdio mainer.Stdio) error {
	path := c.Generate
	if len(path) < 5 || path[len(path)-5:] != ".yaml" {
		path += ".yaml"
	}
	if err := project.Generate(path, c.Generate); err != nil {
		return err
	}
	fmt.Fprintf(stdio.Stdout, "Generated project file: %s\n", path)
	return nil
}
