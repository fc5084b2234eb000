package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "diannex"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<file>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s --project <file>
       %[1]s --generate <name>
       %[1]s --cli [<project-option>...] <file>...
       %[1]s --convert --out <file> (--in_private <file> | --in_public <file> --in_match <file>)
       %[1]s --upgrade --out <file> --in_newer <file> (--in_private <file> | --in_public <file>)
       %[1]s --to_binary --out <file> (--in_private <file> | --in_public <file>)
       %[1]s -h|--help

Universal tool for the diannex dialogue system.

Exactly one of --project, --generate, --cli, --convert, --upgrade,
--to_binary must be given.

       -p --project FILE         Compile using the given project file.
       -g --generate NAME        Generate a new project file named NAME.
       -c --cli                  Compile the given files without a project
                                 file, using the project-option flags below.
          --convert              Convert a translation file between its
                                 public and private formats.
          --upgrade              Upgrade an older translation file's string
                                 ids to match a newer file's layout.
          --to_binary            Convert a translation file's strings into
                                 the binary translation table format.

Translation conversion flags:
          --in_private FILE      Private input file (--convert, --upgrade,
                                 --to_binary).
          --in_public FILE       Public input file (--convert, --upgrade,
                                 --to_binary).
          --in_match FILE        Matching private file (--convert with
                                 --in_public).
          --in_newer FILE        Newer private file (--upgrade).
          --out FILE             Output file (--convert, --upgrade, --to_binary).

Project-option flags (apply to --cli):
       -b --binary DIR           Binary output directory (default: ./out/).
       -n --name NAME            Binary output file name.
       -t --public               Output a public translation file.
       -N --pubname NAME         Public translation file name.
       -T --private               Output a private translation file.
       -D --privname NAME        Private translation file name.
       -d --privdir DIR          Private translation output directory.
       -C --compress             Compress the binary output.

More information on the diannex project:
       https://github.com/diannex-lang/diannex
`, binName)
)

// Cmd is the diannex CLI's full flag surface, parsed by mainer.Parser using
// struct tags exactly as the teacher's Cmd does.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Project  string `flag:"p,project"`
	Generate string `flag:"g,generate"`
	Cli      bool   `flag:"c,cli"`
	Convert  bool   `flag:"convert"`
	Upgrade  bool   `flag:"upgrade"`
	ToBinary bool   `flag:"to_binary"`

	InPrivate string `flag:"in_private"`
	InPublic  string `flag:"in_public"`
	InMatch   string `flag:"in_match"`
	InNewer   string `flag:"in_newer"`
	Out       string `flag:"out"`

	BinaryDir   string `flag:"b,binary"`
	BinaryName  string `flag:"n,name"`
	Public      bool   `flag:"t,public"`
	PubName     string `flag:"N,pubname"`
	Private     bool   `flag:"T,private"`
	PrivName    string `flag:"D,privname"`
	PrivDir     string `flag:"d,privdir"`
	Compress    bool   `flag:"C,compress"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool)     {}

// Validate enforces spec's "exactly one mode per invocation" rule and each
// mode's required companion flags, matching main.cpp's result.count chain.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	modes := 0
	for _, on := range []bool{c.Project != "", c.Generate != "", c.Cli, c.Convert, c.Upgrade, c.ToBinary} {
		if on {
			modes++
		}
	}
	if modes == 0 {
		return fmt.Errorf("no main command specified; one of --project, --generate, --cli, --convert, --upgrade, --to_binary is required")
	}
	if modes > 1 {
		return fmt.Errorf("too many main commands specified")
	}

	switch {
	case c.Convert:
		if c.Out == "" {
			return fmt.Errorf("--out is required for --convert")
		}
		if c.InPrivate == "" && c.InPublic == "" {
			return fmt.Errorf("--convert requires --in_private or --in_public")
		}
		if c.InPublic != "" && c.InMatch == "" {
			return fmt.Errorf("--in_match is required for --convert and --in_public")
		}
	case c.Upgrade:
		if c.Out == "" || c.InNewer == "" {
			return fmt.Errorf("--out and --in_newer are required for --upgrade")
		}
		if c.InPrivate == "" && c.InPublic == "" {
			return fmt.Errorf("--upgrade requires --in_private or --in_public")
		}
	case c.Cli:
		if len(c.args) == 0 {
			return fmt.Errorf("--cli requires at least one file")
		}
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	var err error
	switch {
	case c.Generate != "":
		err = c.runGenerate(ctx, stdio)
	case c.Project != "":
		err = c.runProject(ctx, stdio, c.Project)
	case c.Cli:
		err = c.runCli(ctx, stdio, c.args)
	case c.Convert:
		err = c.runConvert(ctx, stdio)
	case c.Upgrade:
		err = c.runUpgrade(ctx, stdio)
	case c.ToBinary:
		err = c.runToBinary(ctx, stdio)
	}

	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	return mainer.Success
}
