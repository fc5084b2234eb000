package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented, S-expression-like rendering of n to w, for use in
// golden-file parser tests. The format is deliberately terse: kind, then any
// non-empty Content/Modifier/Flags, then children indented one level deeper.
func Dump(w io.Writer, n *Node) {
	dump(w, n, 0)
}

func dump(w io.Writer, n *Node, depth int) {
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent(depth))
		return
	}

	var b strings.Builder
	b.WriteString(n.Kind.String())
	if n.Content != "" {
		fmt.Fprintf(&b, " %q", n.Content)
	}
	if n.Modifier != 0 {
		fmt.Fprintf(&b, " modifier=%d", n.Modifier)
	}
	if n.ExcludeTranslation {
		b.WriteString(" excl")
	}
	for _, f := range n.Flags {
		fmt.Fprintf(&b, " flag(%s)", f.Name)
	}
	fmt.Fprintf(w, "%s%s\n", indent(depth), b.String())

	for _, c := range n.Children {
		dump(w, c, depth+1)
	}
	for _, f := range n.Flags {
		if f.Required != nil {
			fmt.Fprintf(w, "%srequire:\n", indent(depth+1))
			dump(w, f.Required, depth+2)
		}
		if f.Default != nil {
			fmt.Fprintf(w, "%sdefault:\n", indent(depth+1))
			dump(w, f.Default, depth+2)
		}
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// String returns n's Dump output as a string, primarily for test failure
// messages and golden-file comparisons.
func (n *Node) String() string {
	var b strings.Builder
	Dump(&b, n)
	return b.String()
}
