// Package translation reads and writes diannex's two translation file
// formats (public: one string per line; private: grouped by symbol with
// comments and optional string ids) and converts between them.
package translation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/diannex-lang/diannex/lang/compiler"
)

// Sanitize escapes a string for embedding in a translation file line, using
// the same backslash escapes as diannex source string literals.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\a':
			b.WriteString(`\a`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case '\b':
			b.WriteString(`\b`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WritePublic writes one sanitized, quote-free line per non-comment
// translation record, in record order.
func WritePublic(w io.Writer, ctx *compiler.CompileContext) error {
	bw := bufio.NewWriter(w)
	for _, rec := range ctx.TranslationRecords {
		if rec.IsComment {
			continue
		}
		if _, err := fmt.Fprintln(bw, Sanitize(rec.Text)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePrivate writes every translation record grouped under its key's
// `@key` header, interleaving comment-translator-hint lines (`#...`) and
// quoted string lines. useStringIDs additionally appends a `&XXXXXXXX` hex
// id to every string line; the id is the record's translation ordinal in
// this compilation, not an id carried over from the source text, so it
// changes when strings are added or removed ahead of it.
func WritePrivate(w io.Writer, ctx *compiler.CompileContext, useStringIDs bool) error {
	bw := bufio.NewWriter(w)

	prevKey := ""
	wroteAnything := false
	for _, rec := range ctx.TranslationRecords {
		if rec.Key != prevKey {
			if wroteAnything {
				fmt.Fprintln(bw)
			}
			prevKey = rec.Key
			if prevKey != "" {
				fmt.Fprintf(bw, "@%s\n", prevKey)
				wroteAnything = true
			}
		}

		if rec.IsComment {
			for _, line := range strings.Split(rec.Text, "\n") {
				fmt.Fprintf(bw, "#%s\n", collapseLeadingSpace(line))
			}
			wroteAnything = true
			continue
		}

		fmt.Fprintf(bw, "\"%s\"", Sanitize(rec.Text))
		if useStringIDs && rec.ID >= 0 {
			fmt.Fprintf(bw, "&%08x", rec.ID)
		}
		fmt.Fprintln(bw)
		wroteAnything = true
	}
	return bw.Flush()
}

// collapseLeadingSpace mirrors the reference generator's comment
// reformatting: any run of leading whitespace collapses to exactly one
// space, keeping multi-line marked comments readably indented without
// preserving arbitrary source indentation.
func collapseLeadingSpace(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == line || trimmed == "" {
		return line
	}
	return " " + trimmed
}

// ReadPublicStrings returns every line of a public translation file, in
// order, for --to_binary conversion.
func ReadPublicStrings(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	return out, scanner.Err()
}

// ReadPrivateStrings returns the quoted string on every string line of a
// private translation file, in order, for --to_binary conversion.
func ReadPrivateStrings(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		start := strings.IndexFunc(line, func(r rune) bool { return r != ' ' })
		if start < 0 || line[start] != '"' {
			continue
		}
		end := strings.LastIndexByte(line, '"')
		if end <= start {
			continue
		}
		out = append(out, line[start+1:end])
	}
	return out, scanner.Err()
}

// ConvertPrivateToPublic reads a private translation file from r and writes
// the equivalent public file (one bare string per line) to w.
func ConvertPrivateToPublic(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		text := scanner.Text()
		start := strings.IndexFunc(text, func(r rune) bool { return r != ' ' })
		if start < 0 || text[start] != '"' {
			continue
		}
		end := strings.LastIndexByte(text, '"')
		if end <= start {
			continue
		}
		if _, err := fmt.Fprintln(bw, text[start+1:end]); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// ConvertPublicToPrivate walks inMatch's private file line by line,
// replacing each string line's text with the next line read from in (the
// public file), leaving every non-string line untouched.
func ConvertPublicToPrivate(in, inMatch io.Reader, w io.Writer) error {
	pub := bufio.NewScanner(in)
	priv := bufio.NewScanner(inMatch)
	bw := bufio.NewWriter(w)

	for priv.Scan() {
		line := priv.Text()
		start := strings.IndexFunc(line, func(r rune) bool { return r != ' ' })
		if start < 0 || line[start] != '"' {
			fmt.Fprintln(bw, line)
			continue
		}
		if !pub.Scan() {
			return fmt.Errorf("translation: private file has more strings than public file")
		}
		end := strings.LastIndexByte(line, '"')
		fmt.Fprintf(bw, "\"%s%s\n", pub.Text(), line[end:])
	}
	if err := priv.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// UpgradeFileToNewer reproduces every string line of inNewer (a newer
// private translation file), preferring the text already associated with
// that line's string id in the older input (in, private if isInputPrivate
// else public, where the public format's implicit id is its line number).
// A newer line with no resolvable older match is copied through verbatim
// with a trailing " [new]" marker.
func UpgradeFileToNewer(in io.Reader, isInputPrivate bool, newer io.Reader, w io.Writer) error {
	older := map[int]string{}
	scanner := bufio.NewScanner(in)

	if isInputPrivate {
		for scanner.Scan() {
			line := scanner.Text()
			start := strings.IndexFunc(line, func(r rune) bool { return r != ' ' })
			if start < 0 || line[start] != '"' {
				continue
			}
			end := strings.LastIndexByte(line, '"')
			if end <= start {
				continue
			}
			idStart := strings.LastIndexByte(line, '&')
			if idStart < end {
				return fmt.Errorf("translation: missing string id in private translation file")
			}
			id, err := strconv.ParseInt(line[idStart+1:], 16, 64)
			if err != nil {
				return fmt.Errorf("translation: invalid string id format: %w", err)
			}
			older[int(id)] = line[start+1 : end]
		}
	} else {
		id := 0
		for scanner.Scan() {
			older[id] = scanner.Text()
			id++
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	newerScanner := bufio.NewScanner(newer)
	for newerScanner.Scan() {
		line := newerScanner.Text()
		start := strings.IndexFunc(line, func(r rune) bool { return r != ' ' })
		if start < 0 || line[start] != '"' {
			fmt.Fprintln(bw, line)
			continue
		}

		end := strings.LastIndexByte(line, '"')
		idStart := strings.LastIndexByte(line, '&')
		if idStart < end {
			fmt.Fprintf(bw, "%s [new]\n", line)
			continue
		}
		idString := line[idStart+1:]
		if len(idString) > 8 {
			idString = idString[:8]
		}
		id, err := strconv.ParseInt(idString, 16, 64)
		if err != nil {
			return fmt.Errorf("translation: invalid string id format: %w", err)
		}

		if text, ok := older[int(id)]; ok {
			fmt.Fprintf(bw, "\"%s\"&%s\n", text, idString)
		} else {
			fmt.Fprintf(bw, "%s [new]\n", line)
		}
	}
	if err := newerScanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}
