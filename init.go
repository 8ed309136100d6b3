package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/csort/internal/model"
)

const (
	sentinelStart = "# csort:defaults:start"
	sentinelEnd   = "# csort:defaults:end"
)

// runInit implements the `csort init` subcommand, which writes (or updates)
// the default ordering section in a csort.toml file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("csort init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: csort init [flags] [path-to-csort.toml]

Write the default csort ordering configuration to a csort.toml file. The
section is wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching surrounding content. Creates the file if it
does not exist.

path-to-csort.toml defaults to ./csort.toml.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "csort.toml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote csort defaults to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped default configuration block,
// categories listed in default priority order.
func generateSection() string {
	levels := model.DefaultLevels()

	var b strings.Builder
	b.WriteString(sentinelStart + "\n")
	b.WriteString("use_custom_groups = true\n")
	b.WriteString("auto_static = false\n\n")
	b.WriteString("[order]\n")
	for _, c := range model.Categories {
		fmt.Fprintf(&b, "%s = %d\n", c, levels[c])
	}
	b.WriteString(sentinelEnd)
	return b.String()
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
