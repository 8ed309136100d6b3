// Package report renders run-level check and diff reports.
//
// Check summaries use a compact tabular encoding; diff mode keeps the
// banner-per-file layout users of the original tool expect.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/csort/internal/diff"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
)

// FileStatus is one file's check-mode outcome.
type FileStatus struct {
	Path    string
	Classes int
	Changed bool
}

// Check renders the run-level check summary.
func Check(files []FileStatus) string {
	var rows [][]string
	changed := 0
	for _, f := range files {
		if f.Changed {
			changed++
		}
		rows = append(rows, []string{
			f.Path,
			fmt.Sprintf("%d", f.Classes),
			fmt.Sprintf("%t", f.Changed),
		})
	}
	table := formatTabular("files", []string{"path", "classes", "changed"}, rows)
	return fmt.Sprintf("%s\nchanged: %d of %d files", table, changed, len(files))
}

// Diff renders per-class change lists for every changed file.
func Diff(files []diff.FileDiff) string {
	var parts []string
	for _, fd := range files {
		if !fd.Changed() {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**************\n ***** %s *****\n**************\n", fd.Path)
		for _, cd := range fd.Classes {
			if len(cd.Changes) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n ----- %s ----- \n", cd.Class)
			for _, ch := range cd.Changes {
				fmt.Fprintf(&b, "moved %s (%s): %d -> %d\n", ch.Name, ch.Category, ch.OldIndex, ch.NewIndex)
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
