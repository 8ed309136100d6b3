// csort reorders the members of Python class definitions into a
// deterministic, configurable canonical order.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/phobologic/csort/internal/config"
	"github.com/phobologic/csort/internal/diff"
	"github.com/phobologic/csort/internal/discover"
	"github.com/phobologic/csort/internal/format"
	"github.com/phobologic/csort/internal/model"
	"github.com/phobologic/csort/internal/order"
	"github.com/phobologic/csort/internal/report"
)

var version = "dev"

// errCheckFailed signals that check mode found files needing reordering.
var errCheckFailed = errors.New("reordering needed")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errCheckFailed):
		os.Exit(1)
	case errors.Is(err, config.ErrConfig):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// multiFlag collects repeated flag values.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("csort", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		outputPath      string
		configPath      string
		checkMode       bool
		diffMode        bool
		autoStatic      bool
		useCustomGroups bool
		levels          multiFlag
		skips           multiFlag
		showVersion     bool
	)

	fs.StringVar(&outputPath, "o", "", "write reordered files under this path instead of in place")
	fs.StringVar(&outputPath, "output-path", "", "write reordered files under this path instead of in place")
	fs.StringVar(&configPath, "config-path", "", "path to a csort.toml or .csort.yaml file")
	fs.BoolVar(&checkMode, "check", false, "report files that would change, write nothing")
	fs.BoolVar(&diffMode, "diff", false, "print the element moves per class, write nothing")
	fs.BoolVar(&autoStatic, "auto-static", false, "rewrite methods that never use self as static methods")
	fs.BoolVar(&useCustomGroups, "use-custom-groups", true, "keep csort_group members together")
	fs.Var(&levels, "level", "category level override as name=N (repeatable)")
	fs.Var(&skips, "skip-pattern", "gitignore-style pattern of files to skip (repeatable)")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "csort %s\n", version)
		return nil
	}

	// A boolean policy flag counts as a CLI override only when given.
	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	cliLevels, err := config.ParseLevels(levels)
	if err != nil {
		return err
	}
	cli := config.Overrides{Levels: cliLevels}
	if visited["auto-static"] {
		cli.AutoStatic = &autoStatic
	}
	if visited["use-custom-groups"] {
		cli.UseCustomGroups = &useCustomGroups
	}

	var fileOverrides config.Overrides
	if configPath != "" {
		fileOverrides, err = config.Load(configPath)
	} else if cwd, cwdErr := os.Getwd(); cwdErr == nil {
		fileOverrides, _, err = config.Discover(cwd)
	}
	if err != nil {
		return err
	}

	policy, err := config.Resolve(fileOverrides, cli)
	if err != nil {
		return err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving input path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}

	baseDir := root
	var files []string
	if info.IsDir() {
		files, err = discover.Files(root, skips)
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no python files found under %s", root)
		}
	} else {
		baseDir = filepath.Dir(root)
		files = []string{filepath.Base(root)}
	}

	results, err := formatConcurrent(baseDir, files, policy, stderr)
	if err != nil {
		return err
	}

	switch {
	case checkMode:
		return reportCheck(files, results, stdout)
	case diffMode:
		return reportDiff(files, results, stdout)
	default:
		return applyResults(baseDir, files, results, outputPath, info.IsDir(), stderr)
	}
}

// formatConcurrent runs the pipeline over each file with a worker pool,
// collecting results back in input order. Unreadable or unparseable files
// produce a warning and a nil slot; permutation invariant violations abort
// the whole run.
func formatConcurrent(baseDir string, files []string, policy model.OrderingPolicy, stderr io.Writer) ([]*format.Result, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]*format.Result, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	var stderrMu sync.Mutex

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				path := filepath.Join(baseDir, files[idx])
				source, err := os.ReadFile(path)
				if err == nil {
					results[idx], err = format.Source(source, policy)
				}
				if err != nil {
					errs[idx] = err
					continue
				}
				if results[idx].Converted > 0 {
					stderrMu.Lock()
					_, _ = fmt.Fprintf(stderr, "Converted %d methods to static in %s\n", results[idx].Converted, files[idx])
					stderrMu.Unlock()
				}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, order.ErrNotPermutation) {
			return nil, fmt.Errorf("%s: %w", files[i], err)
		}
		results[i] = nil
		_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", files[i], err)
	}
	return results, nil
}

func reportCheck(files []string, results []*format.Result, stdout io.Writer) error {
	var statuses []report.FileStatus
	changed := false
	for i, res := range results {
		if res == nil {
			continue
		}
		needs := res.Changed || res.Converted > 0
		changed = changed || needs
		statuses = append(statuses, report.FileStatus{
			Path:    files[i],
			Classes: res.ClassCount,
			Changed: needs,
		})
	}
	_, _ = fmt.Fprintln(stdout, report.Check(statuses))
	if changed {
		return errCheckFailed
	}
	return nil
}

func reportDiff(files []string, results []*format.Result, stdout io.Writer) error {
	var fileDiffs []diff.FileDiff
	for i, res := range results {
		if res == nil {
			continue
		}
		fileDiffs = append(fileDiffs, diff.FileDiff{Path: files[i], Classes: res.Classes})
	}
	if out := report.Diff(fileDiffs); out != "" {
		_, _ = fmt.Fprintln(stdout, out)
	}
	return nil
}

func applyResults(baseDir string, files []string, results []*format.Result, outputPath string, dirInput bool, stderr io.Writer) error {
	written := 0
	processed := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		processed++
		if !res.Changed && res.Converted == 0 {
			continue
		}

		target := filepath.Join(baseDir, files[i])
		if outputPath != "" {
			if dirInput {
				target = filepath.Join(outputPath, files[i])
			} else {
				target = outputPath
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := writeFileAtomic(target, res.Output); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		written++
	}
	_, _ = fmt.Fprintf(stderr, "Reordered %d of %d files\n", written, processed)
	return nil
}

// writeFileAtomic writes via a temp file and rename so a failed write never
// leaves a half-written source file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".csort-tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-output-path": true, "--output-path": true,
	"-config-path": true, "--config-path": true,
	"-level": true, "--level": true,
	"-skip-pattern": true, "--skip-pattern": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
