package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const messyClass = `class Dog:
    def walk(self):
        return self.legs

    def __init__(self):
        self.legs = 4
`

const tidyClass = `class Dog:
    def __init__(self):
        self.legs = 4

    def walk(self):
        return self.legs
`

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunReordersInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "animals.py", messyClass)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if got := readTestFile(t, path); got != tidyClass {
		t.Errorf("file after run:\n%s\nwant:\n%s", got, tidyClass)
	}
	if !strings.Contains(stderr.String(), "Reordered 1 of 1 files") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "animals.py", messyClass)

	var stdout, stderr bytes.Buffer
	if err := run([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if got := readTestFile(t, path); got != tidyClass {
		t.Errorf("file after run:\n%s", got)
	}
}

func TestRunCheckChanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "animals.py", messyClass)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--check", dir}, &stdout, &stderr)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("want errCheckFailed, got %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "animals.py,1,true") {
		t.Errorf("check output missing file row:\n%s", out)
	}
	if !strings.Contains(out, "changed: 1 of 1 files") {
		t.Errorf("check output missing summary:\n%s", out)
	}

	// Check mode must not write.
	if got := readTestFile(t, path); got != messyClass {
		t.Error("check mode modified the file")
	}
}

func TestRunCheckClean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "animals.py", tidyClass)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--check", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "changed: 0 of 1 files") {
		t.Errorf("check output:\n%s", stdout.String())
	}
}

func TestRunDiff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "animals.py", messyClass)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--diff", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"***** animals.py *****",
		" ----- Dog ----- ",
		"moved __init__ (dunder_method): 1 -> 0",
		"moved walk (instance_method): 0 -> 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}
	if got := readTestFile(t, path); got != messyClass {
		t.Error("diff mode modified the file")
	}
}

func TestRunOutputPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeTestFile(t, dir, "animals.py", messyClass)
	out := filepath.Join(t.TempDir(), "sorted.py")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--output-path", out, src}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := readTestFile(t, src); got != messyClass {
		t.Error("source file should be untouched with --output-path")
	}
	if got := readTestFile(t, out); got != tidyClass {
		t.Errorf("output file:\n%s", got)
	}
}

func TestRunOutputPathDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "pkg/animals.py", messyClass)
	outDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-o", outDir, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := readTestFile(t, filepath.Join(outDir, "pkg", "animals.py"))
	if got != tidyClass {
		t.Errorf("output file:\n%s", got)
	}
}

func TestRunLevelOverride(t *testing.T) {
	t.Parallel()

	src := `class Dog:
    def walk(self):
        pass

    def _helper(self):
        pass
`
	dir := t.TempDir()
	path := writeTestFile(t, dir, "animals.py", src)

	// At the default levels this file is already ordered.
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--check", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("default check: %v", err)
	}

	// Hoisting private methods reorders it.
	if err := run([]string{"--level", "private_method=1", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run with level override: %v", err)
	}
	got := readTestFile(t, path)
	if strings.Index(got, "_helper") > strings.Index(got, "walk") {
		t.Errorf("private method should come first:\n%s", got)
	}
}

func TestRunConfigPathAutoStatic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTestFile(t, dir, "calc.py", `class Calc:
    def add(self, a, b):
        return a + b
`)
	cfg := writeTestFile(t, t.TempDir(), "csort.toml", "auto_static = true\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config-path", cfg, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := readTestFile(t, path)
	if !strings.Contains(got, "@staticmethod") || strings.Contains(got, "self") {
		t.Errorf("add should be static now:\n%s", got)
	}
	if !strings.Contains(stderr.String(), "Converted 1 methods to static in calc.py") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "animals.py", tidyClass)
	cfg := writeTestFile(t, t.TempDir(), "csort.toml", "[order]\nnot_real = 1\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config-path", cfg, dir}, &stdout, &stderr); err == nil {
		t.Fatal("unknown category in config should fail")
	}
}

func TestRunUnreadableFileWarns(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	dir := t.TempDir()
	writeTestFile(t, dir, "good.py", messyClass)
	if err := os.WriteFile(filepath.Join(dir, "bad.py"), []byte("class Ok:\n    pass\n"), 0o000); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "Warning: bad.py:") {
		t.Errorf("stderr = %q", stderr.String())
	}
	// The readable file is still processed.
	if got := readTestFile(t, filepath.Join(dir, "good.py")); got != tidyClass {
		t.Error("good.py not reordered")
	}
}

func TestRunNoPythonFiles(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{t.TempDir()}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no python files") {
		t.Fatalf("want no-files error, got %v", err)
	}
}

func TestRunSkipPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "keep.py", messyClass)
	skipped := writeTestFile(t, dir, "gen/models.py", messyClass)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--skip-pattern", "gen/", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := readTestFile(t, skipped); got != messyClass {
		t.Error("skipped file was modified")
	}
	if got := readTestFile(t, filepath.Join(dir, "keep.py")); got != tidyClass {
		t.Error("kept file not reordered")
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-V"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "csort") {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			"positional before flags",
			[]string{"src", "--check"},
			[]string{"--check", "src"},
		},
		{
			"value flags keep their value",
			[]string{"--level", "private_method=1", "src"},
			[]string{"--level", "private_method=1", "src"},
		},
		{
			"double dash stops flag parsing",
			[]string{"--check", "--", "-odd-name"},
			[]string{"--check", "-odd-name"},
		},
		{
			"mixed",
			[]string{"src", "-o", "out", "--diff"},
			[]string{"-o", "out", "--diff", "src"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := reorderArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
