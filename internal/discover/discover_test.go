package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("pass\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"main.py",
		"pkg/animals.py",
		"pkg/data.json",
		"__pycache__/cached.py",
		".venv/lib/site.py",
		".hidden.py",
		"docs/readme.md",
	)

	got, err := Files(root, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{"main.py", filepath.Join("pkg", "animals.py")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFilesSkipPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"main.py",
		"gen/models.py",
		"pkg/animals.py",
	)

	got, err := Files(root, []string{"gen/"})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{"main.py", filepath.Join("pkg", "animals.py")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFilesGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"main.py",
		"ignored/thing.py",
	)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("ignored/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Files(root, nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{"main.py"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFilesEmpty(t *testing.T) {
	t.Parallel()

	got, err := Files(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Files = %v, want none", got)
	}
}
