package format

import (
	"testing"

	"github.com/phobologic/csort/internal/model"
)

const messySource = `class Dog:
    def walk(self):
        return self.legs

    def __init__(self):
        self.legs = 4

    legs: int = 4

    """A dog."""
`

func TestSourceReorders(t *testing.T) {
	t.Parallel()

	res, err := Source([]byte(messySource), model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if !res.Changed {
		t.Fatal("messy class should report changed")
	}
	if res.ClassCount != 1 {
		t.Errorf("class count = %d, want 1", res.ClassCount)
	}

	// The docstring stays where it lands by level, not by docstring
	// privilege: only the first statement of the original body is a
	// docstring, so here the string is a plain expression.
	want := `class Dog:
    legs: int = 4

    def __init__(self):
        self.legs = 4

    """A dog."""

    def walk(self):
        return self.legs
`
	if got := string(res.Output); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestSourceIdempotent(t *testing.T) {
	t.Parallel()

	policy := model.DefaultPolicy()
	first, err := Source([]byte(messySource), policy)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Source(first.Output, policy)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Changed {
		t.Error("second pass should be a no-op")
	}
	if string(second.Output) != string(first.Output) {
		t.Errorf("second pass rewrote output:\n%s", second.Output)
	}
}

func TestSourceUnchangedKeepsInput(t *testing.T) {
	t.Parallel()

	src := `class Dog:
    """A dog."""

    def __init__(self):
        self.legs = 4

    def walk(self):
        return self.legs
`
	res, err := Source([]byte(src), model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if res.Changed {
		t.Error("already ordered class reported changed")
	}
	if string(res.Output) != src {
		t.Errorf("output differs from input:\n%s", res.Output)
	}
}

func TestSourceCustomGroups(t *testing.T) {
	t.Parallel()

	src := `class Dog:
    def speak(self):
        return self.sound

    @csort_group(group="movement")
    def walk(self):
        return self.legs

    def __init__(self):
        self.legs = 4

    @csort_group(group="movement")
    def run(self):
        return self.legs * 2
`
	res, err := Source([]byte(src), model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}

	want := `class Dog:
    def __init__(self):
        self.legs = 4

    @csort_group(group="movement")
    def walk(self):
        return self.legs

    @csort_group(group="movement")
    def run(self):
        return self.legs * 2

    def speak(self):
        return self.sound
`
	if got := string(res.Output); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestSourceAutoStatic(t *testing.T) {
	t.Parallel()

	src := `class Calc:
    def __init__(self):
        self.total = 0

    def add(self, a, b):
        return a + b
`
	policy := model.DefaultPolicy()
	policy.AutoConvertStatic = true

	res, err := Source([]byte(src), policy)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if res.Converted != 1 {
		t.Fatalf("converted = %d, want 1", res.Converted)
	}

	// add becomes a static method, which sorts ahead of nothing here but
	// gains the decorator and loses self.
	want := `class Calc:
    def __init__(self):
        self.total = 0

    @staticmethod
    def add(a, b):
        return a + b
`
	if got := string(res.Output); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestSourceNestedClasses(t *testing.T) {
	t.Parallel()

	src := `class Outer:
    def method(self):
        pass

    class Inner:
        def walk(self):
            pass

        def __init__(self):
            pass
`
	res, err := Source([]byte(src), model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if res.ClassCount != 2 {
		t.Errorf("class count = %d, want 2", res.ClassCount)
	}
	if len(res.Classes) != 2 || res.Classes[1].Class != "Outer.Inner" {
		t.Fatalf("class diffs = %+v", res.Classes)
	}
	if len(res.Classes[1].Changes) == 0 {
		t.Error("inner class should report moves")
	}

	want := `class Outer:
    def method(self):
        pass

    class Inner:
        def __init__(self):
            pass

        def walk(self):
            pass
`
	if got := string(res.Output); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestSourceNoClasses(t *testing.T) {
	t.Parallel()

	src := "def top():\n    pass\n"
	res, err := Source([]byte(src), model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if res.Changed || res.ClassCount != 0 {
		t.Errorf("result = %+v, want untouched", res)
	}
	if string(res.Output) != src {
		t.Errorf("output differs from input")
	}
}
