package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomically(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")

	if err := WriteAtomically(dest, strings.NewReader("first")); err != nil {
		t.Fatalf("WriteAtomically() error: %v", err)
	}
	if err := WriteAtomically(dest, strings.NewReader("second")); err != nil {
		t.Fatalf("WriteAtomically() error: %v", err)
	}

	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "second" {
		t.Errorf("contents = %q, want second", b)
	}

	fi, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", fi.Mode().Perm())
	}
}

func TestWriteAtomically_MissingDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nope", "out.json")
	if err := WriteAtomically(dest, strings.NewReader("x")); err == nil {
		t.Error("WriteAtomically() into a missing directory should fail")
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buzzerd.log")

	if Exists(path) {
		t.Fatal("Exists() before first Append")
	}
	for _, l := range []string{"a\n", "b\n"} {
		if err := Append(path, []byte(l)); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	if !Exists(path) {
		t.Fatal("Exists() = false after Append")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a\nb\n" {
		t.Errorf("contents = %q", b)
	}
}
