package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturePath returns the absolute path of a file under the repository's
// top-level testdata directory.
func FixturePath(t testing.TB, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("testutil: cannot locate source file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", name)
}

// Fixture reads a file under the repository's top-level testdata directory.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(t, name))
	if err != nil {
		t.Fatalf("testutil: %v", err)
	}
	return data
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("testutil: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("testutil: %v", err)
	}
	return path
}
