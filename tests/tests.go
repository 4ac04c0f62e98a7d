package tests

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
)

var Faker = gofakeit.New(rand.Uint64())

// TemplateDir creates a temporary directory containing files and returns its path.
// Names ending in a slash become (empty) sub-directories, everything else is written as a file.
// The directory is removed when the test finishes.
func TemplateDir(tb testing.TB, files map[string]string) string {
	tb.Helper()
	dir := tb.TempDir()
	for name, content := range files {
		WriteFile(tb, dir, name, content)
	}
	return dir
}

// WriteFile creates or replaces a single file (or directory, see TemplateDir) inside dir.
func WriteFile(tb testing.TB, dir string, name string, content string) {
	tb.Helper()
	path := filepath.Join(dir, name)
	if strings.HasSuffix(name, "/") {
		if err := os.MkdirAll(path, 0o755); err != nil {
			tb.Fatalf("cannot create directory %q: %v", name, err)
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("cannot create parent directory for %q: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec
		tb.Fatalf("cannot write %q: %v", name, err)
	}
}

// Pikachu returns the JSON document used throughout the creature tests.
func Pikachu() string {
	return `{"name":"pikachu","id":25,"height":4,"weight":60,"game_indices":[{"version":{"name":"red"}}]}`
}
