// ABOUTME: Tests for the plain-text document loader
// ABOUTME: Covers extension filtering, recursion, and source ID derivation
package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "notes", "b.md"), "bravo")
	writeFile(t, filepath.Join(dir, "image.png"), "binary junk")
	writeFile(t, filepath.Join(dir, "data.json"), "{}")

	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("LoadDir() = %d docs, want 2 (non-text files skipped)", len(docs))
	}

	byID := make(map[string]string)
	for _, doc := range docs {
		byID[doc.SourceID] = doc.Text
	}
	if byID["a.txt"] != "alpha" {
		t.Errorf("a.txt = %q", byID["a.txt"])
	}
	if byID["notes/b.md"] != "bravo" {
		t.Errorf("notes/b.md = %q, want relative slash path as source ID", byID["notes/b.md"])
	}
}

func TestLoadPath_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "content here")

	docs, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("LoadPath() = %d docs, want 1", len(docs))
	}
	if docs[0].Text != "content here" {
		t.Errorf("Text = %q", docs[0].Text)
	}
}

func TestLoadPath_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	docs, err := LoadPath(dir)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("LoadPath() = %d docs, want 1", len(docs))
	}
}

func TestLoadPath_Missing(t *testing.T) {
	if _, err := LoadPath(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("LoadPath() on missing path succeeded, want error")
	}
}

func TestLoadDir_CaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "UPPER.TXT"), "loud")

	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("LoadDir() = %d docs, want .TXT accepted", len(docs))
	}
}
