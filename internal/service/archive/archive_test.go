package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inbox.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	for name, body := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestExtract(t *testing.T) {
	t.Parallel()

	path := writeZip(t, map[string]string{
		"Остатки.xlsx":    "stock",
		"Прайс-лист.xlsx": "price",
	})

	dest := t.TempDir()
	files, err := NewExtractor().Extract(path, dest)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("extracted file missing: %v", err)
		}
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	t.Parallel()

	path := writeZip(t, map[string]string{"../evil.txt": "boom"})

	_, err := NewExtractor().Extract(path, t.TempDir())
	if err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
}
