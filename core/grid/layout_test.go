package grid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeLayout(t *testing.T) {
	data := "rows:\n  - \"###\"\n  - \"# #\"\n  - \"###\"\n"
	rows, err := DecodeLayout(strings.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 || rows[1] != "# #" {
		t.Fatalf("bad rows %#v", rows)
	}
}

func TestDecodeLayoutEmpty(t *testing.T) {
	if _, err := DecodeLayout(strings.NewReader("rows: []\n")); err == nil {
		t.Fatalf("expected error for empty layout")
	}
}

func TestLoadLayoutFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(path, []byte("rows:\n  - \"#C#\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 || rows[0] != "#C#" {
		t.Fatalf("bad rows %#v", rows)
	}
}
