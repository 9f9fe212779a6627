package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/kpiscope/internal/utils"
)

func TestEnsureDirSingleLevel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "img")
	if err := utils.EnsureDir(dir); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
	// existing dir is fine
	if err := utils.EnsureDir(dir); err != nil {
		t.Fatalf("ensure existing: %v", err)
	}
	// nested creation is not recursive
	if err := utils.EnsureDir(filepath.Join(root, "a", "b")); err == nil {
		t.Fatalf("expected error for missing parent")
	}
}

func TestSafeWriteFileLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "chart.png")
	if err := utils.SafeWriteFile(p, []byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "chart.png" {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"":                    "unnamed",
		"1_Monday":            "1_Monday",
		"2024/01/02 10:00:00": "2024-01-02 10:00:00",
	}
	for in, want := range cases {
		if got := utils.SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}
