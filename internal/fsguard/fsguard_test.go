package fsguard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureSafeDirectory_CreatesMissingAncestors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if !EnsureSafeDirectory(dir) {
		t.Fatal("EnsureSafeDirectory = false, want true")
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat created dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("created path is not a directory")
	}
}

func TestEnsureSafeDirectory_LeavesNoProbeBehind(t *testing.T) {
	dir := t.TempDir()

	if !EnsureSafeDirectory(dir) {
		t.Fatal("EnsureSafeDirectory = false, want true")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".probe-") {
			t.Errorf("probe file %s was not removed", e.Name())
		}
	}
}

func TestEnsureSafeDirectory_PathIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if EnsureSafeDirectory(file) {
		t.Error("EnsureSafeDirectory on a regular file = true, want false")
	}
}

func TestEnsureSafeDirectory_EmptyPath(t *testing.T) {
	if EnsureSafeDirectory("") {
		t.Error("EnsureSafeDirectory(\"\") = true, want false")
	}
}

func TestWriteReport_WritesMarkdownFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := WriteReport(dir, "commit-analysis-abc1234", "# Report\n\ncontent")
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Base(path) != "commit-analysis-abc1234.md" {
		t.Errorf("report path = %s, want .md suffix with given name", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if string(data) != "# Report\n\ncontent" {
		t.Errorf("report content = %q", data)
	}
}

func TestWriteReport_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := WriteReport(file, "report", "content"); err == nil {
		t.Error("WriteReport into a file path should fail")
	}
}
