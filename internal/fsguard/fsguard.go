// Package fsguard makes sure report directories exist and are writable
// before any report lands in them.
package fsguard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EnsureSafeDirectory creates path (and missing ancestors), writes a
// probe file inside it, removes the probe, and returns true only when
// every step succeeded. A false return means no write should be
// attempted under the directory.
//
// Two concurrent probes against the same directory are a benign race:
// the uuid probe names keep them from touching the same file, and
// output directories are low-contention by assumption.
func EnsureSafeDirectory(path string) bool {
	if path == "" {
		return false
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(path, ".probe-"+uuid.NewString())
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return false
	}
	return os.Remove(probe) == nil
}

// WriteReport writes content as UTF-8 text to dir/name.md after the
// directory passes the write probe. It returns the full path of the
// written file.
func WriteReport(dir, name, content string) (string, error) {
	if !EnsureSafeDirectory(dir) {
		return "", fmt.Errorf("output directory %s is not writable", dir)
	}
	path := filepath.Join(dir, name+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}
