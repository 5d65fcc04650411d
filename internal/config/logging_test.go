package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEmptyFile(path string) error {
	return os.WriteFile(path, nil, 0644)
}

func TestSetupLogFileCreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()

	f, err := SetupLogFile(dir, 5)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	name := filepath.Base(f.Name())
	if !strings.HasPrefix(name, "docforge-") || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected log file name %q", name)
	}
	if _, err := f.WriteString("hello\n"); err != nil {
		t.Errorf("write to log file: %v", err)
	}
}

func TestSetupLogFilePrunesOldLogs(t *testing.T) {
	dir := t.TempDir()

	// Lexically ordered names stand in for earlier runs.
	for _, stale := range []string{
		"docforge-2006-01-01T00-00-00.log",
		"docforge-2006-01-02T00-00-00.log",
		"docforge-2006-01-03T00-00-00.log",
	} {
		if err := writeEmptyFile(filepath.Join(dir, stale)); err != nil {
			t.Fatalf("seed stale log: %v", err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	remaining, err := filepath.Glob(filepath.Join(dir, "docforge-*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 log files after pruning, got %d: %v", len(remaining), remaining)
	}
	for _, kept := range remaining {
		if strings.Contains(kept, "2006-01-01") || strings.Contains(kept, "2006-01-02") {
			t.Errorf("stale log %s survived pruning", kept)
		}
	}
}
