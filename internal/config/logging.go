package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SetupLogFile opens a fresh timestamped log file under dir and prunes
// the directory down to maxFiles. The caller owns the returned handle.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("docforge-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// Pruning failure is not fatal; logging still works.
	if err := pruneOldLogs(dir, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}
	return f, nil
}

// pruneOldLogs keeps the maxFiles most recent log files. The timestamp
// filename format makes lexical order chronological.
func pruneOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "docforge-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)
	for _, stale := range files[:len(files)-maxFiles] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("remove %s: %w", stale, err)
		}
	}
	return nil
}
