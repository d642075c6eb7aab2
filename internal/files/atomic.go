package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oukeidos/percept/internal/logger"
)

const tempPattern = "percept-*.tmp"

// AtomicWrite replaces path with data through a synced temp file in the same
// directory, so readers see either the old or the new content. Symlinked
// destinations are rejected.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := RejectSymlinkPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmpPath, err := writeTemp(dir, data, perm)
	if err != nil {
		return err
	}
	if err := renameAtomic(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file to destination: %w", err)
	}
	if err := syncDir(dir); err != nil {
		logger.Warn("Directory fsync failed", "path", dir, "error", err)
	}
	return nil
}

// writeTemp creates, fills and syncs a temp file in dir and returns its
// path. Nothing is left behind on error.
func writeTemp(dir string, data []byte, perm os.FileMode) (path string, err error) {
	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(perm); err != nil {
		return "", fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err = f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}

// OpenLogFile opens path for appending JSON log lines, creating it readable
// by the owner only. Symlinked paths are rejected.
func OpenLogFile(path string) (*os.File, error) {
	if err := RejectSymlinkPath(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
