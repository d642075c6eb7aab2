package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SymlinkError reports a link found on the way to a destination path.
type SymlinkError struct {
	Path    string
	At      string
	Reparse bool
}

func (e *SymlinkError) Error() string {
	kind := "symlink"
	if e.Reparse {
		kind = "reparse point"
	}
	return fmt.Sprintf("refusing to write to symlink path: %s (%s detected at %s)", e.Path, kind, e.At)
}

// RejectSymlinkPath returns a *SymlinkError when path, or any existing
// directory above it, is a symbolic link or a Windows reparse point.
// Components that do not exist yet are skipped.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	current := abs
	for {
		link, reparse, err := isLink(current)
		if err != nil {
			return err
		}
		if link {
			return &SymlinkError{Path: path, At: current, Reparse: reparse}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil
		}
		current = parent
	}
}

func isLink(path string) (link, reparse bool, err error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to access path: %w", err)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return true, false, nil
	}
	rp, err := isReparsePoint(path)
	if err != nil {
		return false, false, fmt.Errorf("failed to check reparse point: %w", err)
	}
	return rp, rp, nil
}

// numberedCandidates is how many name_N suffixes SafePath tries before
// falling back to a UUID.
const numberedCandidates = 9

// SafePath returns path unchanged when nothing exists there. Otherwise it
// returns the first free name_1 .. name_9 variant (keeping the extension),
// then a name_<uuid> variant; changed reports whether a variant was chosen.
// A dangling symlink counts as taken.
func SafePath(path string) (string, bool, error) {
	if path == "" {
		return "", false, errors.New("path is empty")
	}
	free, err := isFree(path)
	if err != nil {
		return "", false, err
	}
	if free {
		return path, false, nil
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= numberedCandidates; i++ {
		candidate := base + "_" + strconv.Itoa(i) + ext
		free, err := isFree(candidate)
		if err != nil {
			return "", false, err
		}
		if free {
			return candidate, true, nil
		}
	}
	return base + "_" + uniqueSuffix() + ext, true, nil
}

func isFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
}

func uniqueSuffix() string {
	if u, err := uuid.NewV7(); err == nil {
		return u.String()
	}
	return uuid.NewString()[:8]
}
