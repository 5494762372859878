// Package pathguard authorizes database file paths against an
// operator-configured allow-list of absolute files and directories.
// The allow-list is resolved once at startup and immutable afterwards,
// so a Guard is safe for unsynchronized concurrent use.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath indicates the input is not absolute or could not
	// be resolved to a canonical path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotFound indicates the resolved path is not an existing regular file.
	ErrNotFound = errors.New("file not found")

	// ErrAccessDenied indicates the resolved path is outside the allow-list.
	ErrAccessDenied = errors.New("path not allowed")
)

// Guard holds the resolved allow-list.
type Guard struct {
	files []string
	dirs  []string
}

// New builds a Guard from the startup allow-list. Every entry must be an
// absolute path to an existing directory or regular file; anything else
// (relative paths, missing paths, devices, sockets) is a startup error.
// Symlinks and relative segments are resolved so later containment checks
// compare canonical paths.
func New(paths []string) (*Guard, error) {
	g := &Guard{}
	for _, raw := range paths {
		if !filepath.IsAbs(raw) {
			return nil, fmt.Errorf("allowed path must be absolute: %q", raw)
		}
		resolved, err := filepath.EvalSymlinks(filepath.Clean(raw))
		if err != nil {
			return nil, fmt.Errorf("allowed path cannot be resolved: %q: %w", raw, err)
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("allowed path does not exist: %q: %w", raw, err)
		}
		switch {
		case info.IsDir():
			g.dirs = append(g.dirs, resolved)
		case info.Mode().IsRegular():
			g.files = append(g.files, resolved)
		default:
			return nil, fmt.Errorf("allowed path is neither a directory nor a regular file: %q", raw)
		}
	}
	return g, nil
}

// Authorize resolves raw to a canonical absolute path and checks it against
// the allow-list. The path is authorized when it equals an allowed file
// exactly, or is contained inside an allowed directory. Containment is a
// path-segment check: /data/db2 does not match an allowed /data/db.
// Pure predicate — no side effects beyond stat calls.
func (g *Guard) Authorize(raw string) (string, error) {
	if !filepath.IsAbs(raw) {
		return "", fmt.Errorf("%w: path must be absolute: %q", ErrInvalidPath, raw)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Clean(raw))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, raw)
		}
		return "", fmt.Errorf("%w: cannot resolve %q: %v", ErrInvalidPath, raw, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, raw)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: not a regular file: %s", ErrNotFound, resolved)
	}

	for _, f := range g.files {
		if resolved == f {
			return resolved, nil
		}
	}
	for _, d := range g.dirs {
		if strings.HasPrefix(resolved, d+string(filepath.Separator)) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrAccessDenied, resolved)
}
