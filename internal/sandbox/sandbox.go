// Package sandbox confines file operations to a target directory.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath checks if targetPath is safely within root.
// It resolves symlinks, normalizes paths, and verifies containment.
// Returns the resolved absolute path or an error.
func ValidatePath(root, targetPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, targetPath))

	// The path may not exist yet, so resolve as much as we can.
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator so "root2" is not accepted for "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside '%s'", targetPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(resolvedDir, base), nil
}

// ValidateName checks that name is a plain file name: not empty, not "." or
// "..", and free of path separators. Upstream file names are untrusted.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid file name '%s'", name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("file name '%s' contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("file name '%s' contains a NUL byte", name)
	}
	return nil
}

// SafeWriteStream creates the file name directly inside root with the bytes
// produced by write. Content goes to a temp file in root first and is renamed
// into place only when write succeeds, so a failed download never leaves a
// truncated file under the final name. Returns the written path.
func SafeWriteStream(root, name string, perm os.FileMode, write func(io.Writer) error) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	resolved, err := ValidatePath(root, name)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(resolved)

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".ghmirror-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return "", fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, resolved); err != nil {
		return "", fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return resolved, nil
}

// SafeWrite atomically writes content to name directly inside root.
func SafeWrite(root, name string, content []byte, perm os.FileMode) error {
	_, err := SafeWriteStream(root, name, perm, func(w io.Writer) error {
		if _, err := w.Write(content); err != nil {
			return fmt.Errorf("writing temp file: %w", err)
		}
		return nil
	})
	return err
}

// ResetDir removes every direct child of root except the names in keep.
// Directories are removed recursively and symlinks are removed without being
// followed. Every child is attempted; the returned error joins all failures.
func ResetDir(root string, keep ...string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var removed []string
	var errs []error
	for _, e := range entries {
		if kept[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", e.Name(), err))
			continue
		}
		removed = append(removed, e.Name())
	}

	return removed, errors.Join(errs...)
}
