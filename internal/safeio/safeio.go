// Package safeio reads files confined to a single directory tree.
package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrEscape is returned when a name resolves outside the root.
var ErrEscape = errors.New("safeio: path escapes root")

// Root confines reads to one directory. The directory does not need to exist
// when the Root is built; reads against a missing root report fs.ErrNotExist.
type Root struct {
	dir string
}

func NewRoot(dir string) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Root{dir: abs}, nil
}

// Dir returns the absolute root as given, before symlink resolution.
func (r *Root) Dir() string { return r.dir }

// ReadFile reads name, a path relative to the root. Names that climb out of
// the root, directly or through a symlink, fail with ErrEscape.
func (r *Root) ReadFile(name string) ([]byte, error) {
	p, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("safeio: %s is a directory", name)
	}
	return os.ReadFile(p)
}

func (r *Root) resolve(name string) (string, error) {
	if name == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s is absolute", ErrEscape, name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscape, name)
	}

	root, err := filepath.EvalSymlinks(r.dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(filepath.Join(root, clean))
	if err != nil {
		return "", err
	}
	if !within(resolved, root) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrEscape, name, resolved)
	}
	return resolved, nil
}

func within(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}

// IsNotExist reports whether err means the file or the root is absent.
func IsNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
