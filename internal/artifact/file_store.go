package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// beforeCommit runs after the temp file is synced and before it is moved
// into place. Tests use it to simulate a crash mid-write.
var beforeCommit func(tmpPath string) error

// FileStore keeps artifacts as files directly under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	return &FileStore{Dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) Location() string { return s.Dir }

func (s *FileStore) pathFor(name string) (string, error) {
	name, err := checkName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

func (s *FileStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.pathFor(name)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Put writes content to a temp file in Dir, fsyncs it and then links it
// onto the final name. Readers never observe a partial file, and an
// existing artifact is never replaced.
func (s *FileStore) Put(ctx context.Context, name string, content []byte) error {
	p, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if ok, err := s.Exists(ctx, name); err != nil {
		return err
	} else if ok {
		return ErrExists
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil
	if beforeCommit != nil {
		if err := beforeCommit(tmpPath); err != nil {
			return err
		}
	}
	return commit(tmpPath, p)
}

// commit moves tmp onto final without replacing an existing file. A hard
// link fails atomically on EEXIST; filesystems without link support fall
// back to rename after a fresh existence check.
func commit(tmp, final string) error {
	err := os.Link(tmp, final)
	if err == nil {
		syncDir(filepath.Dir(final))
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return ErrExists
	}
	if _, statErr := os.Lstat(final); statErr == nil {
		return ErrExists
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	syncDir(filepath.Dir(final))
	return nil
}

func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}

func (s *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, ".json") {
			continue
		}
		names = append(names, n)
	}
	return names, nil
}
