package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileUnderRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("hello"), 0o644))

	r, err := NewRoot(dir)
	require.NoError(t, err)
	b, err := r.ReadFile(filepath.Join("sub", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestReadFileRejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0o644))
	dir := filepath.Join(parent, "root")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	r, err := NewRoot(dir)
	require.NoError(t, err)
	for _, name := range []string{"../secret.txt", filepath.Join(parent, "secret.txt")} {
		_, err := r.ReadFile(name)
		assert.ErrorIs(t, err, ErrEscape, name)
	}
}

func TestReadFileRejectsSymlinkEscape(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	dir := filepath.Join(parent, "root")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if err := os.Symlink(target, filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	r, err := NewRoot(dir)
	require.NoError(t, err)
	_, err = r.ReadFile("link.txt")
	assert.ErrorIs(t, err, ErrEscape)
}

func TestMissingRootIsNotExist(t *testing.T) {
	r, err := NewRoot(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	_, err = r.ReadFile("a.txt")
	assert.True(t, IsNotExist(err))

	_, err = NewRoot("  ")
	assert.Error(t, err)
}
