package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFileStore(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)
	return map[string]Store{
		"file":   fsStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoreCreateOnly(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.Exists(ctx, "free-form_elections.json")
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = s.Get(ctx, "free-form_elections.json")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "free-form_elections.json", []byte(`{"1":{}}`)))
			err = s.Put(ctx, "free-form_elections.json", []byte(`overwrite`))
			require.ErrorIs(t, err, ErrExists)

			got, err := s.Get(ctx, "free-form_elections.json")
			require.NoError(t, err)
			assert.Equal(t, `{"1":{}}`, string(got))

			ok, err = s.Exists(ctx, "free-form_elections.json")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStoreListSorted(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"free-form_littering.json", "1-shot-free-form_elections.json", "criteria-based_elections.json"} {
				require.NoError(t, s.Put(ctx, n, []byte("{}")))
			}
			require.NoError(t, s.Put(ctx, "notes.txt", []byte("x")))

			names, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{
				"1-shot-free-form_elections.json",
				"criteria-based_elections.json",
				"free-form_littering.json",
			}, names)
		})
	}
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "..", "../x.json", `a\b.json`, ".hidden.json"} {
				assert.Error(t, s.Put(ctx, bad, []byte("{}")), bad)
			}
		})
	}
}

func TestFileStoreCrashBeforeCommitLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	crash := errors.New("simulated crash")
	var seenTmp string
	beforeCommit = func(tmp string) error {
		seenTmp = tmp
		b, err := os.ReadFile(tmp)
		require.NoError(t, err)
		assert.Equal(t, "full content", string(b))
		return crash
	}
	t.Cleanup(func() { beforeCommit = nil })

	err = s.Put(context.Background(), "free-form_elections.json", []byte("full content"))
	require.ErrorIs(t, err, crash)

	_, statErr := os.Stat(filepath.Join(dir, "free-form_elections.json"))
	assert.True(t, os.IsNotExist(statErr), "final path must be absent")
	_, statErr = os.Stat(seenTmp)
	assert.True(t, os.IsNotExist(statErr), "temp file must be cleaned up")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A later run writes the artifact normally.
	beforeCommit = nil
	require.NoError(t, s.Put(context.Background(), "free-form_elections.json", []byte("full content")))
}

func TestFileStoreListIgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".free-form_elections.json.tmp-123"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "criteria-based_littering.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "prompt"), 0o755))

	names, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"criteria-based_littering.json"}, names)
}

func TestFileStoreListMissingDir(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	names, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStoreRefusesExistingFileWrittenElsewhere(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	final := filepath.Join(dir, "free-form_elections.json")
	require.NoError(t, os.WriteFile(final, []byte("original"), 0o644))

	require.ErrorIs(t, s.Put(context.Background(), "free-form_elections.json", []byte("new")), ErrExists)
	b, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "original", string(b))
}

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("ARTIFACT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ARTIFACT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewPostgresStore(db, "test-"+filepath.Base(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "free-form_elections.json", []byte("{}")))
	require.ErrorIs(t, s.Put(ctx, "free-form_elections.json", []byte("x")), ErrExists)
	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"free-form_elections.json"}, names)
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(minio.ErrorResponse{StatusCode: http.StatusPreconditionFailed}))
	assert.True(t, isPreconditionFailed(minio.ErrorResponse{Code: "PreconditionFailed"}))
	assert.False(t, isPreconditionFailed(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(errors.New("dial tcp: refused")))
	assert.False(t, isPreconditionFailed(nil))
}

func TestS3StoreConcurrentPutsIntegration(t *testing.T) {
	endpoint := os.Getenv("ARTIFACT_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("ARTIFACT_TEST_S3_ENDPOINT not set")
	}
	s, err := NewS3Store(S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("ARTIFACT_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("ARTIFACT_TEST_S3_SECRET_KEY"),
		Bucket:    "perspectives-test",
		Prefix:    "race-" + filepath.Base(t.TempDir()),
	})
	require.NoError(t, err)

	ctx := context.Background()
	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Put(ctx, "free-form_elections.json", []byte(fmt.Sprintf(`{"writer":%d}`, i)))
		}()
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrExists)
	}
	assert.Equal(t, 1, won)
}
