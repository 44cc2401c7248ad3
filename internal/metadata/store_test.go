package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/types"
)

func TestLoad_AbsentReturnsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "metadata.bin"), 42)
	require.NoError(t, err)
	_, ok := s.Record("a.go")
	require.False(t, ok)
	require.Equal(t, uint64(42), s.TokenizerDigest)
}

func TestLoad_CorruptFileReportsIndexCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a metadata file"), 0o644))

	_, err := Load(path, 0)
	require.Error(t, err)
	require.True(t, probeerrors.IsKind(err, probeerrors.KindIndexCorrupt))
}

func TestCommitThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")

	s, err := Load(path, 7)
	require.NoError(t, err)

	rec := types.FileRecord{
		Path:        "pkg/main.go",
		Fingerprint: types.Fingerprint{Size: 100, ModTimeNano: 123456789},
		ChunkIDs:    []string{"aaaa1111", "bbbb2222"},
	}
	require.NoError(t, s.Commit(map[string]types.FileRecord{rec.Path: rec}))

	reloaded, err := Load(path, 7)
	require.NoError(t, err)
	got, ok := reloaded.Record("pkg/main.go")
	require.True(t, ok)
	require.Equal(t, rec, got)
	require.Equal(t, uint64(7), reloaded.TokenizerDigest)
}

func TestSchemaStale_DetectsDigestMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")
	s, err := Load(path, 7)
	require.NoError(t, err)
	require.NoError(t, s.Commit(map[string]types.FileRecord{}))

	reloaded, err := Load(path, 7)
	require.NoError(t, err)
	require.False(t, reloaded.SchemaStale(7))
	require.True(t, reloaded.SchemaStale(8))
}

func TestDiff_ClassifiesAddedModifiedDeletedUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.bin")
	s, err := Load(path, 0)
	require.NoError(t, err)

	require.NoError(t, s.Commit(map[string]types.FileRecord{
		"unchanged.go": {Path: "unchanged.go", Fingerprint: types.Fingerprint{Size: 10, ModTimeNano: 1}},
		"modified.go":  {Path: "modified.go", Fingerprint: types.Fingerprint{Size: 10, ModTimeNano: 1}},
		"deleted.go":   {Path: "deleted.go", Fingerprint: types.Fingerprint{Size: 10, ModTimeNano: 1}},
	}))

	scanned := []types.ScanResult{
		{RelativePath: "unchanged.go", Size: 10, ModTimeNano: 1},
		{RelativePath: "modified.go", Size: 20, ModTimeNano: 2},
		{RelativePath: "new.go", Size: 5, ModTimeNano: 1},
	}

	diff := s.Diff(scanned)
	require.Len(t, diff.Added, 1)
	require.Equal(t, "new.go", diff.Added[0].RelativePath)
	require.Len(t, diff.Modified, 1)
	require.Equal(t, "modified.go", diff.Modified[0].RelativePath)
	require.Len(t, diff.Unchanged, 1)
	require.Equal(t, "unchanged.go", diff.Unchanged[0].RelativePath)
	require.Equal(t, []string{"deleted.go"}, diff.Deleted)
}

func TestCommit_CreatesIndexDirectoryIfAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".probe", "metadata.bin")
	s, err := Load(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Commit(map[string]types.FileRecord{}))

	_, err = os.Stat(path)
	require.NoError(t, err)
}
