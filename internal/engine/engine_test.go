package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	probeerrors "github.com/nikita2206/probe/internal/errors"
)

func newTestRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir()) // isolate ~/.probe/config.yaml lookups
	return dir
}

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const sampleGo = `package sample

func searchUsers(id string) string {
	return id
}
`

func TestOpenOrCreate_StartsClean(t *testing.T) {
	root := newTestRoot(t)
	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	assert.False(t, e.dirty)
	assert.Equal(t, 0, e.search.ChunkCount())
}

func TestUpdate_IndexesAddedFiles(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)

	result, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Greater(t, e.search.ChunkCount(), 0)
}

func TestUpdate_UnchangingTreeIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)

	_, err = e.Update(context.Background())
	require.NoError(t, err)
	chunkCountAfterFirst := e.search.ChunkCount()

	result, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 0, result.Modified)
	assert.Equal(t, 0, result.Deleted)
	assert.Equal(t, chunkCountAfterFirst, e.search.ChunkCount())
}

func TestUpdate_DeletedFileLeavesNoQueryableChunks(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)
	writeFile(t, root, "other.go", "package sample\nfunc unrelated() {}\n")

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "sample.go")))
	result, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)

	hits, err := e.Search(context.Background(), "searchUsers", SearchOptions{DisableRerank: true})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpdate_ModifiedFileReplacesChunkSet(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "sample.go", "package sample\n\nfunc renamedFunction() string {\n\treturn \"\"\n}\n")
	result, err := e.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Modified)

	oldHits, err := e.Search(context.Background(), "chunk_name:searchUsers", SearchOptions{DisableRerank: true})
	require.NoError(t, err)
	assert.Empty(t, oldHits)

	newHits, err := e.Search(context.Background(), "chunk_name:renamedFunction", SearchOptions{DisableRerank: true})
	require.NoError(t, err)
	assert.NotEmpty(t, newHits)
}

func TestSearch_FailsWithSchemaStaleWhileDirty(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	e.dirty = true
	_, err = e.Search(context.Background(), "searchUsers", SearchOptions{})
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindSchemaStale))
}

func TestSchemaBump_StemmingChangeTriggersRebuildOnNextUpdate(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)
	writeFile(t, root, "probe.yml", "stemming:\n  enabled: true\n  language: english\n")

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "probe.yml", "stemming:\n  enabled: false\n")
	e2, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	assert.True(t, e2.dirty)

	result, err := e2.Update(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Rebuilt)

	hits, err := e2.Search(context.Background(), "searchUsers", SearchOptions{DisableRerank: true})
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestStats_ReportsChunkAndFileCounts(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Greater(t, stats.ChunkCount, 0)
	assert.Equal(t, 1, stats.FileCount)
	assert.Greater(t, stats.IndexSizeBytes, int64(0))
}

func TestShowChunks_ReturnsChunksWithoutTouchingIndex(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", sampleGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)

	chunks, err := e.ShowChunks("sample.go")
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
	assert.Equal(t, 0, e.search.ChunkCount())
}
