package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/types"
)

func TestAcquireWriter_SecondAcquireFailsWithWriterBusy(t *testing.T) {
	dir := t.TempDir()
	indexDir := filepath.Join(dir, "index")
	engine := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}

	w1, err := AcquireWriter(indexDir, engine, stemmer)
	require.NoError(t, err)
	defer w1.Close()

	_, err = AcquireWriter(indexDir, engine, stemmer)
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindWriterBusy))
}

func TestAcquireWriter_LockReleasedAfterClose(t *testing.T) {
	dir := t.TempDir()
	indexDir := filepath.Join(dir, "index")
	engine := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}

	w1, err := AcquireWriter(indexDir, engine, stemmer)
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := AcquireWriter(indexDir, engine, stemmer)
	require.NoError(t, err)
	require.NoError(t, w2.Close())
}

func TestWriter_AutoCommitsAtChunkThreshold(t *testing.T) {
	dir := t.TempDir()
	indexDir := filepath.Join(dir, "index")
	engine := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}

	w, err := AcquireWriter(indexDir, engine, stemmer)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < batchChunkThreshold; i++ {
		require.NoError(t, w.AddChunk(types.Chunk{ChunkID: string(rune('a' + i%26)) + "_" + string(rune(i)), Path: "a.go", ChunkType: types.ChunkTypeBlock}))
	}

	onDisk, err := loadChunks(indexDir)
	require.NoError(t, err)
	assert.NotEmpty(t, onDisk, "expected an auto-commit once the chunk threshold was crossed")
}

func TestWriter_CommitFlushesPartialBatch(t *testing.T) {
	dir := t.TempDir()
	indexDir := filepath.Join(dir, "index")
	engine := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}

	w, err := AcquireWriter(indexDir, engine, stemmer)
	require.NoError(t, err)
	require.NoError(t, w.AddChunk(types.Chunk{ChunkID: "c1", Path: "a.go", ChunkType: types.ChunkTypeBlock}))
	require.NoError(t, w.Commit())
	require.NoError(t, w.Close())

	onDisk, err := loadChunks(indexDir)
	require.NoError(t, err)
	require.Len(t, onDisk, 1)
}
