package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita2206/probe/internal/types"
)

// stubProcessor lets tests exercise CodeChunker's dispatch and chunk-id
// assignment without a real tree-sitter grammar.
type stubProcessor struct {
	ext    string
	chunks []ExtractedChunk
}

func (s *stubProcessor) CanProcess(ext string) bool { return ext == s.ext }
func (s *stubProcessor) Chunk(source []byte, relPath string) ([]ExtractedChunk, error) {
	return s.chunks, nil
}

func TestChunk_DispatchesToClaimingProcessor(t *testing.T) {
	stub := &stubProcessor{ext: ".go", chunks: []ExtractedChunk{
		{ChunkType: types.ChunkTypeFunction, ChunkName: "DoThing", Declaration: "func DoThing()", Body: "{}", StartLine: 1, EndLine: 3},
	}}
	c := New(stub)

	chunks, err := c.Chunk([]byte("package main\nfunc DoThing() {}\n"), "pkg/thing.go")
	require.NoError(t, err)
	// one from the stub processor, plus the always-emitted whole-file chunk
	require.Len(t, chunks, 2)

	assert.Equal(t, types.ChunkTypeFunction, chunks[0].ChunkType)
	assert.Equal(t, "DoThing", chunks[0].ChunkName)
	assert.Equal(t, types.FileTypeGo, chunks[0].FileType)
	assert.Equal(t, "pkg/thing.go", chunks[0].Path)
	assert.NotEmpty(t, chunks[0].ChunkID)

	assert.Equal(t, types.ChunkTypeFile, chunks[1].ChunkType)
	assert.Contains(t, chunks[1].Body, "package main")
}

func TestChunk_FallsBackToGenericWhenUnclaimed(t *testing.T) {
	c := New() // no processors registered
	lines := make([]string, 300)
	for i := range lines {
		lines[i] = "line"
	}
	source := []byte(joinLines(lines))

	chunks, err := c.Chunk(source, "notes.txt")
	require.NoError(t, err)
	// 300 lines at 120-line windows with 10-line overlap: windows start at
	// 0, 110, 220 -> 3 windows, plus the whole-file chunk.
	require.Len(t, chunks, 4)
	for _, ch := range chunks[:3] {
		assert.Equal(t, types.ChunkTypeBlock, ch.ChunkType)
		assert.Empty(t, ch.ChunkName)
		assert.Equal(t, types.FileTypeGeneric, ch.FileType)
	}
	assert.Equal(t, types.ChunkTypeFile, chunks[3].ChunkType)
}

func TestChunk_AlwaysProducesAtLeastOneChunk(t *testing.T) {
	c := New()
	chunks, err := c.Chunk([]byte(""), "empty.txt")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 1)
}

func TestChunk_NormalizesLineEndings(t *testing.T) {
	c := New()
	chunks, err := c.Chunk([]byte("a\r\nb\r\nc"), "crlf.txt")
	require.NoError(t, err)
	last := chunks[len(chunks)-1]
	assert.Equal(t, "a\nb\nc", last.Body)
}

func TestDeriveChunkID_StableAndDistinctByOrdinal(t *testing.T) {
	id1 := deriveChunkID("a/b.go", 0, types.ChunkTypeFunction)
	id2 := deriveChunkID("a/b.go", 0, types.ChunkTypeFunction)
	id3 := deriveChunkID("a/b.go", 1, types.ChunkTypeFunction)

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
