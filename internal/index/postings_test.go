package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita2206/probe/internal/types"
)

func chunk(id, path, name, decl, body string, ct types.ChunkType) types.Chunk {
	return types.Chunk{
		ChunkID: id, Path: path, FileType: types.FileTypeGo, ChunkType: ct,
		ChunkName: name, Declaration: decl, Body: body, StartLine: 1, EndLine: 10,
	}
}

func TestPostingsEngine_AddAndLookup(t *testing.T) {
	pe := NewPostingsEngine()
	stemmer := Stemmer{Enabled: true, Language: "english"}
	pe.AddChunk(chunk("c1", "pkg/scanner.go", "ScanDirectory", "func ScanDirectory(root string)", "walk the tree", types.ChunkTypeFunction), stemmer)

	require.Equal(t, 1, pe.ChunkCount())
	postings := pe.CandidatesForToken(FieldChunkName, "scan", false)
	require.Len(t, postings, 1)
	assert.Equal(t, "c1", postings[0].ChunkID)
}

func TestPostingsEngine_DeleteByPathRemovesAllChunksForPath(t *testing.T) {
	pe := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}
	pe.AddChunk(chunk("c1", "pkg/a.go", "Foo", "func Foo()", "body", types.ChunkTypeFunction), stemmer)
	pe.AddChunk(chunk("c2", "pkg/a.go", "Bar", "func Bar()", "body", types.ChunkTypeFunction), stemmer)
	pe.AddChunk(chunk("c3", "pkg/b.go", "Baz", "func Baz()", "body", types.ChunkTypeFunction), stemmer)

	removed := pe.DeleteByPath("pkg/a.go")
	assert.ElementsMatch(t, []string{"c1", "c2"}, removed)
	require.Equal(t, 1, pe.ChunkCount())
	_, ok := pe.Chunk("c1")
	assert.False(t, ok)
	_, ok = pe.Chunk("c3")
	assert.True(t, ok)
}

func TestPostingsEngine_CandidatesForTokenPrefix(t *testing.T) {
	pe := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}
	pe.AddChunk(chunk("c1", "a.go", "ScanDirectory", "", "", types.ChunkTypeFunction), stemmer)
	pe.AddChunk(chunk("c2", "b.go", "ScanFile", "", "", types.ChunkTypeFunction), stemmer)
	pe.AddChunk(chunk("c3", "c.go", "Commit", "", "", types.ChunkTypeFunction), stemmer)

	got := pe.CandidatesForToken(FieldChunkName, "scan", true)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ChunkID)
	}
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
}

func TestBM25Scores_FavorsHigherTermFrequency(t *testing.T) {
	pe := NewPostingsEngine()
	stemmer := Stemmer{Enabled: false}
	pe.AddChunk(chunk("lo", "a.go", "", "", "scan once", types.ChunkTypeBlock), stemmer)
	pe.AddChunk(chunk("hi", "b.go", "", "", "scan scan scan the directory for files to scan", types.ChunkTypeBlock), stemmer)

	scores := pe.BM25Scores(map[string][]string{FieldBody: {"scan"}}, map[string]float64{FieldBody: 1.0})
	require.Contains(t, scores, "lo")
	require.Contains(t, scores, "hi")
	assert.Greater(t, scores["hi"], scores["lo"])
}

func TestNormalizeMinMax_RescalesToUnitRange(t *testing.T) {
	out := normalizeMinMax(map[string]float64{"a": 1, "b": 3, "c": 5})
	assert.Equal(t, 0.0, out["a"])
	assert.Equal(t, 0.5, out["b"])
	assert.Equal(t, 1.0, out["c"])
}

func TestNormalizeMinMax_AllEqualMapsToOne(t *testing.T) {
	out := normalizeMinMax(map[string]float64{"a": 2, "b": 2})
	assert.Equal(t, 1.0, out["a"])
	assert.Equal(t, 1.0, out["b"])
}
