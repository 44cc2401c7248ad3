package engine

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita2206/probe/internal/types"
)

const nameMatchGo = `package sample

func searchUsers(id string) string {
	return id
}
`

const bodyMatchGo = `package sample

func findData(id string) string {
	return search(id)
}

func search(id string) string {
	return id
}
`

func TestSearch_FieldBoostRanksNameMatchAboveBodyOnlyMatch(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "name_match.go", nameMatchGo)
	writeFile(t, root, "body_match.go", bodyMatchGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	hits, err := e.Search(context.Background(), "searchUsers", SearchOptions{DisableRerank: true, Top: 10})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "name_match.go", hits[0].Chunk.Path)
}

func TestSearch_AlphaOneEqualsPureBM25Order(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.go", nameMatchGo)
	writeFile(t, root, "b.go", bodyMatchGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	one := 1.0
	e.cfg.Rerank.Alpha = &one
	e.cfg.Rerank.Enabled = true

	withRerank, err := e.Search(context.Background(), "search", SearchOptions{Top: 20})
	require.NoError(t, err)

	withoutRerank, err := e.Search(context.Background(), "search", SearchOptions{Top: 20, DisableRerank: true})
	require.NoError(t, err)

	require.Equal(t, len(withoutRerank), len(withRerank))
	for i := range withRerank {
		assert.Equal(t, withoutRerank[i].Chunk.ChunkID, withRerank[i].Chunk.ChunkID)
	}
}

func TestSearch_TopLimitsResultCount(t *testing.T) {
	root := newTestRoot(t)
	for i := 0; i < 5; i++ {
		writeFile(t, root, "file"+string(rune('a'+i))+".go", nameMatchGo)
	}

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	hits, err := e.Search(context.Background(), "search", SearchOptions{DisableRerank: true, Top: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), 2)
}

func TestSearch_PathFilterRestrictsHits(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "included.go", nameMatchGo)
	writeFile(t, root, "excluded.go", bodyMatchGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	hits, err := e.Search(context.Background(), "search", SearchOptions{
		DisableRerank: true,
		Top:           20,
		PathFilter:    "included.go",
	})
	require.NoError(t, err)
	for _, h := range hits {
		assert.Equal(t, "included.go", h.Chunk.Path)
	}
}

func TestSearch_SnippetRespectsLengthBound(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sample.go", nameMatchGo)

	e, err := OpenOrCreate(root, "")
	require.NoError(t, err)
	_, err = e.Update(context.Background())
	require.NoError(t, err)

	hits, err := e.Search(context.Background(), "searchUsers", SearchOptions{DisableRerank: true})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.LessOrEqual(t, len(h.Snippet), 512)
	}
}

// blendFixture is a candidate set whose BM25 order and rerank order
// disagree, so alpha=0 and alpha=1 produce genuinely different rankings.
func blendFixture() []types.Hit {
	return []types.Hit{
		{Chunk: types.Chunk{Path: "a.go"}, BM25: 10, Rerank: 1},
		{Chunk: types.Chunk{Path: "b.go"}, BM25: 5, Rerank: 9},
		{Chunk: types.Chunk{Path: "c.go"}, BM25: 1, Rerank: 5},
	}
}

func pathsByFinalDesc(hits []types.Hit) []string {
	sorted := append([]types.Hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Final > sorted[j].Final })
	paths := make([]string, len(sorted))
	for i, h := range sorted {
		paths[i] = h.Chunk.Path
	}
	return paths
}

func TestBlend_AlphaZeroEqualsPureRerankOrder(t *testing.T) {
	hits := blendFixture()
	blend(hits, 0)
	assert.Equal(t, []string{"b.go", "c.go", "a.go"}, pathsByFinalDesc(hits))
}

func TestBlend_AlphaOneEqualsPureBM25Order(t *testing.T) {
	hits := blendFixture()
	blend(hits, 1)
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, pathsByFinalDesc(hits))
}

// TestBlend_AlphaSweepInterpolatesMonotonically is spec.md §8's "Rerank
// blending monotonicity" end-to-end scenario: for a fixed candidate set
// and fixed rerank scores, increasing alpha from 0 to 1 interpolates each
// hit's Final score linearly (hence monotonically) between its rerank-only
// value (alpha=0) and its BM25-only value (alpha=1).
func TestBlend_AlphaSweepInterpolatesMonotonically(t *testing.T) {
	rerankOnly := blendFixture()
	blend(rerankOnly, 0)
	bm25Only := blendFixture()
	blend(bm25Only, 1)

	const steps = 11
	var prevFinal []float64
	for step := 0; step <= steps; step++ {
		alpha := float64(step) / float64(steps)
		hits := blendFixture()
		blend(hits, alpha)

		for i := range hits {
			expected := alpha*bm25Only[i].Final + (1-alpha)*rerankOnly[i].Final
			assert.InDelta(t, expected, hits[i].Final, 1e-9)

			lo, hi := rerankOnly[i].Final, bm25Only[i].Final
			if lo > hi {
				lo, hi = hi, lo
			}
			assert.GreaterOrEqual(t, hits[i].Final, lo-1e-9)
			assert.LessOrEqual(t, hits[i].Final, hi+1e-9)

			if prevFinal != nil {
				delta := hits[i].Final - prevFinal[i]
				direction := bm25Only[i].Final - rerankOnly[i].Final
				// moving alpha up must move Final toward the BM25-only
				// endpoint, never away from it.
				assert.GreaterOrEqual(t, delta*direction, -1e-9)
			}
		}

		prevFinal = make([]float64, len(hits))
		for i := range hits {
			prevFinal[i] = hits[i].Final
		}
	}
}
