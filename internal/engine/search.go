package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/index"
	"github.com/nikita2206/probe/internal/rerank"
	"github.com/nikita2206/probe/internal/types"
)

// SearchOptions carries the per-call overrides spec.md §4.7/§6 expose on
// top of probe.yml's defaults.
type SearchOptions struct {
	Top             int
	CandidateCount  int    // 0 => probe.yml's rerank.candidate_count, or max(50, 5*Top) if that is 0 too
	DisableRerank   bool
	RerankModel     string // "" => registry default
	PathFilter      string // glob, "" => no filter
}

const defaultMinCandidates = 50
const defaultCandidateMultiplier = 5

// Search parses queryText, retrieves BM25 candidates from the SearchIndex,
// optionally reranks, and blends the two scores per spec.md §4.6's
// final = alpha*norm(bm25) + (1-alpha)*norm(rerank).
func (e *Engine) Search(ctx context.Context, queryText string, opts SearchOptions) ([]types.Hit, error) {
	if e.dirty {
		return nil, probeerrors.NewSchemaStale(errors.New("index schema is stale, run update or rebuild first"))
	}

	q, err := index.ParseQuery(queryText)
	if err != nil {
		return nil, err
	}

	candidateCount := opts.CandidateCount
	if candidateCount <= 0 {
		candidateCount = e.cfg.Rerank.CandidateCount
	}
	top := opts.Top
	if top <= 0 {
		top = 10
	}
	if candidateCount <= 0 {
		candidateCount = defaultMinCandidates
		if n := defaultCandidateMultiplier * top; n > candidateCount {
			candidateCount = n
		}
	}

	hits := e.search.Search(q, candidateCount)
	if opts.PathFilter != "" {
		hits = filterByPath(hits, opts.PathFilter)
	}

	useRerank := e.cfg.Rerank.Enabled && !opts.DisableRerank && len(hits) > 0
	if useRerank {
		modelID := opts.RerankModel
		if modelID == "" {
			modelID = e.models.DefaultID()
		}
		model, err := e.models.Resolve(modelID)
		if err != nil {
			return nil, err
		}
		if err := rerankHits(ctx, model, queryText, hits); err != nil {
			return nil, err
		}
	}

	alpha := e.cfg.Rerank.AlphaOrDefault()
	if !useRerank {
		alpha = 1
	}
	blend(hits, alpha)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Final != hits[j].Final {
			return hits[i].Final > hits[j].Final
		}
		if hits[i].BM25 != hits[j].BM25 {
			return hits[i].BM25 > hits[j].BM25
		}
		if hits[i].Chunk.Path != hits[j].Chunk.Path {
			return hits[i].Chunk.Path < hits[j].Chunk.Path
		}
		return hits[i].Chunk.StartLine < hits[j].Chunk.StartLine
	})

	if len(hits) > top {
		hits = hits[:top]
	}
	return hits, nil
}

func rerankHits(ctx context.Context, model rerank.Reranker, queryText string, hits []types.Hit) error {
	docs := make([]string, len(hits))
	for i, h := range hits {
		docs[i] = rerankDocument(h)
	}
	scores, err := model.Score(ctx, queryText, docs)
	if err != nil {
		return err
	}
	for i := range hits {
		hits[i].Rerank = scores[i]
	}
	return nil
}

// rerankDocument is the truncated document text handed to a Reranker:
// declaration plus the first portion of the body, per spec.md §4.6 (a
// reranker scores a summary, not the whole chunk, to keep batches cheap).
func rerankDocument(h types.Hit) string {
	const maxBodyRunes = 600
	body := h.Chunk.Body
	if len(body) > maxBodyRunes {
		body = body[:maxBodyRunes]
	}
	if h.Chunk.Declaration == "" {
		return body
	}
	return h.Chunk.Declaration + "\n" + body
}

func blend(hits []types.Hit, alpha float64) {
	bm25 := make([]float64, len(hits))
	rr := make([]float64, len(hits))
	for i, h := range hits {
		bm25[i] = h.BM25
		rr[i] = h.Rerank
	}
	bm25 = normalize(bm25)
	rr = normalize(rr)
	for i := range hits {
		hits[i].Final = alpha*bm25[i] + (1-alpha)*rr[i]
	}
}

func normalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}

func filterByPath(hits []types.Hit, glob string) []types.Hit {
	filtered := make([]types.Hit, 0, len(hits))
	for _, h := range hits {
		if ok, err := doublestar.Match(glob, h.Chunk.Path); err == nil && ok {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
