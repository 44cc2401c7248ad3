// Package rerank implements spec.md §4.6's Reranker: scoring (query,
// document) pairs with a cross-encoder substitute and normalizing results
// to [0, 1] via min-max over the candidate batch. No ML/tensor-runtime
// library (ONNX, a tokenizer/inference crate, etc.) exists anywhere in the
// example pack, so the built-in model is a lexical cross-encoder
// substitute built from the teacher's own fuzzy-matching stack rather than
// a fabricated inference dependency.
package rerank

import "context"

// Reranker scores a query against a batch of short documents (declaration
// + first K lines of body, already truncated by the caller to whatever
// budget the model needs) and returns one score per document, normalized
// to [0, 1] over the batch.
type Reranker interface {
	ID() string
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

// normalizeMinMax rescales raw scores to [0, 1]. A batch of identical
// scores maps to 1 for all of them, matching internal/index's bm25.go
// normalizer so both halves of the score blend treat ties the same way.
func normalizeMinMax(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if max == min {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}
