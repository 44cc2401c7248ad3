package rerank

import (
	"context"
	"strings"

	"github.com/hbollon/go-edlib"
)

// LexicalV1ID is the built-in model name, the default resolved when
// neither --rerank-model nor ~/.probe/config.yaml's default_reranker is
// set (DESIGN.md's Open Question (i) resolution).
const LexicalV1ID = "lexical-v1"

// LexicalV1 is a cross-encoder substitute combining Jaro-Winkler string
// similarity with token-set overlap, grounded on the teacher's
// internal/semantic.FuzzyMatcher (same go-edlib.StringsSimilarity call,
// same "combine a base similarity with a secondary weighted signal"
// shape as FuzzyMatcher.FindMatchesWithWeights's 70/30 blend, reused here
// as a query-vs-document scorer instead of a term-dictionary matcher).
type LexicalV1 struct{}

// NewLexicalV1 returns the built-in reranker.
func NewLexicalV1() *LexicalV1 { return &LexicalV1{} }

func (l *LexicalV1) ID() string { return LexicalV1ID }

// Score combines, per document: Jaro-Winkler similarity of the raw
// query/document strings (captures close textual matches even past
// tokenization) and Jaccard overlap of their lowercased word sets
// (captures relevant vocabulary regardless of order), blended
// 50/50 — the same "combine two signals with fixed weights" idiom as the
// teacher's FindMatchesWithWeights, just without a precomputed-weight
// input since rerank candidates have no such side channel.
func (l *LexicalV1) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	raw := make([]float64, len(documents))
	queryTokens := wordSet(query)

	for i, doc := range documents {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		jw := jaroWinkler(query, doc)
		overlap := jaccard(queryTokens, wordSet(doc))
		raw[i] = 0.5*jw + 0.5*overlap
	}
	return normalizeMinMax(raw), nil
}

func jaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
