package index

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/nikita2206/probe/internal/config"
	"github.com/nikita2206/probe/internal/types"
)

// SearchIndex is spec.md §4.5's top-level full-text engine: an inverted
// postings structure over four tokenized fields plus exact-match chunk
// storage, query parsing/execution, score-policy adjustment, and
// snippetting. internal/engine owns schema versioning and rerank blending;
// this package is purely the BM25 candidate-retrieval stage.
type SearchIndex struct {
	indexDir    string
	engine      *PostingsEngine
	stemmer     Stemmer
	fieldBoosts config.FieldBoosts
	scorePolicy config.ScorePolicy
}

// Open loads the persisted chunk set (if any) from indexDir and rebuilds
// the in-memory postings engine by replaying it, per store.go's design
// note: the postings/lengths are entirely derived from the chunk set, so
// there's nothing else to load.
func Open(indexDir string, cfg *config.Config) (*SearchIndex, error) {
	chunks, err := loadChunks(indexDir)
	if err != nil {
		return nil, err
	}
	stemmer := Stemmer{Enabled: cfg.Stemming.Enabled, Language: cfg.Stemming.Language}
	engine := NewPostingsEngine()
	for _, c := range chunks {
		engine.AddChunk(c, stemmer)
	}
	return &SearchIndex{
		indexDir:    indexDir,
		engine:      engine,
		stemmer:     stemmer,
		fieldBoosts: cfg.FieldBoosts,
		scorePolicy: cfg.ScorePolicy,
	}, nil
}

// Writer acquires the single-writer lock for this index directory.
func (s *SearchIndex) Writer() (*Writer, error) {
	return AcquireWriter(s.indexDir, s.engine, s.stemmer)
}

// ChunkCount reports the number of chunks currently indexed, for stats().
func (s *SearchIndex) ChunkCount() int {
	return s.engine.ChunkCount()
}

// FileCount reports the number of distinct paths currently indexed.
func (s *SearchIndex) FileCount() int {
	return len(s.engine.byPath)
}

func (s *SearchIndex) defaultBoost(field string) float64 {
	switch field {
	case FieldChunkName:
		return s.fieldBoosts.ChunkName
	case FieldDeclaration:
		return s.fieldBoosts.Declaration
	case FieldPathTokens:
		return s.fieldBoosts.PathTokens
	case FieldBody:
		return s.fieldBoosts.Body
	default:
		return 1
	}
}

// Search executes q against the postings engine and returns the top
// candidateCount hits ranked by score-policy-adjusted BM25, ready for
// internal/engine's optional rerank/blend stage. Hits are ordered by
// adjusted BM25 descending; equal scores break by path, then start_line,
// ascending.
func (s *SearchIndex) Search(q *Query, candidateCount int) []types.Hit {
	matched := s.evaluateBoolean(q)
	if len(matched) == 0 {
		return nil
	}
	scores := s.scoreQuery(q)
	terms := positiveTermTexts(q)

	hits := make([]types.Hit, 0, len(matched))
	for id := range matched {
		c, ok := s.engine.Chunk(id)
		if !ok {
			continue
		}
		score := ApplyScorePolicy(s.scorePolicy, c, scores[id])
		hits = append(hits, types.Hit{
			Chunk:   c,
			BM25:    score,
			Snippet: BuildSnippet(c, terms),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].BM25 != hits[j].BM25 {
			return hits[i].BM25 > hits[j].BM25
		}
		if hits[i].Chunk.Path != hits[j].Chunk.Path {
			return hits[i].Chunk.Path < hits[j].Chunk.Path
		}
		return hits[i].Chunk.StartLine < hits[j].Chunk.StartLine
	})

	if candidateCount > 0 && len(hits) > candidateCount {
		hits = hits[:candidateCount]
	}
	return hits
}

// scoreQuery computes the field-weighted BM25 sum contributed by every
// non-negated term across all groups (negation only narrows the match set
// in evaluateBoolean, it never contributes score).
func (s *SearchIndex) scoreQuery(q *Query) map[string]float64 {
	scores := make(map[string]float64)
	for _, group := range q.Groups {
		for _, term := range group.Terms {
			if term.Negate {
				continue
			}
			for id, sc := range s.termScores(term) {
				scores[id] += sc
			}
		}
	}
	return scores
}

func (s *SearchIndex) termScores(term Term) map[string]float64 {
	fields := fieldsFor(term.Field)
	combined := make(map[string]float64)

	if term.Phrase {
		for id := range s.phraseMatchSet(term) {
			combined[id] = 1 // phrases contribute a flat match weight; ranking is dominated by the word-level terms in practice
		}
		return combined
	}

	tokens := s.stemmer.StemAll(tokenizeText(term.Text))
	if len(tokens) == 0 {
		return combined
	}

	for _, field := range fields {
		boost := s.defaultBoost(field) * term.Boost
		var fieldScores map[string]float64
		if term.Wildcard && len(tokens) == 1 {
			fieldScores = s.engine.BM25ScoresWildcardField(field, tokens[0], boost)
		} else {
			fieldScores = s.engine.BM25Scores(map[string][]string{field: tokens}, map[string]float64{field: boost})
		}
		for id, sc := range fieldScores {
			combined[id] += sc
		}
	}
	return combined
}

func fieldsFor(field string) []string {
	if field == "" {
		return tokenizedFields
	}
	return []string{field}
}

// evaluateBoolean computes the set of chunk ids satisfying q: an OR across
// groups, each group an AND of its positive terms minus the union of its
// negated terms' match sets.
func (s *SearchIndex) evaluateBoolean(q *Query) map[string]bool {
	result := make(map[string]bool)
	for _, group := range q.Groups {
		for id := range s.evaluateGroup(group) {
			result[id] = true
		}
	}
	return result
}

func (s *SearchIndex) evaluateGroup(group AndGroup) map[string]bool {
	var positive map[string]bool
	negative := make(map[string]bool)
	havePositive := false

	for _, term := range group.Terms {
		set := s.termMatchSet(term)
		if term.Negate {
			for id := range set {
				negative[id] = true
			}
			continue
		}
		havePositive = true
		if positive == nil {
			positive = set
		} else {
			positive = intersectSets(positive, set)
		}
	}

	if !havePositive {
		return map[string]bool{}
	}
	for id := range negative {
		delete(positive, id)
	}
	return positive
}

func (s *SearchIndex) termMatchSet(term Term) map[string]bool {
	if term.Phrase {
		return s.phraseMatchSet(term)
	}
	tokens := s.stemmer.StemAll(tokenizeText(term.Text))
	if len(tokens) == 0 {
		return map[string]bool{}
	}
	var union map[string]bool
	for _, field := range fieldsFor(term.Field) {
		set := s.allTokensMatch(field, tokens, term.Wildcard)
		union = unionSets(union, set)
	}
	return union
}

func (s *SearchIndex) allTokensMatch(field string, tokens []string, wildcard bool) map[string]bool {
	var result map[string]bool
	for i, tok := range tokens {
		isLast := i == len(tokens)-1
		postings := s.engine.CandidatesForToken(field, tok, wildcard && isLast)
		set := make(map[string]bool, len(postings))
		for _, p := range postings {
			set[p.ChunkID] = true
		}
		if i == 0 {
			result = set
		} else {
			result = intersectSets(result, set)
		}
	}
	return result
}

// phraseMatchSet checks the phrase's literal text against the stored
// field text directly rather than through the postings index — this
// module stores term frequencies, not positions, so exact phrase
// adjacency can't be answered from postings alone. Spec.md §4.5 says
// phrase/proximity queries are "passed through to the underlying query
// engine"; for a hand-rolled engine with no position index, a literal
// substring check against the stored field is the closest faithful
// implementation (proximity distance is not separately enforced beyond
// this).
func (s *SearchIndex) phraseMatchSet(term Term) map[string]bool {
	fields := fieldsFor(term.Field)
	needle := strings.ToLower(term.Text)
	result := make(map[string]bool)

	for id, c := range s.engine.chunks {
		text := fieldText(c)
		for _, field := range fields {
			if strings.Contains(strings.ToLower(text[field]), needle) {
				result[id] = true
				break
			}
		}
	}
	return result
}

func positiveTermTexts(q *Query) []string {
	var out []string
	for _, group := range q.Groups {
		for _, term := range group.Terms {
			if !term.Negate {
				out = append(out, term.Text)
			}
		}
	}
	return out
}

func intersectSets(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for id := range a {
		if b[id] {
			out[id] = true
		}
	}
	return out
}

func unionSets(a, b map[string]bool) map[string]bool {
	if a == nil {
		a = make(map[string]bool)
	}
	for id := range b {
		a[id] = true
	}
	return a
}

// IndexDirName is the fixed subdirectory name under <root>/.probe/ holding
// the search engine's on-disk files (spec.md §6).
const IndexDirName = "index"

// ResolveIndexDir joins root's .probe directory with IndexDirName.
func ResolveIndexDir(probeDir string) string {
	return filepath.Join(probeDir, IndexDirName)
}
