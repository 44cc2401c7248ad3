package index

import (
	"sort"

	"github.com/nikita2206/probe/internal/types"
)

// k1 and b are the standard Robertson/Sparck-Jones BM25 tuning constants;
// spec.md §4.5 doesn't call for them to be configurable so they're fixed
// here rather than threaded through config, matching the teacher's own
// preference for fixed scoring constants over a config surface for every
// knob (internal/core.PostingsIndex has none either).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// posting is one (chunk, term frequency) pair in a token's postings list.
type posting struct {
	ChunkID string
	Freq    int
}

// fieldData is the per-field inverted index plus the length bookkeeping
// BM25 needs for its length-normalization term. Grounded on the teacher's
// internal/core.PostingsIndex (token -> file -> offsets), generalized from
// a single flat index to one per tokenized field and from offsets to term
// frequencies since spec.md §4.5 only asks for field-weighted relevance
// ranking, not highlighting from stored positions (snippet.go matches
// against the stored field text directly instead).
type fieldData struct {
	postings  map[string][]posting // token -> postings, sorted by ChunkID
	docLen    map[string]int       // chunkID -> token count in this field
	totalLen  int64
	docCount  int
}

func newFieldData() *fieldData {
	return &fieldData{postings: make(map[string][]posting), docLen: make(map[string]int)}
}

func (f *fieldData) avgLen() float64 {
	if f.docCount == 0 {
		return 0
	}
	return float64(f.totalLen) / float64(f.docCount)
}

// PostingsEngine is the in-memory inverted index backing a SearchIndex: one
// fieldData per tokenized field (schema.go's tokenizedFields), plus the
// stored chunk records the exact-match / snippet / score-policy paths need
// directly rather than through postings.
type PostingsEngine struct {
	fields map[string]*fieldData
	chunks map[string]types.Chunk
	byPath map[string][]string // path -> chunk ids, for delete-by-path
}

// NewPostingsEngine returns an empty engine.
func NewPostingsEngine() *PostingsEngine {
	pe := &PostingsEngine{
		fields: make(map[string]*fieldData),
		chunks: make(map[string]types.Chunk),
		byPath: make(map[string][]string),
	}
	for _, f := range tokenizedFields {
		pe.fields[f] = newFieldData()
	}
	return pe
}

// ChunkCount is the total number of chunks indexed, the N term BM25's IDF
// uses uniformly across fields (every chunk has a value, possibly empty,
// for every tokenized field).
func (pe *PostingsEngine) ChunkCount() int {
	return len(pe.chunks)
}

// AddChunk tokenizes and stems c's fields and inserts it into the
// postings, stored-chunk, and path-index maps. Callers are responsible for
// calling DeleteByPath first when re-indexing a modified file, so this
// never needs to check for an existing chunk with the same id.
func (pe *PostingsEngine) AddChunk(c types.Chunk, stemmer Stemmer) {
	pe.chunks[c.ChunkID] = c
	pe.byPath[c.Path] = append(pe.byPath[c.Path], c.ChunkID)

	for field, text := range fieldText(c) {
		fd := pe.fields[field]
		tokens := stemmer.StemAll(tokenizeText(text))
		fd.docLen[c.ChunkID] = len(tokens)
		fd.totalLen += int64(len(tokens))
		fd.docCount++

		freqs := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freqs[t]++
		}
		for token, freq := range freqs {
			fd.postings[token] = insertPosting(fd.postings[token], posting{ChunkID: c.ChunkID, Freq: freq})
		}
	}
}

func insertPosting(list []posting, p posting) []posting {
	i := sort.Search(len(list), func(i int) bool { return list[i].ChunkID >= p.ChunkID })
	list = append(list, posting{})
	copy(list[i+1:], list[i:])
	list[i] = p
	return list
}

// DeleteByPath removes every chunk previously indexed under path and
// returns their chunk ids, so callers (the metadata store, in particular)
// can drop them from their own bookkeeping too. Spec.md §4.7's "delete by
// term on path" reindexing step is implemented here as a full removal
// followed by the writer's subsequent AddChunk calls for the new content.
func (pe *PostingsEngine) DeleteByPath(path string) []string {
	ids := pe.byPath[path]
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		pe.deleteChunk(id)
	}
	delete(pe.byPath, path)
	return ids
}

func (pe *PostingsEngine) deleteChunk(chunkID string) {
	if _, ok := pe.chunks[chunkID]; !ok {
		return
	}
	delete(pe.chunks, chunkID)

	for _, fd := range pe.fields {
		length, ok := fd.docLen[chunkID]
		if !ok {
			continue
		}
		fd.totalLen -= int64(length)
		fd.docCount--
		delete(fd.docLen, chunkID)
	}

	for token, fd := range pe.fields {
		_ = token
		for t, list := range fd.postings {
			filtered := list[:0:0]
			for _, p := range list {
				if p.ChunkID != chunkID {
					filtered = append(filtered, p)
				}
			}
			if len(filtered) == 0 {
				delete(fd.postings, t)
			} else {
				fd.postings[t] = filtered
			}
		}
	}
}

// Chunk returns the stored chunk for an id.
func (pe *PostingsEngine) Chunk(chunkID string) (types.Chunk, bool) {
	c, ok := pe.chunks[chunkID]
	return c, ok
}

// CandidatesForToken returns the set of chunk ids that contain token in
// field, optionally matched as a prefix for wildcard queries.
func (pe *PostingsEngine) CandidatesForToken(field, token string, prefix bool) []posting {
	fd, ok := pe.fields[field]
	if !ok {
		return nil
	}
	if !prefix {
		return fd.postings[token]
	}
	var out []posting
	for t, list := range fd.postings {
		if len(t) >= len(token) && t[:len(token)] == token {
			out = append(out, list...)
		}
	}
	return out
}
