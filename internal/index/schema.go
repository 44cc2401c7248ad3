package index

import "github.com/nikita2206/probe/internal/types"

// Field names for the tokenized fields spec.md §4.5 defines a weighted
// disjunction over, plus the exact-match stored fields the schema also
// fixes. path_tokens is a derived tokenized view of path segments, not a
// stored chunk field.
const (
	FieldChunkName   = "chunk_name"
	FieldDeclaration = "declaration"
	FieldBody        = "body"
	FieldPathTokens  = "path_tokens"
)

// tokenizedFields lists the fields that get split/stemmed at index time,
// in the order BM25 field contributions are summed (stable iteration for
// deterministic tie-breaking upstream).
var tokenizedFields = []string{FieldChunkName, FieldDeclaration, FieldBody, FieldPathTokens}

// fieldText extracts the raw text a given tokenized field derives from.
// path_tokens derives from the chunk's path segments rather than a chunk
// field of its own.
func fieldText(c types.Chunk) map[string]string {
	return map[string]string{
		FieldChunkName:   c.ChunkName,
		FieldDeclaration: c.Declaration,
		FieldBody:        c.Body,
		FieldPathTokens:  pathToTokenText(c.Path),
	}
}

func pathToTokenText(path string) string {
	return path
}
