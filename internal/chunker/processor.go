// Package chunker implements spec.md §4.2/§4.3: CodeChunker dispatches a
// file to the LanguageProcessor that claims its extension, falling back to
// a fixed-window generic chunker when none does, then always appends a
// whole-file chunk so path-only queries still match. The dispatch-by-
// extension shape and the per-language tree-sitter query idiom are
// grounded on the teacher's internal/parser.TreeSitterParser (its
// p.parsers/p.queries maps keyed by extension, populated by explicit
// setupX() calls).
package chunker

import "github.com/nikita2206/probe/internal/types"

// ExtractedChunk is what a LanguageProcessor emits: everything about a
// chunk except identity (ChunkID, Path, FileType), which CodeChunker fills
// in once it knows which file and how many chunks preceded this one.
type ExtractedChunk struct {
	ChunkType   types.ChunkType
	ChunkName   string
	Declaration string
	Body        string
	StartLine   int
	EndLine     int
}

// LanguageProcessor is the polymorphic variant interface from spec.md
// §4.2: can_process(extension) -> bool, chunk(source_text, relative_path)
// -> Seq<Chunk>.
type LanguageProcessor interface {
	CanProcess(ext string) bool
	Chunk(source []byte, relPath string) ([]ExtractedChunk, error)
}
