package chunker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/nikita2206/probe/internal/types"
)

// extToFileType maps a lowercase file extension to spec.md §3's FileType
// enum. Extensions with no entry chunk as types.FileTypeGeneric.
var extToFileType = map[string]types.FileType{
	".java": types.FileTypeJava,
	".ts":   types.FileTypeTS,
	".tsx":  types.FileTypeTS,
	".js":   types.FileTypeJS,
	".jsx":  types.FileTypeJS,
	".py":   types.FileTypePython,
	".rs":   types.FileTypeRust,
	".go":   types.FileTypeGo,
}

// CodeChunker selects a LanguageProcessor by extension per spec.md §4.3,
// falling back to generic windowing when none claims the file.
type CodeChunker struct {
	processors   []LanguageProcessor
	windowLines  int
	overlapLines int
}

// New creates a CodeChunker trying processors in order; the first whose
// CanProcess returns true handles the file.
func New(processors ...LanguageProcessor) *CodeChunker {
	return &CodeChunker{
		processors:   processors,
		windowLines:  DefaultWindowLines,
		overlapLines: DefaultOverlapLines,
	}
}

// WithWindow overrides the generic fallback's window/overlap line counts.
func (c *CodeChunker) WithWindow(windowLines, overlapLines int) *CodeChunker {
	c.windowLines = windowLines
	c.overlapLines = overlapLines
	return c
}

// Chunk normalizes line endings, dispatches to a claiming LanguageProcessor
// or the generic fallback, and always appends a whole-file chunk (spec.md
// §4.2's final paragraph) so path-only queries still match. It enforces
// §3's invariant that at least one chunk is always produced.
func (c *CodeChunker) Chunk(source []byte, relPath string) ([]types.Chunk, error) {
	normalized := normalizeLineEndings(source)
	ext := strings.ToLower(filepath.Ext(relPath))
	fileType := extToFileType[ext]
	if fileType == "" {
		fileType = types.FileTypeGeneric
	}

	var extracted []ExtractedChunk
	handled := false
	for _, p := range c.processors {
		if !p.CanProcess(ext) {
			continue
		}
		chunks, err := p.Chunk(normalized, relPath)
		if err != nil {
			return nil, err
		}
		extracted = chunks
		handled = true
		break
	}

	if !handled {
		lines := splitLines(normalized)
		extracted = genericChunks(lines, c.windowLines, c.overlapLines)
	}

	extracted = append(extracted, wholeFileChunk(normalized))

	chunks := make([]types.Chunk, 0, len(extracted))
	for ordinal, e := range extracted {
		chunks = append(chunks, types.Chunk{
			ChunkID:     deriveChunkID(relPath, ordinal, e.ChunkType),
			Path:        relPath,
			FileType:    fileType,
			ChunkType:   e.ChunkType,
			ChunkName:   e.ChunkName,
			Declaration: e.Declaration,
			Body:        e.Body,
			StartLine:   e.StartLine,
			EndLine:     e.EndLine,
		})
	}
	return chunks, nil
}

func wholeFileChunk(source []byte) ExtractedChunk {
	lines := splitLines(source)
	return ExtractedChunk{
		ChunkType: types.ChunkTypeFile,
		StartLine: 1,
		EndLine:   len(lines),
		Body:      string(source),
	}
}

func normalizeLineEndings(source []byte) []byte {
	s := strings.ReplaceAll(string(source), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return []byte(s)
}

func splitLines(source []byte) []string {
	s := string(source)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// deriveChunkID follows SPEC_FULL.md's chunk_id derivation: an xxhash of
// path, ordinal, and chunk type, hex-encoded, so re-chunking a file
// unchanged reproduces identical ids and re-chunking a changed one does not
// collide with stale postings left over from a prior version.
func deriveChunkID(path string, ordinal int, chunkType types.ChunkType) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = fmt.Fprintf(h, "%d", ordinal)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(chunkType))
	return fmt.Sprintf("%016x", h.Sum64())
}
