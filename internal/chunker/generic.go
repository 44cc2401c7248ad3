package chunker

import (
	"strings"

	"github.com/nikita2206/probe/internal/types"
)

// DefaultWindowLines and DefaultOverlapLines are spec.md §4.2's generic
// fallback defaults (120-line windows, 10-line overlap).
const (
	DefaultWindowLines  = 120
	DefaultOverlapLines = 10
)

// genericChunks splits lines into overlapping windows, each an opaque
// block chunk with no declaration or name — the last resort for a file no
// LanguageProcessor claims.
func genericChunks(lines []string, windowLines, overlapLines int) []ExtractedChunk {
	if windowLines <= 0 {
		windowLines = DefaultWindowLines
	}
	if overlapLines < 0 || overlapLines >= windowLines {
		overlapLines = DefaultOverlapLines
	}
	if len(lines) == 0 {
		return nil
	}

	var chunks []ExtractedChunk
	step := windowLines - overlapLines
	for start := 0; start < len(lines); start += step {
		end := start + windowLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, ExtractedChunk{
			ChunkType: types.ChunkTypeBlock,
			StartLine: start + 1,
			EndLine:   end,
			Body:      strings.Join(lines[start:end], "\n"),
		})
		if end == len(lines) {
			break
		}
	}
	return chunks
}
