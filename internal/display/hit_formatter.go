// Package display renders search results for the CLI. Grounded on the
// teacher's internal/display.TreeFormatter: an Options struct selecting
// text or JSON output, one method per mode, dispatched from a single
// Format entrypoint.
package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikita2206/probe/internal/types"
)

// HitFormatter renders []types.Hit for either human or machine
// consumption.
type HitFormatter struct {
	options Options
}

// Options controls hit formatting.
type Options struct {
	JSON bool
}

// NewHitFormatter creates a formatter with the given options.
func NewHitFormatter(options Options) *HitFormatter {
	return &HitFormatter{options: options}
}

// resultRecord is spec.md §6's JSON result record shape.
type resultRecord struct {
	Path      string  `json:"path"`
	Score     float64 `json:"score"`
	ChunkType string  `json:"chunk_type"`
	ChunkName string  `json:"chunk_name"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Snippet   string  `json:"snippet"`
}

// Format renders hits as a JSON array (--json) or a human-readable table.
func (f *HitFormatter) Format(hits []types.Hit) string {
	if f.options.JSON {
		return f.formatJSON(hits)
	}
	return f.formatText(hits)
}

func (f *HitFormatter) formatJSON(hits []types.Hit) string {
	records := make([]resultRecord, len(hits))
	for i, h := range hits {
		records[i] = toRecord(h)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Sprintf("error rendering results: %v", err)
	}
	return string(data)
}

func (f *HitFormatter) formatText(hits []types.Hit) string {
	if len(hits) == 0 {
		return "No results.\n"
	}
	var sb strings.Builder
	for i, h := range hits {
		r := toRecord(h)
		fmt.Fprintf(&sb, "%d. %s:%d-%d  %s %s  score=%.4f\n", i+1, r.Path, r.StartLine, r.EndLine, r.ChunkType, r.ChunkName, r.Score)
		if r.Snippet != "" {
			for _, line := range strings.Split(r.Snippet, "\n") {
				fmt.Fprintf(&sb, "    %s\n", line)
			}
		}
	}
	return sb.String()
}

func toRecord(h types.Hit) resultRecord {
	return resultRecord{
		Path:      h.Chunk.Path,
		Score:     h.Final,
		ChunkType: string(h.Chunk.ChunkType),
		ChunkName: h.Chunk.ChunkName,
		StartLine: h.Chunk.StartLine,
		EndLine:   h.Chunk.EndLine,
		Snippet:   h.Snippet,
	}
}

// StatsRecord is the JSON shape printed by the stats command.
type StatsRecord struct {
	ChunkCount     int   `json:"chunk_count"`
	FileCount      int   `json:"file_count"`
	IndexSizeBytes int64 `json:"index_size_bytes"`
	SchemaVersion  int   `json:"schema_version"`
}

// FormatStats renders a stats record as JSON, per spec.md §6's "print
// stats JSON to stdout".
func FormatStats(r StatsRecord) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("error rendering stats: %v", err)
	}
	return string(data)
}

// FormatChunks renders []types.Chunk for the show-chunks debugging
// command.
func FormatChunks(chunks []types.Chunk, jsonOutput bool) string {
	if jsonOutput {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Sprintf("error rendering chunks: %v", err)
		}
		return string(data)
	}
	var sb strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&sb, "%d. [%s] %s  %s:%d-%d\n", i+1, c.ChunkType, c.ChunkName, c.Path, c.StartLine, c.EndLine)
	}
	return sb.String()
}

// FormatModels renders the built-in and custom reranker model names for
// the list-models command.
func FormatModels(builtins, custom []string) string {
	var sb strings.Builder
	sb.WriteString("Built-in models:\n")
	for _, id := range builtins {
		fmt.Fprintf(&sb, "  %s\n", id)
	}
	sb.WriteString("Custom models:\n")
	if len(custom) == 0 {
		sb.WriteString("  (none configured)\n")
	}
	for _, id := range custom {
		fmt.Fprintf(&sb, "  %s\n", id)
	}
	return sb.String()
}
