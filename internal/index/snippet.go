package index

import (
	"strings"

	"github.com/nikita2206/probe/internal/types"
)

// snippetWindow is the window width spec.md §4.5's Snippetting paragraph
// fixes: "up to two 240-character windows around matched terms."
const snippetWindow = 240

const (
	sentinelOpen  = "«"
	sentinelClose = "»"
)

// BuildSnippet produces up to two highlighted windows from c's body (or
// its declaration if body is empty) around occurrences of queryTerms,
// joining multiple windows with " ... ". Matches are marked with sentinel
// tokens the CLI's renderer turns into terminal highlighting.
func BuildSnippet(c types.Chunk, queryTerms []string) string {
	text := c.Body
	if strings.TrimSpace(text) == "" {
		text = c.Declaration
	}
	if text == "" {
		return ""
	}

	positions := findMatchPositions(text, queryTerms)
	if len(positions) == 0 {
		return truncate(text, snippetWindow)
	}

	var windows []string
	used := -1
	for _, p := range positions {
		if used >= 0 && p.start < used {
			continue
		}
		start := p.start - snippetWindow/2
		if start < 0 {
			start = 0
		}
		end := start + snippetWindow
		if end > len(text) {
			end = len(text)
			start = end - snippetWindow
			if start < 0 {
				start = 0
			}
		}
		windows = append(windows, highlight(text[start:end], positions, start, end))
		used = end
		if len(windows) == 2 {
			break
		}
	}
	return strings.Join(windows, " ... ")
}

type matchPos struct {
	start, end int
}

// findMatchPositions scans text (case-insensitively) for occurrences of
// each query term, returned in ascending order by start offset.
func findMatchPositions(text string, terms []string) []matchPos {
	lower := strings.ToLower(text)
	var positions []matchPos
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSuffix(term, "*"))
		if term == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			positions = append(positions, matchPos{start: start, end: start + len(term)})
			from = start + len(term)
		}
	}
	sortMatchPositions(positions)
	return positions
}

func sortMatchPositions(positions []matchPos) {
	for i := 1; i < len(positions); i++ {
		for j := i; j > 0 && positions[j-1].start > positions[j].start; j-- {
			positions[j-1], positions[j] = positions[j], positions[j-1]
		}
	}
}

// highlight wraps every match position falling within [winStart, winEnd) of
// text (already sliced to that window) in sentinel tokens.
func highlight(window string, positions []matchPos, winStart, winEnd int) string {
	var b strings.Builder
	cursor := winStart
	for _, p := range positions {
		if p.start < winStart || p.end > winEnd || p.start < cursor {
			continue
		}
		b.WriteString(window[cursor-winStart : p.start-winStart])
		b.WriteString(sentinelOpen)
		b.WriteString(window[p.start-winStart : p.end-winStart])
		b.WriteString(sentinelClose)
		cursor = p.end
	}
	b.WriteString(window[cursor-winStart:])
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
