// Package languages implements spec.md §4.2's LanguageProcessor variants:
// Java (the archetype, full class/interface/enum/record + method/
// constructor extraction) plus lighter single-level extractors for Go,
// Python, JavaScript, TypeScript, and Rust. Every processor shares the
// same tree-sitter query-plus-capture-walk idiom as the teacher's
// internal/parser.TreeSitterParser: one *tree_sitter.Parser and one
// *tree_sitter.Query per language, queried with a QueryCursor and walked
// via Matches()/Captures.
package languages

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// captureSet is a single query match's captures, name -> node, used to pull
// a declaration's name and body nodes out of a match's several captures.
// Values are pointers (rather than tree_sitter.Node) so a capture name
// absent from a given match (e.g. "method.body" for an abstract method)
// is simply a nil map entry, never a zero-value Node passed to a method
// expecting a live tree handle.
type captureSet map[string]*tree_sitter.Node

// walkQuery runs query against tree/content and invokes visit once per
// match with that match's named captures. Grounded on the teacher's
// extractBasicSymbolsStringRef (parser.go): NewQueryCursor, Matches,
// iterate Next() until nil, look up capture names via CaptureNames().
func walkQuery(query *tree_sitter.Query, tree *tree_sitter.Tree, content []byte, visit func(captureSet)) {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		set := make(captureSet, len(match.Captures))
		for _, c := range match.Captures {
			node := c.Node
			set[names[c.Index]] = &node
		}
		visit(set)
	}
}

func nodeText(n *tree_sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func nodeLines(n *tree_sitter.Node) (start, end int) {
	return int(n.StartPosition().Row) + 1, int(n.EndPosition().Row) + 1
}

// declarationAndBody splits a declaration node's text at its body node
// (typically a block/statement list): everything before the body is the
// declaration (signature), the body node's own text is the chunk body.
// When body is nil (e.g. an abstract method with no body), the whole node
// text is treated as the declaration and body is empty.
func declarationAndBody(n *tree_sitter.Node, content []byte, body *tree_sitter.Node) (declaration, bodyText string) {
	if body == nil {
		return strings.TrimSpace(nodeText(n, content)), ""
	}
	declBytes := content[n.StartByte():body.StartByte()]
	return strings.TrimSpace(string(declBytes)), nodeText(body, content)
}

// findChildByKind returns the first direct child of n whose Kind matches,
// or nil.
func findChildByKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// hasErrorDescendant reports whether n's subtree contains a tree-sitter
// ERROR node, meaning the parser could not make sense of it.
func hasErrorDescendant(n *tree_sitter.Node) bool {
	if n.IsError() {
		return true
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil && hasErrorDescendant(child) {
			return true
		}
	}
	return false
}

// blockChunkFor emits an opaque chunk for a subtree the query missed
// because it failed to parse cleanly, per spec.md §4.2: "Parsing errors at
// any subtree cause that subtree to be emitted as a single opaque block
// chunk and the rest of the file to continue."
func blockChunkFor(n *tree_sitter.Node, content []byte) chunker.ExtractedChunk {
	start, end := nodeLines(n)
	return chunker.ExtractedChunk{
		ChunkType: types.ChunkTypeBlock,
		StartLine: start,
		EndLine:   end,
		Body:      nodeText(n, content),
	}
}

// parseSource parses content with p, returning nil if the language has no
// grammar wired (mirrors the teacher's nil-tolerant setupX pattern where a
// failed SetLanguage leaves the extension unclaimed).
func parseSource(p *tree_sitter.Parser, content []byte) *tree_sitter.Tree {
	return p.Parse(content, nil)
}
